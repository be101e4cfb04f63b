package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"leakloader/internal/source/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutOpenStatList(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "nodes-entities.csv", bytes.NewReader([]byte("node_id,name\n1,A\n")), core.PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Name != "nodes-entities.csv" || info.Size != 17 {
		t.Fatalf("unexpected info %+v", info)
	}
	st, err := store.Stat(ctx, "nodes-entities.csv")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size != info.Size {
		t.Fatalf("stat size %d != put size %d", st.Size, info.Size)
	}
	got, rc, err := store.Open(ctx, "nodes-entities.csv")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "node_id,name\n1,A\n" || got.Size != info.Size {
		t.Fatalf("unexpected open result %+v %q", got, b)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "nodes-entities.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStore_NotFound(t *testing.T) {
	store := newTempStore(t)
	if _, _, err := store.Open(context.Background(), "relationships.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Stat(context.Background(), "relationships.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_CreateOnlyAndOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "a.csv", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a.csv", strings.NewReader("two"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := store.Put(ctx, "a.csv", strings.NewReader("two"), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, rc, err := store.Open(ctx, "a.csv")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	if b, _ := io.ReadAll(rc); string(b) != "two" {
		t.Fatalf("expected overwritten content, got %q", b)
	}
}

func TestSanitizeNameErrors(t *testing.T) {
	cases := []string{"", "  ", "../escape.csv", "/abs.csv", `dir\file.csv`, "nested/file.csv"}
	for _, c := range cases {
		if _, err := sanitizeName(c); err == nil {
			t.Fatalf("expected error for name %q", c)
		}
	}
}

type errorReader struct{}

func (errorReader) Read(p []byte) (int, error) { return 0, errors.New("boom") }

func TestStore_FailedPutLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "bad.csv", errorReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected copy error")
	}
	if _, err := store.Stat(ctx, "bad.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("half-written artifact visible: %v", err)
	}
	// The temp file must be cleaned up as well.
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty root, found %v", entries)
	}
}

func TestStore_ListSkipsDirsAndHidden(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if err := os.Mkdir(filepath.Join(store.Root(), "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Root(), ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Put(ctx, "b.csv", strings.NewReader("b"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "b.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestNewRejectsFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "afile")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := New(path); err == nil {
		t.Fatalf("expected error when root is a file")
	}
}
