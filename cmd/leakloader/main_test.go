package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sqldocs "leakloader/docs/schema/sql"
	"leakloader/internal/dest"
	"leakloader/pkg/oldb"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func artifactFixtures() map[string]string {
	return map[string]string{
		"nodes-entities.csv": "node_id,name,jurisdiction,incorporation_date,source_id\n" +
			"10000001,TIANHAI TRADING LTD.,BVI,03-Apr-2016,Panama Papers\n" +
			"10000002,OCEANIC HOLDINGS S.A.,PMA,2009-11-17,Panama Papers\n",
		"nodes-officers.csv": "node_id,name,country_codes,countries,source_id,valid_until\n" +
			"12000001,Jane Liu,HKG,Hong Kong,Panama Papers,valid\n",
		"nodes-intermediaries.csv": "node_id,name,status,source_id\n" +
			"11000001,ACME CORP SERVICES,ACTIVE,Panama Papers\n",
		"nodes-addresses.csv": "node_id,address,country_codes,countries,source_id\n" +
			`14000001,"24 De Castro Street, Wickhams Cay",VGB,British Virgin Islands,Panama Papers` + "\n",
		"relationships.csv": "node_id_start,node_id_end,rel_type,source_id,start_date,end_date\n" +
			"10000001,12000001,officer_of,Panama Papers,03-Apr-2016,\n",
	}
}

func writeArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range artifactFixtures() {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// prepareSQLite creates an empty destination database with the schema
// applied, mirroring the provisioning step the loader expects to have
// happened before any run.
func prepareSQLite(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oldb.db")
	db, err := dest.Open(ctx, dest.Config{Driver: dest.DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("open sqlite destination: %v", err)
	}
	for _, stmt := range sqldocs.SplitStatements(sqldocs.SQLite) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close sqlite destination: %v", err)
	}
	return path
}

func buildArchive(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip member %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip member %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestLoadCommandSQLite(t *testing.T) {
	dataDir := writeArtifacts(t)
	dbPath := prepareSQLite(t)
	manifest := filepath.Join(t.TempDir(), "run.json")

	out, _, err := execute(t,
		"load",
		"--source", "fs", "--data-dir", dataDir,
		"--driver", "sqlite", "--sqlite-path", dbPath,
		"--manifest", manifest,
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, want := range []string{"entities", "relationships", "loaded"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(data), `"driver": "sqlite"`) {
		t.Fatalf("manifest missing driver:\n%s", data)
	}

	out, _, err = execute(t,
		"load",
		"--source", "fs", "--data-dir", dataDir,
		"--driver", "sqlite", "--sqlite-path", dbPath,
	)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !strings.Contains(out, "skipped") {
		t.Fatalf("second run should skip loaded tables:\n%s", out)
	}
	if strings.Contains(out, "failed") {
		t.Fatalf("second run reported failures:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	dataDir := writeArtifacts(t)
	dbPath := prepareSQLite(t)
	if _, _, err := execute(t,
		"load",
		"--source", "fs", "--data-dir", dataDir,
		"--driver", "sqlite", "--sqlite-path", dbPath,
	); err != nil {
		t.Fatalf("seed load: %v", err)
	}

	out, _, err := execute(t, "status", "--driver", "sqlite", "--sqlite-path", dbPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "skip (already loaded)") {
		t.Fatalf("status should report loaded tables:\n%s", out)
	}
	for _, tbl := range oldb.Tables {
		if !strings.Contains(out, tbl.Name) {
			t.Fatalf("status missing table %s:\n%s", tbl.Name, out)
		}
	}

	fresh := prepareSQLite(t)
	out, _, err = execute(t, "status", "--driver", "sqlite", "--sqlite-path", fresh)
	if err != nil {
		t.Fatalf("status on fresh database: %v", err)
	}
	if strings.Contains(out, "already loaded") {
		t.Fatalf("fresh database should have nothing loaded:\n%s", out)
	}
}

func TestFetchCommand(t *testing.T) {
	members := map[string]string{"full-oldb/README.md": "see icij.org\n"}
	for name, body := range artifactFixtures() {
		members["full-oldb/"+name] = body
	}
	archive := buildArchive(t, members)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, _, err := execute(t, "fetch", "--url", srv.URL, "--dest", dir)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, tbl := range oldb.Tables {
		if _, err := os.Stat(filepath.Join(dir, tbl.Artifact)); err != nil {
			t.Fatalf("artifact %s not extracted: %v", tbl.Artifact, err)
		}
		if !strings.Contains(out, tbl.Artifact) {
			t.Fatalf("report missing %s:\n%s", tbl.Artifact, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "README.md")); err == nil {
		t.Fatal("archive extras should not be extracted")
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("LEAKLOADER_DB_PASSWORD", "")
	t.Setenv("PGPASSWORD", "")

	_, _, err := execute(t,
		"load",
		"--source", "fs", "--data-dir", t.TempDir(),
		"--driver", "postgres", "--user", "analyst",
	)
	if !errors.Is(err, dest.ErrNoCredentials) {
		t.Fatalf("want ErrNoCredentials, got %v", err)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	_, _, err := execute(t, "load", "--policy", "halt", "--data-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown batch policy") {
		t.Fatalf("want policy error, got %v", err)
	}
}

func TestHelpListsCommands(t *testing.T) {
	out, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"fetch", "load", "status"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
}
