// Package fs implements the source store on a local directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"leakloader/internal/source/core"
)

// Store reads and writes artifacts as plain files directly under a root
// directory. Writes go through a temp file and an atomic rename so a crashed
// fetch never leaves a half-written artifact behind.
type Store struct {
	root string
}

// New returns a filesystem-backed source store rooted at dir, creating the
// directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "./data/csv"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create source dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the directory the store reads from.
func (s *Store) Root() string { return s.root }

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// sanitizeName rejects anything that is not a flat file name. Artifact names
// come from a fixed table list or from archive members, never from rows, but
// the store still refuses traversal outright.
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty artifact name")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return name, nil
}

func (s *Store) pathFor(name string) (string, error) {
	n, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, n), nil
}

func (s *Store) Open(ctx context.Context, name string) (core.Info, io.ReadCloser, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return core.Info{}, nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return core.Info{}, nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	if err != nil {
		return core.Info{}, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return core.Info{}, nil, err
	}
	return infoFromStat(name, st), f, nil
}

func (s *Store) Stat(ctx context.Context, name string) (core.Info, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return core.Info{}, err
	}
	st, err := os.Stat(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return core.Info{}, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	if err != nil {
		return core.Info{}, err
	}
	return infoFromStat(name, st), nil
}

func (s *Store) Put(ctx context.Context, name string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return core.Info{}, err
	}
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, name)
		}
	}
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return core.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return core.Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return core.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return core.Info{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return core.Info{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return core.Info{}, err
	}
	return infoFromStat(name, st), nil
}

func (s *Store) List(ctx context.Context) ([]core.Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var infos []core.Info
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		st, err := e.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, infoFromStat(e.Name(), st))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func infoFromStat(name string, st iofs.FileInfo) core.Info {
	return core.Info{Name: name, Size: st.Size(), LastModified: st.ModTime().UTC()}
}
