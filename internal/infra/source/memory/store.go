// Package memory implements an in-memory source store for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"leakloader/internal/source/core"
)

type artifact struct {
	info core.Info
	data []byte
}

// Store implements core.Store backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]artifact
}

// New returns an empty in-memory source store.
func New() *Store { return &Store{objs: make(map[string]artifact)} }

func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Open returns artifact metadata and a reader over a copy of its content.
func (s *Store) Open(_ context.Context, name string) (core.Info, io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objs[name]
	s.mu.RUnlock()
	if !ok {
		return core.Info{}, nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return obj.info, io.NopCloser(bytes.NewReader(data)), nil
}

// Stat returns artifact metadata only.
func (s *Store) Stat(_ context.Context, name string) (core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objs[name]
	if !ok {
		return core.Info{}, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	return obj.info, nil
}

// Put stores an artifact, honoring create-only semantics unless Overwrite.
func (s *Store) Put(_ context.Context, name string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[name]; exists && !opts.Overwrite {
		return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, name)
	}
	info := core.Info{Name: name, Size: int64(len(b)), LastModified: time.Now().UTC()}
	s.objs[name] = artifact{info: info, data: b}
	return info, nil
}

// List returns all artifacts sorted by name.
func (s *Store) List(_ context.Context) ([]core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Info, 0, len(s.objs))
	for _, v := range s.objs {
		out = append(out, v.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
