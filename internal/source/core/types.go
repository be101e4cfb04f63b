// Package core defines the abstractions for source artifact stores: the
// backends that hold the raw CSV dumps a load run reads from.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete source store backend implementation.
type Driver string

const (
	// DriverFilesystem reads artifacts from a local directory (default).
	DriverFilesystem Driver = "fs"
	// DriverS3 reads artifacts from an S3-compatible bucket prefix.
	DriverS3 Driver = "s3"
	// DriverMemory holds artifacts in process memory (tests).
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	// Overwrite allows replacing an existing artifact. The default is
	// create-only so a fetch never silently clobbers a previous download.
	Overwrite bool
}

// Info describes a stored artifact.
type Info struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store provides named read access to the source artifacts of one dataset
// release. Names are flat (no path separators); each backend maps them onto
// its own addressing scheme.
type Store interface {
	// Open returns the artifact's metadata and content. The caller closes
	// the reader.
	Open(ctx context.Context, name string) (Info, io.ReadCloser, error)
	// Stat returns the artifact's metadata without opening its content.
	Stat(ctx context.Context, name string) (Info, error)
	// Put stores an artifact from r, returning its resulting metadata.
	Put(ctx context.Context, name string, r io.Reader, opts PutOptions) (Info, error)
	// List returns all artifacts in the store, sorted by name.
	List(ctx context.Context) ([]Info, error)
	Driver() Driver
}

// ErrNotFound is returned when a named artifact does not exist.
var ErrNotFound = errors.New("source: artifact not found")

// ErrExists is returned by Put when the artifact exists and Overwrite is unset.
var ErrExists = errors.New("source: artifact already exists")
