// Package source re-exports the source store abstractions and selects a
// backend from explicit configuration.
package source

import (
	"leakloader/internal/source/core"
)

type (
	// Driver identifies a source store backend.
	Driver = core.Driver
	// PutOptions configures an artifact write.
	PutOptions = core.PutOptions
	// Info describes a stored artifact.
	Info = core.Info
	// Store is the interface for source artifact backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local directory driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrNotFound indicates a named artifact does not exist.
var ErrNotFound = core.ErrNotFound

// ErrExists indicates a create-only Put hit an existing artifact.
var ErrExists = core.ErrExists
