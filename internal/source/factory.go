package source

import (
	"context"
	"fmt"
)

// Config selects and parameterizes a source store backend. It is built once
// by the caller (CLI or test) and passed down explicitly.
type Config struct {
	Driver Driver
	// Dir is the artifact directory when Driver is fs.
	Dir string
	// S3 parameterizes the bucket backend when Driver is s3.
	S3 S3Config
}

// Open constructs the store cfg describes. An empty driver defaults to the
// local filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.Dir)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown source driver %q", driver)
	}
}
