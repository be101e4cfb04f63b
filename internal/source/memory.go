package source

import (
	infraMemory "leakloader/internal/infra/source/memory"
)

// NewMemory constructs an empty in-memory source store for tests.
func NewMemory() Store {
	return infraMemory.New()
}
