package source

import (
	infraFS "leakloader/internal/infra/source/fs"
)

// NewFilesystem constructs a local-directory source store rooted at dir.
func NewFilesystem(dir string) (Store, error) {
	return infraFS.New(dir)
}
