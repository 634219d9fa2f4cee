package filesystem

import (
	"io"
	"os"
)

// GacheFs satisfies gache's FileSystem interface on top of the active
// backend, so the query-history and release-check caches persist through the
// same filesystem the rest of vsel uses.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
