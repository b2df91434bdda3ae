// Package fsutil holds small filesystem helpers shared by the fetch
// cache, adapted from the teacher's internal/mirror/dirsync.go.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// validateDirectoryPath rejects relative paths that still contain ".."
// after filepath.Clean (ones that climb above their starting directory),
// so callers can't be tricked into syncing a directory outside the cache
// root. A ".." that Clean resolves away, as in "a/../b", is accepted.
func validateDirectoryPath(path string) error {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) && strings.Contains(cleanPath, "..") {
		return errors.Newf("unsafe directory path (contains directory traversal): %s", path)
	}
	return nil
}

// DirSync calls fsync(2) on the directory itself, which POSIX requires
// after os.Create or os.Rename inside it before the entry is guaranteed
// durable.
func DirSync(d string) error {
	if err := validateDirectoryPath(d); err != nil {
		return errors.Wrap(err, "DirSync")
	}

	f, err := os.OpenFile(d, os.O_RDONLY, 0o755) //nolint:gosec // path validated above
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dirSyncFunc(path string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	if !info.Mode().IsDir() {
		return nil
	}
	return DirSync(path)
}

// DirSyncTree calls DirSync on every directory in the tree rooted at d,
// including d itself.
func DirSyncTree(d string) error {
	return filepath.Walk(d, dirSyncFunc)
}
