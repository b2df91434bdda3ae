// Package cache stores the bytes librepo-probe fetches for flat-mirrorlist
// and Metalink sources on disk, keyed by source name, so a later run
// doesn't need the network to rebuild a mirrorlist from its last-known
// contents.
//
// The write path (temp file in the same directory, fsync, atomic rename,
// then fsync the directory) is adapted from the teacher's
// internal/mirror/storage.go — Storage.TempFile plus the DirSyncTree call
// in Storage.Save — rewritten from Storage's JSON-metadata-plus-hardlink
// scheme (which is irreducibly tied to the APT-specific apt.FileInfo type
// this module doesn't carry) down to the plain "one file per named
// source" shape this cache actually needs.
package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mirrorkit/librepo/internal/config"
	"github.com/mirrorkit/librepo/internal/fsutil"
)

// Cache is a directory of cached source payloads.
type Cache struct {
	dir string
}

// Open returns a Cache rooted at dir, which must be an absolute path to
// an existing directory.
func Open(dir string) (*Cache, error) {
	if !filepath.IsAbs(dir) {
		return nil, errors.Newf("cache dir must be absolute: %s", dir)
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "stat cache dir")
	}
	if !st.IsDir() {
		return nil, errors.Newf("not a directory: %s", dir)
	}
	return &Cache{dir: filepath.Clean(dir)}, nil
}

// pathFor maps a source name to its on-disk cache file, validating the
// name the same way config.IsValidID does so a malicious name can never
// escape dir.
func (c *Cache) pathFor(name string) (string, error) {
	if !config.IsValidID(name) || strings.Contains(name, "..") {
		return "", errors.Newf("invalid cache key: %q", name)
	}
	return filepath.Join(c.dir, name+".cache"), nil
}

// Get returns the cached bytes for name, or (nil, false, nil) if nothing
// is cached yet.
func (c *Cache) Get(name string) ([]byte, bool, error) {
	p, err := c.pathFor(name)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p) //nolint:gosec // path validated by pathFor
	switch {
	case os.IsNotExist(err):
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Wrap(err, "reading cache entry")
	}
	return b, true, nil
}

// Put writes data for name atomically: a temp file in the cache
// directory is written, fsynced, and renamed over the final path, and
// the directory itself is fsynced afterward so the rename survives a
// crash.
func (c *Cache) Put(name string, data []byte) error {
	p, err := c.pathFor(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "."+name+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpPath, p); err != nil {
		return errors.Wrap(err, "renaming into place")
	}
	if err := fsutil.DirSync(c.dir); err != nil {
		return errors.Wrap(err, "syncing cache dir")
	}
	return nil
}
