// Package vfs resolves asset paths against an ordered set of mounted data
// directories and archives. The most recently mounted source wins.
package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/rbmkit/pkg/archive"
	"github.com/Faultbox/rbmkit/pkg/encoding"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// ErrNotFound is returned when no mount holds a path.
var ErrNotFound = errors.New("file not found")

// ErrInvalidPath is returned for paths that escape a mount root.
var ErrInvalidPath = errors.New("invalid asset path")

// MountKind distinguishes directory mounts from archive mounts.
type MountKind int

const (
	MountDirectory MountKind = iota
	MountArchive
)

func (k MountKind) String() string {
	if k == MountArchive {
		return "archive"
	}
	return "directory"
}

// Mount describes one mounted source.
type Mount struct {
	Kind MountKind
	Path string
}

type source struct {
	Mount
	archive *archive.Archive
}

// FS is a mount table. It is safe for concurrent use.
type FS struct {
	mu      sync.RWMutex
	sources []source
	cache   *Cache
	log     *zap.Logger
}

// New creates an empty mount table. A nil logger disables logging.
func New(log *zap.Logger) *FS {
	if log == nil {
		log = zap.NewNop()
	}
	return &FS{
		cache: NewCache(),
		log:   log,
	}
}

func (f *FS) indexOf(kind MountKind, path string) int {
	return slices.IndexFunc(f.sources, func(s source) bool {
		return s.Kind == kind && s.Path == path
	})
}

// MountDirectory mounts a directory above every existing mount. Mounting a
// directory again moves it to the top. It reports whether the directory was
// newly mounted.
func (f *FS) MountDirectory(path string) bool {
	path = filepath.Clean(path)

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(MountDirectory, path)
	if i >= 0 {
		f.sources = slices.Delete(f.sources, i, i+1)
	}
	f.sources = append(f.sources, source{Mount: Mount{Kind: MountDirectory, Path: path}})
	f.cache.Clear()

	if i < 0 {
		f.log.Info("directory mounted", zap.String("path", path))
	}
	return i < 0
}

// UnmountDirectory removes a directory mount. It reports whether the
// directory was mounted.
func (f *FS) UnmountDirectory(path string) bool {
	path = filepath.Clean(path)

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(MountDirectory, path)
	if i < 0 {
		return false
	}
	f.sources = slices.Delete(f.sources, i, i+1)
	f.cache.Clear()
	f.log.Info("directory unmounted", zap.String("path", path))
	return true
}

// MountArchive opens the archive indexed by tabPath and mounts it above
// every existing mount. An archive that is already mounted is left in place.
func (f *FS) MountArchive(tabPath string) error {
	tabPath = filepath.Clean(tabPath)
	if f.HasArchive(tabPath) {
		return nil
	}

	a, err := archive.Open(tabPath)
	if err != nil {
		f.log.Warn("archive mount failed", zap.String("path", tabPath), zap.Error(err))
		return fmt.Errorf("mounting archive %s: %w", tabPath, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexOf(MountArchive, tabPath) >= 0 {
		return a.Close()
	}
	f.sources = append(f.sources, source{Mount: Mount{Kind: MountArchive, Path: tabPath}, archive: a})
	f.cache.Clear()
	f.log.Info("archive mounted", zap.String("path", tabPath), zap.Int("files", a.Len()))
	return nil
}

// UnmountArchive closes and removes an archive mount. It reports whether the
// archive was mounted.
func (f *FS) UnmountArchive(tabPath string) bool {
	tabPath = filepath.Clean(tabPath)

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(MountArchive, tabPath)
	if i < 0 {
		return false
	}
	if err := f.sources[i].archive.Close(); err != nil {
		f.log.Warn("closing archive", zap.String("path", tabPath), zap.Error(err))
	}
	f.sources = slices.Delete(f.sources, i, i+1)
	f.cache.Clear()
	f.log.Info("archive unmounted", zap.String("path", tabPath))
	return true
}

// HasArchive reports whether the archive is mounted.
func (f *FS) HasArchive(tabPath string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(MountArchive, filepath.Clean(tabPath)) >= 0
}

// Mounts returns the mount table from lowest to highest priority.
func (f *FS) Mounts() []Mount {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]Mount, len(f.sources))
	for i, s := range f.sources {
		result[i] = s.Mount
	}
	return result
}

// assetPath cleans an asset path to forward-slash form and rejects paths
// that leave the mount root.
func assetPath(path string) (string, error) {
	p := strings.ReplaceAll(path, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return p, nil
}

// Read returns the contents of path from the highest-priority mount that
// holds it.
func (f *FS) Read(path string) ([]byte, error) {
	p, err := assetPath(path)
	if err != nil {
		return nil, err
	}
	key := encoding.NormalizePath(p)
	if data, ok := f.cache.Get(key); ok {
		return data, nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for i := len(f.sources) - 1; i >= 0; i-- {
		data, err := f.sources[i].read(p)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		f.cache.Set(key, data)
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (s *source) read(p string) ([]byte, error) {
	if s.Kind == MountArchive {
		data, err := s.archive.Read(p)
		if errors.Is(err, archive.ErrNotFound) {
			return nil, ErrNotFound
		}
		return data, err
	}

	data, err := os.ReadFile(filepath.Join(s.Path, filepath.FromSlash(p)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", p, s.Path, err)
	}
	return data, nil
}

// Exists reports whether any mount holds path.
func (f *FS) Exists(path string) bool {
	p, err := assetPath(path)
	if err != nil {
		return false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for i := len(f.sources) - 1; i >= 0; i-- {
		s := f.sources[i]
		if s.Kind == MountArchive {
			if s.archive.Contains(p) {
				return true
			}
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Path, filepath.FromSlash(p))); err == nil {
			return true
		}
	}
	return false
}

// LoadModel reads and decodes a render block model. Rejected models are
// logged with their error kind.
func (f *FS) LoadModel(path string) (*rbm.Model, error) {
	data, err := f.Read(path)
	if err != nil {
		return nil, err
	}
	m, err := rbm.Decode(data)
	if err != nil {
		f.log.Warn("model rejected",
			zap.String("path", path),
			zap.String("kind", rbm.ErrKind(err)),
			zap.Error(err))
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return m, nil
}

// Invalidate drops path from the read cache.
func (f *FS) Invalidate(path string) {
	if p, err := assetPath(path); err == nil {
		f.cache.Delete(encoding.NormalizePath(p))
	}
}

// CacheStats returns read cache hits and misses.
func (f *FS) CacheStats() (hits, misses int) {
	return f.cache.Stats()
}

// Files lists the files with extension ext (any when empty) under every
// mounted directory, as forward-slash asset paths. Archives store only path
// hashes and are not listed.
func (f *FS) Files(ext string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[string]bool)
	for _, s := range f.sources {
		if s.Kind != MountDirectory {
			continue
		}
		root := s.Path
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ext != "" && !strings.EqualFold(filepath.Ext(path), ext) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			seen[filepath.ToSlash(rel)] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	result := make([]string, 0, len(seen))
	for p := range seen {
		result = append(result, p)
	}
	sort.Strings(result)
	return result, nil
}

// Close unmounts everything and closes all archives.
func (f *FS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for _, s := range f.sources {
		if s.archive != nil {
			errs = append(errs, s.archive.Close())
		}
	}
	f.sources = nil
	f.cache.Clear()
	return errors.Join(errs...)
}
