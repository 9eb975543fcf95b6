// Package watch re-validates models as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// Result is the outcome of re-reading one changed file.
type Result struct {
	Path    string // relative to the watched root, forward slashes
	Model   *rbm.Model
	Err     error
	Removed bool
}

// Handler receives results on the watcher's goroutine.
type Handler func(Result)

// Options configures a Watcher.
type Options struct {
	Extensions []string // matched case-insensitively; empty matches all
	Debounce   time.Duration
}

// Watcher watches a directory tree and decodes matching files after writes
// settle.
type Watcher struct {
	root   string
	opts   Options
	handle Handler
	log    *zap.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New starts watching root and every directory below it.
func New(root string, opts Options, log *zap.Logger, handle Handler) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		root:    root,
		opts:    opts,
		handle:  handle,
		log:     log.Named("watch"),
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// Matches reports whether a file name has one of the watched extensions.
func (w *Watcher) Matches(name string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	return slices.ContainsFunc(w.opts.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// Run processes events until ctx is done, then closes the watcher and waits
// for in-flight handlers.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(e)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) stop() {
	w.fsw.Close()
	w.mu.Lock()
	for p, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, p)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) handleEvent(e fsnotify.Event) {
	if e.Has(fsnotify.Create) {
		if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
			if err := w.addRecursive(e.Name); err != nil {
				w.log.Warn("watch directory failed", zap.String("dir", e.Name), zap.Error(err))
			}
			return
		}
	}
	if !w.Matches(e.Name) {
		return
	}

	switch {
	case e.Has(fsnotify.Create), e.Has(fsnotify.Write):
		w.schedule(e.Name)
	case e.Has(fsnotify.Remove), e.Has(fsnotify.Rename):
		w.cancel(e.Name)
		w.emit(Result{Path: w.rel(e.Name), Removed: true})
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(path)
}

// scheduleLocked requires w.mu. A timer that already fired may still be
// waiting on the lock; it only clears the pending entry if that entry is
// still its own.
func (w *Watcher) scheduleLocked(path string) {
	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.opts.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.validate(path)
	})
	w.pending[path] = t
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) validate(path string) {
	rel := w.rel(path)
	m, err := rbm.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		w.emit(Result{Path: rel, Removed: true})
		return
	}
	if err != nil {
		w.log.Warn("model rejected",
			zap.String("path", rel),
			zap.String("kind", rbm.ErrKind(err)),
			zap.Error(err))
	} else {
		w.log.Debug("model ok",
			zap.String("path", rel),
			zap.Int("blocks", len(m.Blocks)),
			zap.Int("vertices", m.VertexCount()))
	}
	w.emit(Result{Path: rel, Model: m, Err: err})
}

func (w *Watcher) emit(r Result) {
	if w.handle != nil {
		w.handle(r)
	}
}

func (w *Watcher) rel(path string) string {
	if r, err := filepath.Rel(w.root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return filepath.ToSlash(path)
}
