// Package inbox watches drop directories and ingests documents placed in them.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Ingester receives files that appear in or vanish from the inbox.
type Ingester interface {
	IngestPath(ctx context.Context, path string) error
	ForgetPath(ctx context.Context, path string) error
}

// Inbox watches directories with fsnotify. Writes to the same file are debounced so a file
// being copied in is ingested once it settles.
type Inbox struct {
	dirs       []string
	extensions map[string]bool
	recursive  bool
	debounce   time.Duration
	ingester   Ingester
	logger     *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLogger sets a logger for watch events.
func WithLogger(l *zap.Logger) Option {
	return func(in *Inbox) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(in *Inbox) {
		if d > 0 {
			in.debounce = d
		}
	}
}

// WithRecursive also watches subdirectories, including ones created later.
func WithRecursive(recursive bool) Option {
	return func(in *Inbox) { in.recursive = recursive }
}

// New creates an inbox over dirs. extensions filters files by extension (with or without the
// leading dot); empty accepts every file.
func New(dirs, extensions []string, ingester Ingester, opts ...Option) *Inbox {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[normalizeExt(e)] = true
	}
	in := &Inbox{
		dirs:       dirs,
		extensions: exts,
		debounce:   defaultDebounce,
		ingester:   ingester,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run creates missing directories, ingests files already present, and then ingests changes
// until ctx is cancelled. It returns nil on cancellation.
func (in *Inbox) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range in.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create inbox %s: %w", dir, err)
		}
		if err := in.watchTree(w, dir); err != nil {
			return err
		}
	}
	in.logger.Info("inbox watching", zap.Strings("dirs", in.dirs), zap.Bool("recursive", in.recursive))
	for _, dir := range in.dirs {
		in.scan(ctx, dir)
	}

	defer in.drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			in.handle(ctx, w, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Warn("inbox watcher error", zap.Error(err))
		}
	}
}

func (in *Inbox) handle(ctx context.Context, w *fsnotify.Watcher, ev fsnotify.Event) {
	path := ev.Name
	in.logger.Debug("inbox event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if in.recursive {
				if err := in.watchTree(w, path); err != nil {
					in.logger.Warn("inbox add directory failed", zap.String("path", path), zap.Error(err))
				}
				in.scan(ctx, path)
			}
			return
		}
		if in.accepts(path) {
			in.schedule(ctx, path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		in.cancel(path)
		if in.accepts(path) {
			if err := in.ingester.ForgetPath(ctx, path); err != nil {
				in.logger.Warn("inbox forget failed", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

func (in *Inbox) watchTree(w *fsnotify.Watcher, root string) error {
	if !in.recursive {
		if err := w.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// scan ingests files already under root.
func (in *Inbox) scan(ctx context.Context, root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !in.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if in.accepts(path) {
			in.ingest(ctx, path)
		}
		return ctx.Err()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		in.logger.Warn("inbox scan failed", zap.String("root", root), zap.Error(err))
	}
}

func (in *Inbox) schedule(ctx context.Context, path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if prev, ok := in.pending[path]; ok && prev.Stop() {
		in.wg.Done()
	}
	in.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(in.debounce, func() {
		defer in.wg.Done()
		in.mu.Lock()
		if in.pending[path] == t {
			delete(in.pending, path)
		}
		in.mu.Unlock()
		if ctx.Err() == nil {
			in.ingest(ctx, path)
		}
	})
	in.pending[path] = t
}

func (in *Inbox) cancel(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.pending[path]; ok && t.Stop() {
		in.wg.Done()
	}
	delete(in.pending, path)
}

// drain stops pending timers and waits for running ingests.
func (in *Inbox) drain() {
	in.mu.Lock()
	for path, t := range in.pending {
		if t.Stop() {
			in.wg.Done()
		}
		delete(in.pending, path)
	}
	in.mu.Unlock()
	in.wg.Wait()
}

func (in *Inbox) ingest(ctx context.Context, path string) {
	if err := in.ingester.IngestPath(ctx, path); err != nil {
		in.logger.Warn("inbox ingest failed", zap.String("path", path), zap.Error(err))
	}
}

func (in *Inbox) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if len(in.extensions) == 0 {
		return true
	}
	return in.extensions[normalizeExt(filepath.Ext(path))]
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}
