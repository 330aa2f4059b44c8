// Package watcher reloads trained artifacts when the store pointer changes.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// ArtifactWatcher watches the artifact store's pointer file and invokes a
// reload callback after each completed training run. The pointer is swapped
// by rename, so a single event marks a fully written artifact pair; the
// debounce absorbs the create/rename bursts some platforms deliver.
type ArtifactWatcher struct {
	pointerPath string
	onReload    func()
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	timer       *time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger // optional; when set, logs debug events
}

// Option configures an ArtifactWatcher.
type Option func(*ArtifactWatcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *ArtifactWatcher) { w.logger = l }
}

// WithDebounce overrides the reload debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *ArtifactWatcher) { w.debounce = d }
}

// New creates a watcher over the given pointer file. onReload is called after
// the pointer changes and the debounce interval passes.
func New(pointerPath string, onReload func(), opts ...Option) *ArtifactWatcher {
	w := &ArtifactWatcher{
		pointerPath: filepath.Clean(pointerPath),
		onReload:    onReload,
		debounce:    defaultDebounce,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// The pointer file's directory must already exist.
func (w *ArtifactWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	// Watch the directory, not the file: the pointer is replaced by rename,
	// which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(w.pointerPath)); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	if w.logger != nil {
		w.logger.Debug("artifact watcher starting", zap.String("pointer", w.pointerPath))
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

func (w *ArtifactWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("artifact watcher error", zap.Error(err))
			}
		}
	}
}

func (w *ArtifactWatcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.pointerPath {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	if w.logger != nil {
		w.logger.Debug("artifact pointer changed", zap.String("op", ev.Op.String()))
	}
	w.scheduleReload()
}

func (w *ArtifactWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		logger := w.logger
		w.mu.Unlock()
		if logger != nil {
			logger.Debug("artifact reload triggered")
		}
		if w.onReload != nil {
			w.onReload()
		}
	})
}

// Stop stops the watcher and releases resources.
func (w *ArtifactWatcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
