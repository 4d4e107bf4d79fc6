package routesource

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/facturacom/webrouter/pkg/router"
)

// DefaultDebounce is how long Watch waits after the last write before reloading.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc is called after every reload attempt. table is the active table,
// which is the previous one when err is non-nil.
type ReloadFunc func(table *router.Table, err error)

// Live holds the active route table for a source and swaps it on reload.
// It implements router.TableSource, so navigators pick up new tables without
// restarting.
type Live struct {
	loader   *Loader
	source   string
	current  atomic.Pointer[router.Table]
	debounce time.Duration

	mu       sync.Mutex
	onReload []ReloadFunc
}

// LiveOption configures a Live source.
type LiveOption func(*Live)

// WithDebounce sets the delay between a file change and the reload.
func WithDebounce(d time.Duration) LiveOption {
	return func(l *Live) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// WithOnReload registers a reload callback.
func WithOnReload(fn ReloadFunc) LiveOption {
	return func(l *Live) {
		l.onReload = append(l.onReload, fn)
	}
}

// NewLive loads source once and returns a Live holding the result.
func NewLive(ctx context.Context, loader *Loader, source string, opts ...LiveOption) (*Live, error) {
	if loader == nil {
		loader = NewLoader(nil, nil)
	}
	l := &Live{
		loader:   loader,
		source:   source,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}

	table, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	l.current.Store(table)
	return l, nil
}

// Table returns the active table.
func (l *Live) Table() *router.Table {
	return l.current.Load()
}

// Source returns the source string the table is loaded from.
func (l *Live) Source() string {
	return l.source
}

// OnReload registers a reload callback.
func (l *Live) OnReload(fn ReloadFunc) {
	l.mu.Lock()
	l.onReload = append(l.onReload, fn)
	l.mu.Unlock()
}

// Reload reads the source again. On failure the previous table stays active.
func (l *Live) Reload(ctx context.Context) error {
	table, err := l.loader.Load(ctx, l.source)
	if err != nil {
		l.loader.logger().Error("route table reload failed",
			"source", l.source,
			"error", err,
		)
		l.notify(l.Table(), err)
		return err
	}

	prev := l.current.Swap(table)
	l.loader.logger().Info("route table reloaded",
		"source", l.source,
		"previous", prev.Version(),
		"version", table.Version(),
	)
	l.notify(table, nil)
	return nil
}

func (l *Live) notify(table *router.Table, err error) {
	l.mu.Lock()
	callbacks := append([]ReloadFunc(nil), l.onReload...)
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn(table, err)
	}
}

// Watch reloads the table whenever the source file changes. It blocks until
// ctx is cancelled. Only file sources can be watched.
func (l *Live) Watch(ctx context.Context) error {
	if KindOf(l.source) != KindFile {
		return fmt.Errorf("routesource: cannot watch %q: only file sources support watching", l.source)
	}

	target, err := filepath.Abs(l.source)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("routesource: create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files via rename, which drops a watch on the
	// file itself. Watch the directory and filter by name.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("routesource: watch %s: %w", filepath.Dir(target), err)
	}

	logger := l.loader.logger().With("source", l.source)
	logger.Debug("watching route table")

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("route table changed", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(l.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			_ = l.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("route table watcher error", "error", err)
		}
	}
}

var _ router.TableSource = (*Live)(nil)
