// Package watch runs batches as their recognizer output directories appear.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// DefaultSettle is how long a new batch directory must exist before it runs.
const DefaultSettle = 2 * time.Second

// queueSize bounds the batches waiting for the coordinator.
const queueSize = 64

// Config holds watcher settings.
type Config struct {
	// Root is the directory whose subdirectories are batches.
	Root string

	// IsBatch filters directory names; nil accepts every name.
	IsBatch func(name string) bool

	// Settle is the quiet period before a new batch is run.
	Settle time.Duration

	// RunExisting also runs the batches present when watching starts.
	RunExisting bool

	// Options are passed to every run.
	Options driving.RunOptions

	// OnReport receives each finished run. It is called from the run goroutine.
	OnReport func(*domain.BatchReport)
}

// Watcher feeds newly created batch directories to the coordinator,
// one batch at a time.
type Watcher struct {
	config      Config
	coordinator driving.BatchCoordinator

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a watcher.
func New(config Config, coordinator driving.BatchCoordinator) *Watcher {
	if config.Settle <= 0 {
		config.Settle = DefaultSettle
	}
	if config.IsBatch == nil {
		config.IsBatch = func(string) bool { return true }
	}
	return &Watcher{
		config:      config,
		coordinator: coordinator,
		ready:       make(chan struct{}),
	}
}

// Ready is closed once the root is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. A failed batch is logged and does
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if w.coordinator == nil {
		return errors.New("watch: batch coordinator is required")
	}
	if err := os.MkdirAll(w.config.Root, 0o755); err != nil {
		return fmt.Errorf("create watch root: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.config.Root); err != nil {
		return fmt.Errorf("watch %s: %w", w.config.Root, err)
	}

	existing, err := w.coordinator.Batches(ctx)
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}

	queue := make(chan string, queueSize)
	seen := make(map[string]bool, len(existing))
	for _, name := range existing {
		seen[name] = true
		if w.config.RunExisting {
			select {
			case queue <- name:
			default:
				logger.Warn("watch: queue full, batch %s not run", name)
			}
		}
	}

	logger.Info("watch: watching %s (%d existing batches)", w.config.Root, len(existing))
	w.readyOnce.Do(func() { close(w.ready) })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.drain(gctx, queue)
	})
	g.Go(func() error {
		defer close(queue)
		return w.watch(gctx, fw, seen, queue)
	})
	return g.Wait()
}

// action is what an fsnotify event means for the batch set.
type action int

const (
	actionNone action = iota
	actionCreated
	actionRemoved
)

// handleEvent classifies an event on the root. Only direct children of the
// root that pass IsBatch are considered.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, action) {
	if filepath.Clean(filepath.Dir(event.Name)) != filepath.Clean(w.config.Root) {
		return "", actionNone
	}
	name := filepath.Base(event.Name)
	if !w.config.IsBatch(name) {
		return "", actionNone
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return name, actionRemoved
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return "", actionNone
		}
		return name, actionCreated
	}
	return "", actionNone
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher, seen map[string]bool, queue chan<- string) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.config.Settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name, act := w.handleEvent(event)
			switch act {
			case actionCreated:
				if !seen[name] {
					logger.Debug("watch: new batch %s", name)
					pending[name] = time.Now()
				}
			case actionRemoved:
				delete(pending, name)
				delete(seen, name)
			case actionNone:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case now := <-ticker.C:
			for name, since := range pending {
				if now.Sub(since) < w.config.Settle {
					continue
				}
				delete(pending, name)
				if info, err := os.Stat(filepath.Join(w.config.Root, name)); err != nil || !info.IsDir() {
					continue
				}
				seen[name] = true
				select {
				case queue <- name:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func (w *Watcher) drain(ctx context.Context, queue <-chan string) error {
	for name := range queue {
		if ctx.Err() != nil {
			return nil
		}
		logger.Info("watch: running batch %s", name)
		report, err := w.coordinator.Run(ctx, name, w.config.Options)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("watch: batch %s: %v", name, err)
			continue
		}
		logger.Info("watch: batch %s: %d persisted, %d failed, %d skipped",
			name, report.Persisted, report.Failed, report.Skipped)
		if w.config.OnReport != nil {
			w.config.OnReport(report)
		}
	}
	return nil
}
