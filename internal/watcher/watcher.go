// Package watcher re-runs an alignment whenever the watched folders change.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config contains watcher settings.
type Config struct {
	Debounce       time.Duration // Quiet period before a re-run
	Extension      string        // Only names ending in this trigger a re-run
	IgnorePatterns []string      // Glob patterns to ignore; nil selects the defaults
}

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 2 * time.Second

// RunFunc performs one alignment run. changed lists the paths that triggered
// it and is empty for the initial run. It returns the number of files copied.
type RunFunc func(changed []string) (copied int, err error)

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Runs        int // Completed runs, including the initial one
	FailedRuns  int
	FilesCopied int
	Events      int // Relevant filesystem events received
	Duration    time.Duration
}

// Watcher monitors directories and serializes re-runs.
type Watcher struct {
	config     Config
	run        RunFunc
	log        *slog.Logger
	fsWatcher  *fsnotify.Watcher
	fileFilter *FileFilter
	debouncer  *Debouncer
	done       chan struct{}
	wg         sync.WaitGroup
	startTime  time.Time

	// runMu serializes runs; mu guards the statistics.
	runMu       sync.Mutex
	mu          sync.Mutex
	stopped     bool
	runs        int
	failedRuns  int
	filesCopied int
	events      int
}

// New creates a new Watcher. A nil logger uses slog.Default().
func New(config Config, run RunFunc, logger *slog.Logger) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		config:     config,
		run:        run,
		log:        logger,
		fileFilter: NewFileFilter(config.Extension, config.IgnorePatterns),
		done:       make(chan struct{}),
	}
	w.debouncer = NewDebouncer(config.Debounce, w.rerun)
	return w
}

// Start begins watching dirs. Runs are triggered only by events; call
// Trigger for the initial run.
func (w *Watcher) Start(dirs []string) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.fsWatcher.Close()
			return err
		}
		if err := w.fsWatcher.Add(absDir); err != nil {
			w.fsWatcher.Close()
			return fmt.Errorf("failed to watch %s: %w", absDir, err)
		}
		w.log.Debug("watching folder", "path", absDir)
	}

	w.startTime = time.Now()

	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop shuts down the watcher, waits for a run in progress, and returns a
// summary of the session.
func (w *Watcher) Stop() *WatchSummary {
	w.mu.Lock()
	alreadyStopped := w.stopped
	w.stopped = true
	w.mu.Unlock()

	if !alreadyStopped {
		close(w.done)
		w.wg.Wait()
		w.debouncer.Cancel()
		if w.fsWatcher != nil {
			w.fsWatcher.Close()
		}
	}

	// Wait for a run started by the debouncer before reading the counters
	w.runMu.Lock()
	w.runMu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	return &WatchSummary{
		Runs:        w.runs,
		FailedRuns:  w.failedRuns,
		FilesCopied: w.filesCopied,
		Events:      w.events,
		Duration:    time.Since(w.startTime),
	}
}

// Run starts watching dirs, performs the initial run, and blocks until ctx
// is cancelled. An error from the initial run stops the session.
func (w *Watcher) Run(ctx context.Context, dirs []string) (*WatchSummary, error) {
	if err := w.Start(dirs); err != nil {
		return nil, err
	}

	if err := w.Trigger(nil); err != nil {
		return w.Stop(), err
	}

	<-ctx.Done()
	return w.Stop(), nil
}

// Trigger performs one run immediately, waiting for any run in progress.
func (w *Watcher) Trigger(changed []string) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	copied, err := w.run(changed)

	w.mu.Lock()
	w.runs++
	w.filesCopied += copied
	if err != nil {
		w.failedRuns++
	}
	w.mu.Unlock()

	return err
}

// rerun is the debouncer callback. Failures are logged and the session continues.
func (w *Watcher) rerun(changed []string) {
	if !w.IsRunning() {
		return
	}
	w.log.Debug("change detected", "paths", len(changed))
	if err := w.Trigger(changed); err != nil {
		w.log.Error("alignment run failed", "error", err)
	}
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.fileFilter.Relevant(event.Name) {
		return
	}

	w.mu.Lock()
	w.events++
	w.mu.Unlock()

	w.debouncer.Add(event.Name)
}

// GetConfig returns the current watcher configuration.
func (w *Watcher) GetConfig() Config {
	return w.config
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	select {
	case <-w.done:
		return false
	default:
		return w.fsWatcher != nil
	}
}
