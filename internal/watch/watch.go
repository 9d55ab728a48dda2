// Package watch restarts the script engine when the init script changes on
// disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jask/wayshell/core"
)

// Invoker runs a named command. *core.CommandRegistry satisfies it.
type Invoker interface {
	Invoke(id string) error
}

// Stats counts watcher activity.
type Stats struct {
	Events    int
	Restarts  int
	Errors    int
	LastEvent time.Time
}

// Watcher watches the init script's directory and invokes the restart
// command once writes to the script settle.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	target   string
	dir      string
	commands Invoker
	debounce time.Duration
	log      *zap.Logger

	pending   time.Time
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	stats     Stats
}

// New watches initFile. A debounce of zero uses 300ms.
func New(initFile string, commands Invoker, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	target, err := filepath.Abs(initFile)
	if err != nil {
		target = filepath.Clean(initFile)
	}
	return &Watcher{
		watcher:  w,
		target:   target,
		dir:      filepath.Dir(target),
		commands: commands,
		debounce: debounce,
		log:      log.Named("watch"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block; a directory that cannot be
// watched is logged and the watcher stays idle.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.log.Warn("init script directory not watched", zap.String("dir", w.dir), zap.Error(err))
	} else {
		w.log.Debug("watching init script", zap.String("path", w.target))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it. It is safe to call more than
// once and without Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	w.closeOnce.Do(func() {
		close(w.stopCh)
		if wasRunning {
			<-w.doneCh
		}
		if err := w.watcher.Close(); err != nil {
			w.log.Error("closing watcher", zap.Error(err))
		}
	})
}

func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(max(w.debounce/4, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-tick.C:
			w.fireSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.target {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.log.Debug("init script changed", zap.String("op", event.Op.String()))
	w.mu.Lock()
	now := time.Now()
	w.pending = now
	w.stats.Events++
	w.stats.LastEvent = now
	w.mu.Unlock()
}

func (w *Watcher) fireSettled() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.stats.Restarts++
	w.mu.Unlock()

	w.log.Info("init script changed, restarting engine", zap.String("path", w.target))
	if err := w.commands.Invoke(core.CmdRestart); err != nil {
		w.log.Warn("restart failed", zap.Error(err))
	}
}
