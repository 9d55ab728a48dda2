package picker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/wayshell/internal/script"
)

// Sender is the part of script.Bridge the runner needs.
type Sender interface {
	Send(q script.Query) (*script.Pending, error)
}

type RunnerConfig struct {
	Launcher *Launcher
	Bridge   Sender
	// ResponseTimeout bounds how long a session waits to log the engine's
	// answer. Zero waits until the runner context ends.
	ResponseTimeout time.Duration
	// OnError is told about failures that abort a session.
	OnError func(error)
	Logger  *zap.Logger
}

// Runner runs each picker session on its own goroutine so the command that
// triggered it returns immediately. Sessions never touch the command
// registry or the layout tree, so any number may run at once.
type Runner struct {
	ctx context.Context
	cfg RunnerConfig
	log *zap.Logger
	wg  sync.WaitGroup
}

// NewRunner binds sessions to ctx: cancelling it kills running pickers.
func NewRunner(ctx context.Context, cfg RunnerConfig) *Runner {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{ctx: ctx, cfg: cfg, log: log.Named("picker")}
}

// Run starts a session that prompts with prompt and forwards the text as an
// Execute query (or ExecFile when kind is script.KindExecFile).
func (r *Runner) Run(prompt string, kind script.QueryKind) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.session(prompt, kind); err != nil {
			r.log.Error("picker session failed", zap.String("prompt", prompt), zap.Error(err))
			if r.cfg.OnError != nil {
				r.cfg.OnError(err)
			}
		}
	}()
}

// Wait blocks until every started session has finished.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) session(prompt string, kind script.QueryKind) error {
	s, err := r.cfg.Launcher.Launch(r.ctx, prompt)
	if err != nil {
		return err
	}
	text, err := s.Capture()
	if err != nil {
		return err
	}

	q := script.Execute(text)
	if kind == script.KindExecFile {
		q = script.ExecFile(text)
	}
	p, err := r.cfg.Bridge.Send(q)
	if err != nil {
		return err
	}

	ctx := r.ctx
	if r.cfg.ResponseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ResponseTimeout)
		defer cancel()
	}
	resp, err := p.Await(ctx)
	if err != nil {
		r.log.Warn("no script result", zap.String("id", q.ID), zap.Error(err))
		return nil
	}
	r.log.Debug("script result",
		zap.String("id", resp.QueryID),
		zap.String("output", resp.Output),
		zap.Strings("values", resp.Values),
		zap.Error(resp.Err))
	return nil
}
