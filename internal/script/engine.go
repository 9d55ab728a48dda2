package script

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Interpreter evaluates code for the engine. Implementations are only ever
// called from the engine goroutine.
type Interpreter interface {
	Execute(code string) (Response, error)
	ExecFile(path string) (Response, error)
	Close()
}

// InterpreterFactory builds a fresh interpreter; the engine calls it at start
// and on every Restart.
type InterpreterFactory func() (Interpreter, error)

// Recorder persists evaluated queries.
type Recorder interface {
	Record(ctx context.Context, q Query, r Response) error
}

type EngineConfig struct {
	// InitScript is run after every (re)start when it exists.
	InitScript string
	Recorder   Recorder
	// OnResult sees every response, for display. It runs on the engine
	// goroutine and must not block.
	OnResult func(Query, Response)
	// OnRestart runs after the interpreter has been rebuilt.
	OnRestart func()
	Logger    *zap.Logger
}

// Engine is the single consumer of a Bridge.
type Engine struct {
	bridge  *Bridge
	factory InterpreterFactory
	cfg     EngineConfig
	log     *zap.Logger
}

func NewEngine(bridge *Bridge, factory InterpreterFactory, cfg EngineConfig) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{bridge: bridge, factory: factory, cfg: cfg, log: log.Named("engine")}
}

// Run evaluates queries until ctx is cancelled or the bridge is closed. The
// bridge is closed when Run returns, so later sends fail fast.
func (e *Engine) Run(ctx context.Context) error {
	defer e.bridge.Close()

	interp, err := e.start()
	if err != nil {
		return fmt.Errorf("start interpreter: %w", err)
	}
	defer func() { interp.Close() }()
	e.log.Info("script engine started")

	for {
		req, ok := e.bridge.next(ctx)
		if !ok {
			e.log.Info("script engine stopped")
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}

		q := req.query
		if q.Kind == KindRestart {
			next, err := e.start()
			if err != nil {
				e.log.Error("restart failed, keeping previous interpreter", zap.Error(err))
				continue
			}
			interp.Close()
			interp = next
			e.log.Info("script engine restarted", zap.String("id", q.ID))
			e.record(ctx, q, Response{QueryID: q.ID})
			if e.cfg.OnRestart != nil {
				e.cfg.OnRestart()
			}
			continue
		}

		resp := e.eval(interp, q)
		if resp.Err != nil {
			e.log.Debug("query failed", zap.String("id", q.ID), zap.Error(resp.Err))
		} else {
			e.log.Debug("query done", zap.String("id", q.ID), zap.Strings("values", resp.Values))
		}
		e.record(ctx, q, resp)
		if e.cfg.OnResult != nil {
			e.cfg.OnResult(q, resp)
		}
		// reply is buffered; a discarded Pending never blocks the engine.
		if req.reply != nil {
			req.reply <- resp
		}
	}
}

func (e *Engine) start() (Interpreter, error) {
	interp, err := e.factory()
	if err != nil {
		return nil, err
	}
	if e.cfg.InitScript == "" {
		return interp, nil
	}
	if _, err := os.Stat(e.cfg.InitScript); err != nil {
		e.log.Debug("init script not loaded", zap.String("path", e.cfg.InitScript), zap.Error(err))
		return interp, nil
	}
	if resp := e.eval(interp, ExecFile(e.cfg.InitScript)); resp.Err != nil {
		e.log.Warn("init script failed", zap.String("path", e.cfg.InitScript), zap.Error(resp.Err))
	}
	return interp, nil
}

func (e *Engine) eval(interp Interpreter, q Query) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{QueryID: q.ID, Err: fmt.Errorf("interpreter panic: %v", r)}
		}
	}()
	var err error
	switch q.Kind {
	case KindExecute:
		resp, err = interp.Execute(q.Code)
	case KindExecFile:
		resp, err = interp.ExecFile(q.Code)
	default:
		err = fmt.Errorf("unsupported query kind %s", q.Kind)
	}
	resp.QueryID = q.ID
	resp.Err = err
	return resp
}

func (e *Engine) record(ctx context.Context, q Query, r Response) {
	if e.cfg.Recorder == nil {
		return
	}
	if err := e.cfg.Recorder.Record(context.WithoutCancel(ctx), q, r); err != nil {
		e.log.Warn("record query", zap.String("id", q.ID), zap.Error(err))
	}
}
