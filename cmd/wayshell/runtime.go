package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/wayshell/core"
	"github.com/jask/wayshell/internal/commands"
	"github.com/jask/wayshell/internal/config"
	"github.com/jask/wayshell/internal/database"
	"github.com/jask/wayshell/internal/database/repository"
	"github.com/jask/wayshell/internal/layout"
	"github.com/jask/wayshell/internal/picker"
	"github.com/jask/wayshell/internal/script"
	"github.com/jask/wayshell/internal/tui"
)

// runtime owns everything a session needs: the registries, the layout tree,
// the script engine and the optional history store.
type runtime struct {
	cfg     config.Config
	log     *zap.Logger
	tree    *layout.MemoryTree
	keys    *core.KeyRegistry
	cmds    *core.CommandRegistry
	bridge  *script.Bridge
	engine  *script.Engine
	picker  *picker.Runner
	db      *sql.DB
	history *repository.HistoryRepo

	program atomic.Pointer[tea.Program]
	// ui queues messages for the TUI so engine callbacks never block on it.
	ui chan tea.Msg
}

func newRuntime(ctx context.Context, cfg config.Config, log *zap.Logger) (*runtime, error) {
	rt := &runtime{
		cfg:  cfg,
		log:  log,
		tree: layout.NewMemoryTree("1"),
		cmds: core.InitCommands(log),
		ui:   make(chan tea.Msg, 64),
	}
	rt.keys = core.NewKeyRegistry(rt.bindings())
	rt.bridge = script.NewBridge(cfg.Script.QueryTimeout, log)

	if cfg.History.Enabled {
		db, err := database.OpenMigrated(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		rt.db = db
		rt.history = repository.NewHistoryRepo(db)
	}

	ecfg := script.EngineConfig{
		InitScript: cfg.Script.InitFile,
		OnResult:   rt.onResult,
		OnRestart:  rt.onRestart,
		Logger:     log,
	}
	if rt.history != nil {
		ecfg.Recorder = rt.history
	}
	host := commands.ScriptHost{Commands: rt.cmds, Keys: rt.keys}
	rt.engine = script.NewEngine(rt.bridge, script.LuaFactory(host), ecfg)

	rt.picker = picker.NewRunner(ctx, picker.RunnerConfig{
		Launcher:        picker.NewLauncher(cfg.Picker.Command, cfg.Picker.Args, cfg.Picker.PromptFlag, log),
		Bridge:          rt.bridge,
		ResponseTimeout: cfg.Picker.ResponseTimeout,
		OnError: func(err error) {
			rt.notify(core.StatusMsg{Text: err.Error(), IsErr: true})
		},
		Logger: log,
	})

	if err := commands.RegisterDefaults(rt.cmds, commands.Deps{
		Tree:   rt.tree,
		Bridge: rt.bridge,
		Picker: rt.picker,
		Keys:   rt.keys,
		Quit:   rt.quit,
		Logger: log,
	}); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// bindings are the defaults with the configured per-command overrides.
func (rt *runtime) bindings() []core.KeyBinding {
	return core.ApplyCommandKeybindings(core.DefaultKeyBindings(), rt.cfg.Keys)
}

func (rt *runtime) onResult(q script.Query, r script.Response) {
	rt.notify(tui.ResultMsg(q, r))
}

// onRestart puts the default bindings back underneath whatever the init
// script bound, so script bindings keep precedence.
func (rt *runtime) onRestart() {
	rt.keys.Replace(append(rt.bindings(), rt.keys.Bindings()...))
	rt.notify(core.StatusMsg{Text: "script engine restarted"})
}

func (rt *runtime) notify(msg tea.Msg) {
	select {
	case rt.ui <- msg:
	default:
		rt.log.Debug("ui queue full, message dropped")
	}
}

// forward delivers queued messages to the TUI until ctx ends.
func (rt *runtime) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-rt.ui:
			if p := rt.program.Load(); p != nil {
				p.Send(msg)
			}
		}
	}
}

func (rt *runtime) quit() {
	if p := rt.program.Load(); p != nil {
		p.Quit()
	}
}

func (rt *runtime) Close() {
	rt.bridge.Close()
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.log.Warn("closing history db", zap.Error(err))
		}
	}
}
