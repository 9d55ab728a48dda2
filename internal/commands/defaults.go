// Package commands builds the built-in command set: workspace switching,
// tiling, the script prompts and restart.
package commands

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jask/wayshell/core"
	"github.com/jask/wayshell/internal/layout"
	"github.com/jask/wayshell/internal/script"
)

// PointerScript prints the pointer position through the script engine.
const PointerScript = `if wayshell == nil or wayshell.pointer == nil then
  print("pointer api not loaded")
else
  local x, y = wayshell.pointer.position()
  print("pointer at " .. x .. ", " .. y)
end`

// ScriptSender is the part of script.Bridge commands need.
type ScriptSender interface {
	Send(q script.Query) (*script.Pending, error)
}

// Picker starts a free-text prompt whose answer goes to the script engine.
type Picker interface {
	Run(prompt string, kind script.QueryKind)
}

// KeyClearer drops every key binding ahead of a restart.
type KeyClearer interface {
	Clear()
}

// Deps are the collaborators the built-in commands act on. Commands whose
// collaborator is nil are not registered.
type Deps struct {
	Tree   layout.Tree
	Bridge ScriptSender
	Picker Picker
	Keys   KeyClearer
	Quit   func()
	Logger *zap.Logger
}

// RegisterDefaults registers every built-in command on reg.
func RegisterDefaults(reg *core.CommandRegistry, deps Deps) error {
	log := orNop(deps.Logger).Named("commands")

	var cmds []core.Command
	if deps.Tree != nil {
		cmds = append(cmds, WorkspaceCommands(deps.Tree, log)...)
		cmds = append(cmds, TilingCommands(deps.Tree, log)...)
	}
	if deps.Bridge != nil {
		cmds = append(cmds,
			core.Command{
				ID:          core.CmdPrintPointer,
				Description: "Print the pointer position",
				Execute:     SendScript(deps.Bridge, log, core.CmdPrintPointer, PointerScript),
			},
			RestartCommand(deps.Keys, deps.Bridge, log),
		)
	}
	if deps.Picker != nil {
		cmds = append(cmds,
			core.Command{
				ID:          core.CmdDmenuEval,
				Description: "Prompt for Lua code and run it",
				Execute:     func() { deps.Picker.Run("Eval Lua code", script.KindExecute) },
			},
			core.Command{
				ID:          core.CmdDmenuLuaDofile,
				Description: "Prompt for a Lua file and run it",
				Execute:     func() { deps.Picker.Run("Eval Lua file", script.KindExecFile) },
			},
		)
	}
	if deps.Quit != nil {
		cmds = append(cmds, core.Command{ID: core.CmdQuit, Description: "Quit", Execute: deps.Quit})
	}

	var errs []error
	for _, c := range cmds {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	log.Debug("built-in commands registered", zap.Int("count", len(cmds)-len(errs)))
	return errors.Join(errs...)
}

// SendScript returns a handler that hands code to the engine and returns
// without waiting for the result.
func SendScript(bridge ScriptSender, log *zap.Logger, id, code string) func() {
	log = orNop(log)
	return func() {
		if _, err := bridge.Send(script.Execute(code)); err != nil {
			log.Warn("script not sent", zap.String("command", id), zap.Error(err))
		}
	}
}

// RestartCommand clears every key binding and then asks the engine to
// rebuild its state. The init script re-registers bindings on restart.
func RestartCommand(keys KeyClearer, bridge ScriptSender, log *zap.Logger) core.Command {
	log = orNop(log)
	return core.Command{
		ID:          core.CmdRestart,
		Description: "Clear key bindings and restart the script engine",
		Execute: func() {
			if keys != nil {
				keys.Clear()
			}
			if _, err := bridge.Send(script.Restart()); err != nil {
				log.Warn("restart not sent", zap.Error(err))
			}
		},
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
