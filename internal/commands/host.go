package commands

import (
	"github.com/jask/wayshell/core"
	"github.com/jask/wayshell/internal/script"
)

// ScriptHost lets scripts invoke commands and bind keys.
type ScriptHost struct {
	Commands *core.CommandRegistry
	Keys     *core.KeyRegistry
}

var _ script.Host = ScriptHost{}

func (h ScriptHost) Invoke(id string) error { return h.Commands.Invoke(id) }

func (h ScriptHost) Bind(key, command string) {
	if h.Keys == nil {
		return
	}
	h.Keys.Register(core.KeyBinding{Keys: []string{key}, Command: command, Description: "bound from script"})
}

func (h ScriptHost) CommandIDs() []string { return h.Commands.IDs() }
