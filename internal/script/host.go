package script

import (
	"github.com/Shopify/go-lua"
)

// Host is the part of the shell that scripts reach through the global
// wayshell table. Its methods run on the engine goroutine, so a command
// invoked from a script must not wait on the engine.
type Host interface {
	Invoke(id string) error
	Bind(key, command string)
	CommandIDs() []string
}

// LuaFactory builds Lua interpreters that expose host as:
//
//	wayshell.invoke(id)       -> true | nil, err
//	wayshell.bind(key, id)
//	wayshell.commands()       -> { id, ... }
//
// A nil host gives plain interpreters.
func LuaFactory(host Host) InterpreterFactory {
	return func() (Interpreter, error) {
		li := newLuaInterpreter()
		if host != nil {
			registerHost(li.state, host)
		}
		return li, nil
	}
}

func registerHost(state *lua.State, host Host) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "invoke", Function: func(l *lua.State) int {
			id := lua.CheckString(l, 1)
			if err := host.Invoke(id); err != nil {
				l.PushNil()
				l.PushString(err.Error())
				return 2
			}
			l.PushBoolean(true)
			return 1
		}},
		{Name: "bind", Function: func(l *lua.State) int {
			host.Bind(lua.CheckString(l, 1), lua.CheckString(l, 2))
			return 0
		}},
		{Name: "commands", Function: func(l *lua.State) int {
			l.NewTable()
			for i, id := range host.CommandIDs() {
				l.PushString(id)
				l.RawSetInt(-2, i+1)
			}
			return 1
		}},
	}, 0)
	state.SetGlobal("wayshell")
}
