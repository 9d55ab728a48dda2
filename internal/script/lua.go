package script

import (
	"errors"
	"strings"

	"github.com/Shopify/go-lua"
)

var ErrNoScriptFile = errors.New("no script file given")

// LuaInterpreter evaluates Lua with github.com/Shopify/go-lua. print is
// replaced so that output ends up in Response.Output instead of stdout.
type LuaInterpreter struct {
	state *lua.State
	out   strings.Builder
}

func NewLuaInterpreter() (Interpreter, error) {
	return newLuaInterpreter(), nil
}

func newLuaInterpreter() *LuaInterpreter {
	li := &LuaInterpreter{state: lua.NewState()}
	lua.OpenLibraries(li.state)
	li.state.Register("print", li.print)
	return li
}

func (li *LuaInterpreter) Execute(code string) (Response, error) {
	li.out.Reset()
	top := li.state.Top()
	if err := lua.LoadString(li.state, code); err != nil {
		li.state.SetTop(top)
		return Response{}, err
	}
	return li.call(top)
}

// ExecFile runs the file at path. Surrounding whitespace is trimmed since
// paths typically arrive from a picker with a trailing newline.
func (li *LuaInterpreter) ExecFile(path string) (Response, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Response{}, ErrNoScriptFile
	}
	li.out.Reset()
	top := li.state.Top()
	if err := lua.LoadFile(li.state, path, ""); err != nil {
		li.state.SetTop(top)
		return Response{}, err
	}
	return li.call(top)
}

func (li *LuaInterpreter) Close() {
	li.state = nil
}

func (li *LuaInterpreter) call(top int) (Response, error) {
	l := li.state
	defer l.SetTop(top)
	if err := l.ProtectedCall(0, lua.MultipleReturns, 0); err != nil {
		return Response{Output: li.out.String()}, err
	}
	var values []string
	for i := top + 1; i <= l.Top(); i++ {
		s, _ := lua.ToStringMeta(l, i)
		l.Pop(1)
		values = append(values, s)
	}
	return Response{Output: li.out.String(), Values: values}, nil
}

func (li *LuaInterpreter) print(l *lua.State) int {
	n := l.Top()
	for i := 1; i <= n; i++ {
		s, _ := lua.ToStringMeta(l, i)
		l.Pop(1)
		if i > 1 {
			li.out.WriteByte('\t')
		}
		li.out.WriteString(s)
	}
	li.out.WriteByte('\n')
	return 0
}
