package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/wayshell/core"
	"github.com/jask/wayshell/internal/database/repository"
	"github.com/jask/wayshell/internal/layout"
	"github.com/jask/wayshell/internal/script"
)

func newTestApp(t *testing.T) (*App, *layout.MemoryTree, *core.CommandRegistry) {
	t.Helper()
	tree := layout.NewMemoryTree("1")
	tree.AddWindow("terminal")
	reg := core.NewCommandRegistry(nil)
	for _, id := range core.WorkspaceIDs {
		if err := reg.RegisterFunc(core.SwitchWorkspaceCommand(id), "", func() {
			h, ok := tree.TryLock()
			if !ok {
				return
			}
			defer h.Unlock()
			_ = h.SwitchToWorkspace(id)
		}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	app := New(context.Background(), Deps{
		Commands: reg,
		Keys:     core.NewKeyRegistry(core.DefaultKeyBindings()),
		Tree:     tree,
	})
	return app, tree, reg
}

// run executes cmd and feeds its message back, the way the Bubble Tea loop would.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	app.Update(cmd())
}

func typeText(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestBoundKeyInvokesCommand(t *testing.T) {
	app, tree, _ := newTestApp(t)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}, Alt: true})
	run(t, app, cmd)

	if got := tree.Snapshot().Active; got != "3" {
		t.Fatalf("active workspace=%q, want 3", got)
	}
	if app.statusErr || !strings.Contains(app.status, "switch_workspace_3") {
		t.Fatalf("status=%q err=%v", app.status, app.statusErr)
	}
}

func TestUnboundKeyDoesNothing(t *testing.T) {
	app, _, _ := newTestApp(t)
	if _, cmd := app.Update(tea.KeyMsg{Type: tea.KeyF12}); cmd != nil {
		t.Fatalf("unbound key should not produce a command")
	}
}

func TestBoundKeyWithoutCommandReportsNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)
	// alt+shift+q is bound to quit, which this registry lacks
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Q'}, Alt: true})
	run(t, app, cmd)
	if !app.statusErr || !strings.Contains(app.status, "unknown command: quit") {
		t.Fatalf("status=%q err=%v", app.status, app.statusErr)
	}
}

func TestCommandLineInvokesTypedCommand(t *testing.T) {
	app, tree, _ := newTestApp(t)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	if !app.cmdline {
		t.Fatalf("expected command line to open")
	}
	typeText(app, "switch_workspace_7")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if app.cmdline {
		t.Fatalf("command line should close on enter")
	}
	run(t, app, cmd)
	if got := tree.Snapshot().Active; got != "7" {
		t.Fatalf("active workspace=%q, want 7", got)
	}
}

func TestCommandLineEscapeCancels(t *testing.T) {
	app, tree, _ := newTestApp(t)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	typeText(app, "switch_workspace_2")
	if _, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Fatalf("escape should not invoke anything")
	}
	if app.cmdline || tree.Snapshot().Active != "1" {
		t.Fatalf("escape should leave state untouched")
	}
}

func TestScriptResultsAreShown(t *testing.T) {
	app, _, _ := newTestApp(t)
	q := script.Execute("print('hi') return 1")
	app.Update(ResultMsg(q, script.Response{QueryID: q.ID, Output: "hi\n", Values: []string{"1"}}))
	app.Update(ResultMsg(q, script.Response{QueryID: q.ID, Err: errors.New("boom")}))

	view := app.View()
	for _, want := range []string{"[execute] hi  => 1", "error: boom", "terminal", "wayshell"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestOutputsAreCapped(t *testing.T) {
	app, _, _ := newTestApp(t)
	for i := 0; i < maxOutputs+5; i++ {
		app.Update(core.ScriptResultMsg{Kind: "execute", Output: "x"})
	}
	if len(app.outputs) != maxOutputs {
		t.Fatalf("outputs=%d, want %d", len(app.outputs), maxOutputs)
	}
}

type stubHistory []repository.HistoryEntry

func (s stubHistory) Recent(context.Context, int) ([]repository.HistoryEntry, error) {
	return s, nil
}

func TestInitLoadsHistory(t *testing.T) {
	msg := "bad"
	app := New(context.Background(), Deps{History: stubHistory{
		{Kind: "exec_file", Error: &msg},
		{Kind: "execute", Result: "1\t2"},
	}})
	cmd := app.Init()
	run(t, app, cmd)
	if len(app.outputs) != 2 {
		t.Fatalf("outputs=%v", app.outputs)
	}
	if !strings.HasPrefix(app.outputs[0], "[execute] => 1, 2") {
		t.Fatalf("oldest entry should come first, got %q", app.outputs[0])
	}
	if !strings.Contains(app.outputs[1], "error: bad") {
		t.Fatalf("newest entry=%q", app.outputs[1])
	}
}

func TestCtrlCQuits(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestCommandLineTabCompletes(t *testing.T) {
	app, tree, _ := newTestApp(t)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	typeText(app, "sw8")
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := app.input.Value(); got != "switch_workspace_8" {
		t.Fatalf("completed to %q", got)
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)
	if got := tree.Snapshot().Active; got != "8" {
		t.Fatalf("active workspace=%q, want 8", got)
	}
}

func TestFooterShowsBoundCommandsOnly(t *testing.T) {
	bindings := []core.KeyBinding{
		{Keys: []string{"alt+d"}, Command: core.CmdDmenuEval},
		{Keys: []string{"alt+shift+r"}, Command: core.CmdRestart},
	}
	got := footerBindings(bindings)
	if len(got) != 3 {
		t.Fatalf("bindings = %d, want 3 (command line plus two bound commands)", len(got))
	}
	if h := got[1].Help(); h.Key != "alt+d" || h.Desc != core.CmdDmenuEval {
		t.Fatalf("first command help = %+v", h)
	}

	footer := ansi.Strip(renderFooter(bindings, 120))
	for _, want := range []string{": command", "alt+d dmenu_eval", "alt+shift+r restart"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("footer %q missing %q", footer, want)
		}
	}
	if strings.Contains(footer, core.CmdQuit) {
		t.Fatalf("unbound quit should not appear: %q", footer)
	}
}
