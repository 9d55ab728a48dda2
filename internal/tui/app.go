// Package tui is the terminal front-end: it turns key presses into command
// invocations and shows the layout tree and script output.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/jask/wayshell/core"
	"github.com/jask/wayshell/internal/database/repository"
	"github.com/jask/wayshell/internal/layout"
	"github.com/jask/wayshell/internal/script"
)

const maxOutputs = 8

// Snapshotter exposes the layout tree for rendering. *layout.MemoryTree
// satisfies it.
type Snapshotter interface {
	Snapshot() layout.Snapshot
}

// HistoryLister loads past script results. *repository.HistoryRepo
// satisfies it.
type HistoryLister interface {
	Recent(ctx context.Context, limit int) ([]repository.HistoryEntry, error)
}

type Deps struct {
	Commands *core.CommandRegistry
	Keys     *core.KeyRegistry
	Tree     Snapshotter
	History  HistoryLister
	Logger   *zap.Logger
}

// App is the Bubble Tea model.
type App struct {
	ctx       context.Context
	deps      Deps
	log       *zap.Logger
	input     textinput.Model
	cmdline   bool
	outputs   []string
	status    string
	statusErr bool
	width     int
	height    int
}

type historyMsg []repository.HistoryEntry

type errMsg struct{ error }

func New(ctx context.Context, deps Deps) *App {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = "command"
	ti.CharLimit = 128
	return &App{
		ctx:    ctx,
		deps:   deps,
		log:    log.Named("tui"),
		input:  ti,
		width:  80,
		height: 24,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadHistory()
}

func (a *App) loadHistory() tea.Cmd {
	if a.deps.History == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := a.deps.History.Recent(a.ctx, maxOutputs)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(entries)
	}
}

// ResultMsg converts an engine response into the message the App renders.
func ResultMsg(q script.Query, r script.Response) core.ScriptResultMsg {
	return core.ScriptResultMsg{
		QueryID: q.ID,
		Kind:    q.Kind.String(),
		Output:  r.Output,
		Values:  r.Values,
		Err:     r.Err,
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		if a.cmdline {
			return a.handleCommandLineKey(m)
		}
		return a.handleKey(m)
	case core.CommandInvokedMsg:
		if m.Err != nil {
			a.log.Debug("command failed", zap.String("command", m.CommandID), zap.Error(m.Err))
			a.status, a.statusErr = m.Err.Error(), true
		} else {
			a.status, a.statusErr = "ran "+m.CommandID, false
		}
	case core.ScriptResultMsg:
		a.pushOutput(formatResult(m.Kind, m.Output, m.Values, m.Err))
	case core.StatusMsg:
		a.status, a.statusErr = m.Text, m.IsErr
	case historyMsg:
		// newest first from the store; outputs are oldest first
		for i := len(m) - 1; i >= 0; i-- {
			e := m[i]
			var err error
			if e.Error != nil {
				err = errors.New(*e.Error)
			}
			var values []string
			if e.Result != "" {
				values = strings.Split(e.Result, "\t")
			}
			a.pushOutput(formatResult(e.Kind, e.Output, values, err))
		}
	case errMsg:
		a.status, a.statusErr = m.Error(), true
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if m.Type == tea.KeyRunes && !m.Alt && string(m.Runes) == ":" {
		a.cmdline = true
		a.input.SetValue("")
		return a, a.input.Focus()
	}
	if a.deps.Keys == nil || a.deps.Commands == nil {
		return a, nil
	}
	id, ok := a.deps.Keys.Match(m)
	if !ok {
		return a, nil
	}
	return a, core.InvokeCmd(a.deps.Commands, id)
}

func (a *App) handleCommandLineKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc:
		a.closeCommandLine()
		return a, nil
	case tea.KeyEnter:
		id := strings.TrimSpace(a.input.Value())
		a.closeCommandLine()
		if id == "" || a.deps.Commands == nil {
			return a, nil
		}
		return a, core.InvokeCmd(a.deps.Commands, id)
	case tea.KeyTab:
		if best := a.suggestions(1); len(best) > 0 {
			a.input.SetValue(best[0])
			a.input.CursorEnd()
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *App) suggestions(n int) []string {
	if a.deps.Commands == nil {
		return nil
	}
	return completions(a.deps.Commands.IDs(), a.input.Value(), n)
}

func (a *App) closeCommandLine() {
	a.cmdline = false
	a.input.Blur()
	a.input.SetValue("")
}

func (a *App) pushOutput(line string) {
	a.outputs = append(a.outputs, line)
	if len(a.outputs) > maxOutputs {
		a.outputs = a.outputs[len(a.outputs)-maxOutputs:]
	}
}

func formatResult(kind, output string, values []string, err error) string {
	var parts []string
	if out := strings.TrimRight(output, "\n"); out != "" {
		parts = append(parts, strings.ReplaceAll(out, "\n", " | "))
	}
	if len(values) > 0 {
		parts = append(parts, "=> "+strings.Join(values, ", "))
	}
	if err != nil {
		parts = append(parts, errTextStyle.Render("error: "+err.Error()))
	}
	if len(parts) == 0 {
		parts = append(parts, mutedStyle.Render("(no output)"))
	}
	return fmt.Sprintf("[%s] %s", kind, strings.Join(parts, "  "))
}

func (a *App) View() string {
	header := a.renderHeader()
	status := renderStatusBar(a.status, a.statusErr, a.width)
	var footer string
	if a.cmdline {
		line := a.input.View()
		if hints := a.suggestions(3); len(hints) > 0 {
			line += "  " + mutedStyle.Render(strings.Join(hints, "  "))
		}
		footer = renderBar(footerStyle, max(1, a.width), line, colorMantle)
	} else {
		var bindings []core.KeyBinding
		if a.deps.Keys != nil {
			bindings = a.deps.Keys.Bindings()
		}
		footer = renderFooter(bindings, a.width)
	}
	available := a.height - lipgloss.Height(header) - lipgloss.Height(status) - lipgloss.Height(footer)
	body := fitHeight(a.renderBody(), max(0, available))
	view := strings.Join([]string{header, body, status, footer}, "\n")
	return appStyle.Width(max(1, a.width)).MaxWidth(max(1, a.width)).Render(view)
}

func (a *App) snapshot() layout.Snapshot {
	if a.deps.Tree == nil {
		return layout.Snapshot{}
	}
	return a.deps.Tree.Snapshot()
}

func (a *App) renderHeader() string {
	snap := a.snapshot()
	occupied := map[string]bool{}
	for _, ws := range snap.Workspaces {
		occupied[ws.ID] = len(ws.Windows) > 0
	}
	tabs := make([]string, 0, len(core.WorkspaceIDs))
	for _, id := range core.WorkspaceIDs {
		switch {
		case id == snap.Active:
			tabs = append(tabs, activeWorkspaceStyle.Render(id))
		case occupied[id]:
			tabs = append(tabs, occupiedWorkspaceStyle.Render(id))
		default:
			tabs = append(tabs, emptyWorkspaceStyle.Render(id))
		}
	}
	left := headerAppStyle.Render("wayshell")
	right := tabSepStyle.Render(" ") + strings.Join(tabs, tabSepStyle.Render("│"))
	leftW := ansi.StringWidth(left)
	rightW := ansi.StringWidth(right)
	gap := 1
	if leftW+rightW+1 < a.width {
		gap = a.width - leftW - rightW
	}
	return renderBar(headerBarStyle, max(1, a.width), left+strings.Repeat(" ", gap)+right, colorMantle)
}

func (a *App) renderBody() string {
	snap := a.snapshot()
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Workspace " + snap.Active))
	b.WriteString("\n")
	var windows []string
	focused := -1
	for _, ws := range snap.Workspaces {
		if ws.ID == snap.Active {
			windows, focused = ws.Windows, ws.Focused
		}
	}
	if len(windows) == 0 {
		b.WriteString(mutedStyle.Render("  (no windows)"))
		b.WriteString("\n")
	}
	for i, w := range windows {
		marker := " "
		if i == focused {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, w)
	}
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Script output"))
	b.WriteString("\n")
	if len(a.outputs) == 0 {
		b.WriteString(mutedStyle.Render("  (nothing yet)"))
		b.WriteString("\n")
	}
	for _, line := range a.outputs {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
