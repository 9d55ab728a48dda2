package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/wayshell/core"
)

// footerCommands are the commands whose bindings are worth a hint.
var footerCommands = []string{core.CmdDmenuEval, core.CmdDmenuLuaDofile, core.CmdRestart, core.CmdQuit}

// footerBindings turns the registered keys of footerCommands into help
// bindings. Commands without keys are left out.
func footerBindings(bindings []core.KeyBinding) []key.Binding {
	byCmd := core.DefaultKeybindingsByCommand(bindings)
	out := []key.Binding{key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command"))}
	for _, id := range footerCommands {
		keys := byCmd[id]
		if len(keys) == 0 {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], id)))
	}
	return out
}

func renderFooter(bindings []core.KeyBinding, width int) string {
	bg := colorMantle
	h := help.New()
	h.ShortSeparator = "  "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Background(bg)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(colorMuted).Background(bg)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Background(bg)
	return renderBar(footerStyle, max(1, width), h.ShortHelpView(footerBindings(bindings)), bg)
}

func renderStatusBar(status string, isErr bool, width int) string {
	msg := strings.TrimSpace(status)
	if msg == "" {
		msg = "Ready"
	}
	if isErr {
		return renderBar(statusErrBarStyle, max(1, width), msg, colorSurface0)
	}
	return renderBar(statusBarStyle, max(1, width), msg, colorSurface0)
}

func renderBar(style lipgloss.Style, width int, text string, bg lipgloss.TerminalColor) string {
	line := strings.ReplaceAll(text, "\n", " ")
	line = ansi.Truncate(line, width, "")
	lineW := ansi.StringWidth(line)
	if lineW < width {
		line += strings.Repeat(" ", width-lineW)
	}
	return style.
		Background(bg).
		Width(width).
		MaxWidth(width).
		Render(line)
}

func fitHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
