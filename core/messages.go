package core

import tea "github.com/charmbracelet/bubbletea"

type StatusMsg struct {
	Text  string
	IsErr bool
}

// ScriptResultMsg carries one engine response to the front-end.
type ScriptResultMsg struct {
	QueryID string
	Kind    string
	Output  string
	Values  []string
	Err     error
}

type CommandInvokedMsg struct {
	CommandID string
	Err       error
}

func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{Text: "", IsErr: false}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}

// InvokeCmd runs a command off the Bubble Tea update loop and reports the
// outcome as a CommandInvokedMsg.
func InvokeCmd(reg *CommandRegistry, id string) tea.Cmd {
	return func() tea.Msg {
		return CommandInvokedMsg{CommandID: id, Err: reg.Invoke(id)}
	}
}
