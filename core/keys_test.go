package core

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeyStringNamesShiftedAndAltKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
	}{
		{name: "alt_digit", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}, Alt: true}, want: "alt+5"},
		{name: "alt_shift_digit", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'%'}, Alt: true}, want: "alt+shift+5"},
		{name: "alt_upper", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Q'}, Alt: true}, want: "alt+shift+q"},
		{name: "plain_rune", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, want: "x"},
		{name: "alt_space", msg: tea.KeyMsg{Type: tea.KeySpace, Alt: true}, want: "alt+space"},
		{name: "ctrl_c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, want: "ctrl+c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyString(tt.msg); got != tt.want {
				t.Fatalf("KeyString()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyRegistryLaterBindingWins(t *testing.T) {
	reg := NewKeyRegistry([]KeyBinding{{Keys: []string{"alt+1"}, Command: "switch_workspace_1"}})
	reg.Register(KeyBinding{Keys: []string{" ALT+1 "}, Command: "custom"})
	if id, ok := reg.CommandFor("alt+1"); !ok || id != "custom" {
		t.Fatalf("CommandFor=%q,%v want custom", id, ok)
	}
	if _, ok := reg.CommandFor("alt+2"); ok {
		t.Fatalf("did not expect alt+2 to be bound")
	}
}

func TestKeyRegistryMatchAndDispatch(t *testing.T) {
	called := 0
	cmds := NewCommandRegistry(nil, Command{ID: "move_to_workspace_3", Execute: func() { called++ }})
	keys := NewKeyRegistry(DefaultKeyBindings())

	id, ok := keys.Match(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'#'}, Alt: true})
	if !ok || id != "move_to_workspace_3" {
		t.Fatalf("Match=%q,%v", id, ok)
	}
	bound, err := keys.Dispatch("alt+shift+3", cmds)
	if !bound || err != nil || called != 1 {
		t.Fatalf("Dispatch bound=%v err=%v called=%d", bound, err, called)
	}
	bound, err = keys.Dispatch("alt+4", cmds)
	if !bound || !errors.Is(err, ErrCommandNotFound) {
		t.Fatalf("expected bound key with missing command, got bound=%v err=%v", bound, err)
	}
	if bound, _ := keys.Dispatch("f13", cmds); bound {
		t.Fatalf("f13 should be unbound")
	}
}

func TestKeyRegistryClear(t *testing.T) {
	keys := NewKeyRegistry(DefaultKeyBindings())
	if keys.Len() == 0 {
		t.Fatalf("expected default bindings")
	}
	keys.Clear()
	if keys.Len() != 0 {
		t.Fatalf("expected no bindings after Clear")
	}
	if _, ok := keys.CommandFor("alt+1"); ok {
		t.Fatalf("alt+1 still bound after Clear")
	}
}

func TestApplyCommandKeybindings(t *testing.T) {
	out := ApplyCommandKeybindings(DefaultKeyBindings(), map[string][]string{
		CmdQuit:    {"ctrl+q"},
		"my_macro": {"alt+m"},
	})
	byCmd := DefaultKeybindingsByCommand(out)
	if got := byCmd[CmdQuit]; len(got) != 1 || got[0] != "ctrl+q" {
		t.Fatalf("quit keys=%v", got)
	}
	if got := byCmd["my_macro"]; len(got) != 1 || got[0] != "alt+m" {
		t.Fatalf("my_macro keys=%v", got)
	}
	if got := byCmd[SwitchWorkspaceCommand("7")]; len(got) != 1 || got[0] != "alt+7" {
		t.Fatalf("switch_workspace_7 keys=%v", got)
	}
}
