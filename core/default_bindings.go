package core

import (
	"slices"
	"strings"
)

func DefaultKeyBindings() []KeyBinding {
	bindings := []KeyBinding{
		{Keys: []string{"alt+shift+q"}, Command: CmdQuit, Description: "quit"},
		{Keys: []string{"alt+shift+r"}, Command: CmdRestart, Description: "restart scripts"},
		{Keys: []string{"alt+d"}, Command: CmdDmenuEval, Description: "eval lua"},
		{Keys: []string{"alt+shift+d"}, Command: CmdDmenuLuaDofile, Description: "run lua file"},
		{Keys: []string{"alt+p"}, Command: CmdPrintPointer, Description: "pointer position"},
		{Keys: []string{"alt+e"}, Command: CmdTileSwitch, Description: "toggle split"},
		{Keys: []string{"alt+v"}, Command: CmdSplitVertical, Description: "split vertical"},
		{Keys: []string{"alt+b"}, Command: CmdSplitHorizontal, Description: "split horizontal"},
		{Keys: []string{"alt+w"}, Command: CmdTileTabbed, Description: "tabbed"},
		{Keys: []string{"alt+s"}, Command: CmdTileStacked, Description: "stacked"},
		{Keys: []string{"alt+f"}, Command: CmdFullscreenToggle, Description: "fullscreen"},
		{Keys: []string{"alt+h", "alt+left"}, Command: CmdFocusLeft, Description: "focus left"},
		{Keys: []string{"alt+l", "alt+right"}, Command: CmdFocusRight, Description: "focus right"},
		{Keys: []string{"alt+k", "alt+up"}, Command: CmdFocusUp, Description: "focus up"},
		{Keys: []string{"alt+j", "alt+down"}, Command: CmdFocusDown, Description: "focus down"},
		{Keys: []string{"alt+shift+h"}, Command: CmdMoveActiveLeft, Description: "move left"},
		{Keys: []string{"alt+shift+l"}, Command: CmdMoveActiveRight, Description: "move right"},
		{Keys: []string{"alt+shift+k"}, Command: CmdMoveActiveUp, Description: "move up"},
		{Keys: []string{"alt+shift+j"}, Command: CmdMoveActiveDown, Description: "move down"},
		{Keys: []string{"alt+shift+c"}, Command: CmdCloseWindow, Description: "close window"},
		{Keys: []string{"alt+shift+space"}, Command: CmdToggleFloatActive, Description: "float window"},
		{Keys: []string{"alt+space"}, Command: CmdToggleFloatFocus, Description: "focus floating"},
	}
	for _, id := range WorkspaceIDs {
		bindings = append(bindings,
			KeyBinding{Keys: []string{"alt+" + id}, Command: SwitchWorkspaceCommand(id), Description: "workspace " + id},
			KeyBinding{Keys: []string{"alt+shift+" + id}, Command: MoveToWorkspaceCommand(id), Description: "move to " + id},
		)
	}
	return bindings
}

func DefaultKeybindingsByCommand(bindings []KeyBinding) map[string][]string {
	out := make(map[string][]string, len(bindings))
	for _, b := range bindings {
		if strings.TrimSpace(b.Command) == "" || len(b.Keys) == 0 {
			continue
		}
		if _, exists := out[b.Command]; exists {
			continue
		}
		out[b.Command] = append([]string(nil), b.Keys...)
	}
	return out
}

// ApplyCommandKeybindings replaces the keys of every binding whose command has
// an override. Overrides for commands without a default binding are appended.
func ApplyCommandKeybindings(bindings []KeyBinding, commandKeys map[string][]string) []KeyBinding {
	out := make([]KeyBinding, 0, len(bindings)+len(commandKeys))
	seen := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		next := KeyBinding{
			Keys:        append([]string(nil), b.Keys...),
			Command:     b.Command,
			Description: b.Description,
		}
		if keys, ok := commandKeys[b.Command]; ok && len(keys) > 0 {
			next.Keys = append([]string(nil), keys...)
		}
		seen[b.Command] = true
		out = append(out, next)
	}
	extra := make([]string, 0, len(commandKeys))
	for cmd := range commandKeys {
		if !seen[cmd] && len(commandKeys[cmd]) > 0 {
			extra = append(extra, cmd)
		}
	}
	slices.Sort(extra)
	for _, cmd := range extra {
		out = append(out, KeyBinding{Keys: append([]string(nil), commandKeys[cmd]...), Command: cmd})
	}
	return out
}
