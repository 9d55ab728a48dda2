package core

import "fmt"

// Ids of the built-in commands. Key bindings and scripts refer to commands by
// these names, so they are part of the external contract.
const (
	CmdQuit           = "quit"
	CmdPrintPointer   = "print_pointer"
	CmdDmenuEval      = "dmenu_eval"
	CmdDmenuLuaDofile = "dmenu_lua_dofile"
	CmdRestart        = "restart"

	CmdTileSwitch        = "horizontal_vertical_switch"
	CmdSplitVertical     = "split_vertical"
	CmdSplitHorizontal   = "split_horizontal"
	CmdTileTabbed        = "tile_tabbed"
	CmdTileStacked       = "tile_stacked"
	CmdFullscreenToggle  = "fullscreen_toggle"
	CmdFocusLeft         = "focus_left"
	CmdFocusRight        = "focus_right"
	CmdFocusUp           = "focus_up"
	CmdFocusDown         = "focus_down"
	CmdMoveActiveLeft    = "move_active_left"
	CmdMoveActiveRight   = "move_active_right"
	CmdMoveActiveUp      = "move_active_up"
	CmdMoveActiveDown    = "move_active_down"
	CmdCloseWindow       = "close_window"
	CmdToggleFloatActive = "toggle_float_active"
	CmdToggleFloatFocus  = "toggle_float_focus"
)

// WorkspaceIDs are the workspaces that get generated switch/move commands.
var WorkspaceIDs = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

func SwitchWorkspaceCommand(id string) string {
	return fmt.Sprintf("switch_workspace_%s", id)
}

func MoveToWorkspaceCommand(id string) string {
	return fmt.Sprintf("move_to_workspace_%s", id)
}
