package commands

import (
	"go.uber.org/zap"

	"github.com/jask/wayshell/core"
	"github.com/jask/wayshell/internal/layout"
)

// treeCommand wraps fn so it only runs when the layout tree is free. A busy
// tree drops the command and a failed operation is logged; neither retries.
// The handle is released even when fn panics.
func treeCommand(tree layout.Tree, log *zap.Logger, id string, fn func(layout.Handle) error) func() {
	log = orNop(log)
	return func() {
		h, ok := tree.TryLock()
		if !ok {
			log.Warn("layout tree busy, command dropped", zap.String("command", id), zap.Error(layout.ErrLockUnavailable))
			return
		}
		err := func() error {
			defer h.Unlock()
			return fn(h)
		}()
		if err != nil {
			log.Warn("layout command failed", zap.String("command", id), zap.Error(err))
		}
	}
}

// WorkspaceCommands returns a switch and a move command for every id in
// core.WorkspaceIDs.
func WorkspaceCommands(tree layout.Tree, log *zap.Logger) []core.Command {
	cmds := make([]core.Command, 0, 2*len(core.WorkspaceIDs))
	for _, ws := range core.WorkspaceIDs {
		switchID := core.SwitchWorkspaceCommand(ws)
		moveID := core.MoveToWorkspaceCommand(ws)
		cmds = append(cmds,
			core.Command{
				ID:          switchID,
				Description: "Switch to workspace " + ws,
				Execute: treeCommand(tree, log, switchID, func(h layout.Handle) error {
					return h.SwitchToWorkspace(ws)
				}),
			},
			core.Command{
				ID:          moveID,
				Description: "Move the active window to workspace " + ws,
				Execute: treeCommand(tree, log, moveID, func(h layout.Handle) error {
					return h.SendActiveToWorkspace(ws)
				}),
			},
		)
	}
	return cmds
}

var tilingOps = []struct {
	id   string
	op   layout.Op
	desc string
}{
	{core.CmdTileSwitch, layout.OpTileSwitch, "Toggle horizontal/vertical tiling"},
	{core.CmdSplitVertical, layout.OpSplitVertical, "Split the container vertically"},
	{core.CmdSplitHorizontal, layout.OpSplitHorizontal, "Split the container horizontally"},
	{core.CmdTileTabbed, layout.OpTileTabbed, "Tabbed layout"},
	{core.CmdTileStacked, layout.OpTileStacked, "Stacked layout"},
	{core.CmdFullscreenToggle, layout.OpFullscreenToggle, "Toggle fullscreen"},
	{core.CmdFocusLeft, layout.OpFocusLeft, "Focus left"},
	{core.CmdFocusRight, layout.OpFocusRight, "Focus right"},
	{core.CmdFocusUp, layout.OpFocusUp, "Focus up"},
	{core.CmdFocusDown, layout.OpFocusDown, "Focus down"},
	{core.CmdMoveActiveLeft, layout.OpMoveActiveLeft, "Move the active window left"},
	{core.CmdMoveActiveRight, layout.OpMoveActiveRight, "Move the active window right"},
	{core.CmdMoveActiveUp, layout.OpMoveActiveUp, "Move the active window up"},
	{core.CmdMoveActiveDown, layout.OpMoveActiveDown, "Move the active window down"},
	{core.CmdCloseWindow, layout.OpRemoveActive, "Close the active window"},
	{core.CmdToggleFloatActive, layout.OpToggleFloat, "Toggle floating for the active window"},
	{core.CmdToggleFloatFocus, layout.OpToggleFloatFocus, "Toggle focus between floating and tiled"},
}

func TilingCommands(tree layout.Tree, log *zap.Logger) []core.Command {
	cmds := make([]core.Command, 0, len(tilingOps))
	for _, t := range tilingOps {
		cmds = append(cmds, core.Command{
			ID:          t.id,
			Description: t.desc,
			Execute: treeCommand(tree, log, t.id, func(h layout.Handle) error {
				return h.Apply(t.op)
			}),
		})
	}
	return cmds
}
