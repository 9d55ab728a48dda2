// Package layout defines how the dispatcher reaches the shared layout tree.
//
// The tree itself (tiling, workspaces, focus) belongs to the compositor. The
// dispatcher only ever touches it through Tree.TryLock: if the tree is busy on
// another goroutine the caller gives up instead of waiting.
package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrLockUnavailable is reported when the tree is held elsewhere.
	ErrLockUnavailable = errors.New("layout tree is busy")
	// ErrTreeOperation marks failures returned by the tree itself.
	ErrTreeOperation = errors.New("layout tree operation failed")
)

// Op names a tiling operation understood by Handle.Apply.
type Op string

const (
	OpTileSwitch       Op = "tile_switch"
	OpSplitVertical    Op = "split_vertical"
	OpSplitHorizontal  Op = "split_horizontal"
	OpTileTabbed       Op = "tile_tabbed"
	OpTileStacked      Op = "tile_stacked"
	OpFullscreenToggle Op = "fullscreen_toggle"
	OpFocusLeft        Op = "focus_left"
	OpFocusRight       Op = "focus_right"
	OpFocusUp          Op = "focus_up"
	OpFocusDown        Op = "focus_down"
	OpMoveActiveLeft   Op = "move_active_left"
	OpMoveActiveRight  Op = "move_active_right"
	OpMoveActiveUp     Op = "move_active_up"
	OpMoveActiveDown   Op = "move_active_down"
	OpRemoveActive     Op = "remove_active"
	OpToggleFloat      Op = "toggle_float"
	OpToggleFloatFocus Op = "toggle_float_focus"
)

// Tree is the lockable accessor over the shared layout tree.
type Tree interface {
	// TryLock never blocks. ok is false when another goroutine holds the tree.
	TryLock() (h Handle, ok bool)
}

// Handle is exclusive access to the tree. It must be unlocked before the
// holder does anything that can block.
type Handle interface {
	SwitchToWorkspace(id string) error
	SendActiveToWorkspace(id string) error
	Apply(op Op) error
	Unlock()
}

// OperationError wraps a failure reported by the tree.
type OperationError struct {
	Op  string
	Arg string
	Err error
}

func (e *OperationError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Arg, e.Err)
}

func (e *OperationError) Unwrap() []error {
	return []error{ErrTreeOperation, e.Err}
}
