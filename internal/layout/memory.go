package layout

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNoActiveWindow = errors.New("no active window")
	ErrUnknownOp      = errors.New("unknown layout operation")
	ErrEmptyWorkspace = errors.New("empty workspace id")
)

// Workspace is a read-only view of one workspace in a Snapshot.
type Workspace struct {
	ID      string
	Windows []string
	Focused int
}

// Snapshot is a point-in-time copy of a MemoryTree.
type Snapshot struct {
	Active     string
	Workspaces []Workspace
	Ops        []Op
}

// MemoryTree is a small in-process layout tree. It keeps just enough state
// (workspaces, windows, focus) for the dispatcher and its tests to observe
// what commands did.
type MemoryTree struct {
	lock sync.Mutex

	mu         sync.RWMutex
	active     string
	workspaces map[string]*workspace
	ops        []Op
}

type workspace struct {
	windows    []string
	focused    int
	fullscreen bool
	floating   map[string]bool
}

func NewMemoryTree(initial string) *MemoryTree {
	if strings.TrimSpace(initial) == "" {
		initial = "1"
	}
	t := &MemoryTree{
		active:     initial,
		workspaces: map[string]*workspace{},
	}
	t.workspaces[initial] = newWorkspace()
	return t
}

func newWorkspace() *workspace {
	return &workspace{focused: -1, floating: map[string]bool{}}
}

func (t *MemoryTree) TryLock() (Handle, bool) {
	if !t.lock.TryLock() {
		return nil, false
	}
	return &memoryHandle{tree: t}, true
}

// AddWindow opens a window on the active workspace and focuses it.
func (t *MemoryTree) AddWindow(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ws := t.workspaceLocked(t.active)
	ws.windows = append(ws.windows, name)
	ws.focused = len(ws.windows) - 1
}

func (t *MemoryTree) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.workspaces))
	for id := range t.workspaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := Snapshot{Active: t.active, Ops: slices.Clone(t.ops)}
	for _, id := range ids {
		ws := t.workspaces[id]
		out.Workspaces = append(out.Workspaces, Workspace{
			ID:      id,
			Windows: slices.Clone(ws.windows),
			Focused: ws.focused,
		})
	}
	return out
}

func (t *MemoryTree) workspaceLocked(id string) *workspace {
	ws, ok := t.workspaces[id]
	if !ok {
		ws = newWorkspace()
		t.workspaces[id] = ws
	}
	return ws
}

type memoryHandle struct {
	tree *MemoryTree
	once sync.Once
}

func (h *memoryHandle) SwitchToWorkspace(id string) error {
	if strings.TrimSpace(id) == "" {
		return &OperationError{Op: "switch_to_workspace", Err: ErrEmptyWorkspace}
	}
	t := h.tree
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workspaceLocked(id)
	t.active = id
	return nil
}

func (h *memoryHandle) SendActiveToWorkspace(id string) error {
	if strings.TrimSpace(id) == "" {
		return &OperationError{Op: "send_active_to_workspace", Err: ErrEmptyWorkspace}
	}
	t := h.tree
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == t.active {
		return nil
	}
	src := t.workspaceLocked(t.active)
	if src.focused < 0 || src.focused >= len(src.windows) {
		return &OperationError{Op: "send_active_to_workspace", Arg: id, Err: ErrNoActiveWindow}
	}
	win := src.windows[src.focused]
	src.removeFocused()
	dst := t.workspaceLocked(id)
	dst.windows = append(dst.windows, win)
	dst.focused = len(dst.windows) - 1
	return nil
}

func (h *memoryHandle) Apply(op Op) error {
	t := h.tree
	t.mu.Lock()
	defer t.mu.Unlock()
	ws := t.workspaceLocked(t.active)
	switch op {
	case OpFocusLeft, OpFocusUp:
		if ws.focused > 0 {
			ws.focused--
		}
	case OpFocusRight, OpFocusDown:
		if ws.focused < len(ws.windows)-1 {
			ws.focused++
		}
	case OpMoveActiveLeft, OpMoveActiveUp:
		if ws.focused > 0 {
			i := ws.focused
			ws.windows[i-1], ws.windows[i] = ws.windows[i], ws.windows[i-1]
			ws.focused--
		}
	case OpMoveActiveRight, OpMoveActiveDown:
		if ws.focused >= 0 && ws.focused < len(ws.windows)-1 {
			i := ws.focused
			ws.windows[i+1], ws.windows[i] = ws.windows[i], ws.windows[i+1]
			ws.focused++
		}
	case OpRemoveActive:
		if ws.focused < 0 {
			return &OperationError{Op: string(op), Err: ErrNoActiveWindow}
		}
		ws.removeFocused()
	case OpToggleFloat:
		if ws.focused < 0 {
			return &OperationError{Op: string(op), Err: ErrNoActiveWindow}
		}
		win := ws.windows[ws.focused]
		ws.floating[win] = !ws.floating[win]
	case OpFullscreenToggle:
		ws.fullscreen = !ws.fullscreen
	case OpTileSwitch, OpSplitVertical, OpSplitHorizontal, OpTileTabbed, OpTileStacked, OpToggleFloatFocus:
		// container layout is not modelled; the op log is enough.
	default:
		return &OperationError{Op: string(op), Err: ErrUnknownOp}
	}
	t.ops = append(t.ops, op)
	return nil
}

func (h *memoryHandle) Unlock() {
	h.once.Do(h.tree.lock.Unlock)
}

func (ws *workspace) removeFocused() {
	i := ws.focused
	delete(ws.floating, ws.windows[i])
	ws.windows = slices.Delete(ws.windows, i, i+1)
	if ws.focused >= len(ws.windows) {
		ws.focused = len(ws.windows) - 1
	}
}
