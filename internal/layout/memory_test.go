package layout

import (
	"errors"
	"testing"
)

func TestMemoryTreeTryLockIsExclusive(t *testing.T) {
	tree := NewMemoryTree("1")
	h, ok := tree.TryLock()
	if !ok {
		t.Fatalf("expected first TryLock to succeed")
	}
	if _, ok := tree.TryLock(); ok {
		t.Fatalf("expected second TryLock to fail while held")
	}
	h.Unlock()
	h.Unlock() // second unlock is a no-op
	h2, ok := tree.TryLock()
	if !ok {
		t.Fatalf("expected TryLock to succeed after unlock")
	}
	h2.Unlock()
}

func TestMemoryTreeSwitchAndSend(t *testing.T) {
	tree := NewMemoryTree("1")
	tree.AddWindow("term")
	tree.AddWindow("editor")

	h, _ := tree.TryLock()
	if err := h.SendActiveToWorkspace("3"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := h.SwitchToWorkspace("3"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	h.Unlock()

	snap := tree.Snapshot()
	if snap.Active != "3" {
		t.Fatalf("active=%q, want 3", snap.Active)
	}
	got := map[string][]string{}
	for _, ws := range snap.Workspaces {
		got[ws.ID] = ws.Windows
	}
	if len(got["1"]) != 1 || got["1"][0] != "term" {
		t.Fatalf("workspace 1 windows=%v, want [term]", got["1"])
	}
	if len(got["3"]) != 1 || got["3"][0] != "editor" {
		t.Fatalf("workspace 3 windows=%v, want [editor]", got["3"])
	}
}

func TestMemoryTreeSendWithoutWindowFails(t *testing.T) {
	tree := NewMemoryTree("1")
	h, _ := tree.TryLock()
	defer h.Unlock()
	err := h.SendActiveToWorkspace("2")
	if !errors.Is(err, ErrTreeOperation) || !errors.Is(err, ErrNoActiveWindow) {
		t.Fatalf("expected tree operation error, got %v", err)
	}
}

func TestMemoryTreeApply(t *testing.T) {
	tree := NewMemoryTree("1")
	tree.AddWindow("a")
	tree.AddWindow("b")
	h, _ := tree.TryLock()
	defer h.Unlock()

	for _, op := range []Op{OpFocusLeft, OpMoveActiveRight, OpSplitVertical, OpRemoveActive} {
		if err := h.Apply(op); err != nil {
			t.Fatalf("apply %s: %v", op, err)
		}
	}
	if err := h.Apply(Op("spin")); !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("expected ErrUnknownOp, got %v", err)
	}
	snap := tree.Snapshot()
	if len(snap.Ops) != 4 {
		t.Fatalf("ops=%v, want 4 recorded", snap.Ops)
	}
	ws := snap.Workspaces[0]
	if len(ws.Windows) != 1 || ws.Windows[0] != "b" {
		t.Fatalf("windows=%v, want [b]", ws.Windows)
	}
}
