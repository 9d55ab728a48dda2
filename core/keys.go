package core

import (
	"slices"
	"strings"
	"sync"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

type KeyBinding struct {
	Keys        []string
	Command     string
	Description string
}

// KeyRegistry maps key names to command ids. Later bindings win over earlier
// ones for the same key.
type KeyRegistry struct {
	mu       sync.RWMutex
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: cloneBindings(bindings)}
}

func (r *KeyRegistry) Register(binding KeyBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = append(r.bindings, cloneBinding(binding))
}

// Replace swaps the whole binding table.
func (r *KeyRegistry) Replace(bindings []KeyBinding) {
	next := cloneBindings(bindings)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = next
}

// Clear drops every binding. Used before the script engine restarts so the
// init script can bind keys from scratch.
func (r *KeyRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = nil
}

func (r *KeyRegistry) Bindings() []KeyBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneBindings(r.bindings)
}

func (r *KeyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

func (r *KeyRegistry) CommandFor(key string) (string, bool) {
	pressed := normalizeKey(key)
	if pressed == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.bindings) - 1; i >= 0; i-- {
		b := r.bindings[i]
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return b.Command, true
			}
		}
	}
	return "", false
}

func (r *KeyRegistry) Match(msg tea.KeyMsg) (string, bool) {
	return r.CommandFor(KeyString(msg))
}

// Dispatch invokes the command bound to key. bound is false when no binding
// exists; err is whatever Invoke returned.
func (r *KeyRegistry) Dispatch(key string, commands *CommandRegistry) (bound bool, err error) {
	id, ok := r.CommandFor(key)
	if !ok {
		return false, nil
	}
	return true, commands.Invoke(id)
}

var shiftedDigits = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
}

// KeyString names a key press the way bindings are written, e.g. "alt+3",
// "alt+shift+3" or "alt+space".
func KeyString(msg tea.KeyMsg) string {
	var base string
	switch {
	case msg.Type == tea.KeySpace:
		base = "space"
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		r := msg.Runes[0]
		if d, ok := shiftedDigits[r]; ok {
			base = "shift+" + string(d)
		} else if unicode.IsUpper(r) {
			base = "shift+" + string(unicode.ToLower(r))
		} else {
			base = string(r)
		}
	default:
		return normalizeKey(msg.String())
	}
	if msg.Alt {
		base = "alt+" + base
	}
	return normalizeKey(base)
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func cloneBinding(b KeyBinding) KeyBinding {
	b.Keys = slices.Clone(b.Keys)
	return b
}

func cloneBindings(bindings []KeyBinding) []KeyBinding {
	if bindings == nil {
		return nil
	}
	out := make([]KeyBinding, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, cloneBinding(b))
	}
	return out
}
