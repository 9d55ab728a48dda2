package core

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

var (
	ErrCommandNotFound = errors.New("command not found")
	ErrEmptyCommandID  = errors.New("command id is empty")
	ErrNilHandler      = errors.New("command has no handler")
	ErrHandlerPanic    = errors.New("command handler panicked")
)

// Command is a named zero-argument action.
type Command struct {
	ID          string
	Description string
	Execute     func()
}

type CommandResult struct {
	CommandID string
	Desc      string
}

// CommandNotFoundError is returned by Invoke for unregistered ids.
type CommandNotFoundError struct {
	ID          string
	Suggestions []string
}

func (e *CommandNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown command: %s", e.ID)
	}
	return fmt.Sprintf("unknown command: %s (did you mean %s?)", e.ID, strings.Join(e.Suggestions, ", "))
}

func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

type HandlerPanicError struct {
	ID    string
	Value any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("command %s panicked: %v", e.ID, e.Value)
}

func (e *HandlerPanicError) Unwrap() error { return ErrHandlerPanic }

// CommandRegistry maps command ids to handlers. Register takes the write lock,
// Invoke only holds the read lock for the lookup and releases it before the
// handler runs, so handlers may block, invoke other commands, or register new
// ones without deadlocking.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]Command
	log      *zap.Logger
}

func NewCommandRegistry(log *zap.Logger, cmds ...Command) *CommandRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	reg := &CommandRegistry{commands: map[string]Command{}, log: log.Named("commands")}
	for _, c := range cmds {
		if err := reg.Register(c); err != nil {
			reg.log.Warn("skipping command", zap.String("id", c.ID), zap.Error(err))
		}
	}
	return reg
}

// Register inserts c, silently replacing any command with the same id.
func (r *CommandRegistry) Register(c Command) error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyCommandID
	}
	if c.Execute == nil {
		return fmt.Errorf("%s: %w", c.ID, ErrNilHandler)
	}
	r.mu.Lock()
	r.commands[c.ID] = c
	r.mu.Unlock()
	return nil
}

func (r *CommandRegistry) RegisterFunc(id, description string, fn func()) error {
	return r.Register(Command{ID: id, Description: description, Execute: fn})
}

// Invoke runs the handler for id on the calling goroutine.
func (r *CommandRegistry) Invoke(id string) (err error) {
	c, ok := r.Lookup(id)
	if !ok {
		return &CommandNotFoundError{ID: id, Suggestions: r.Suggest(id, 3)}
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("command panicked", zap.String("id", id), zap.Any("panic", p))
			err = &HandlerPanicError{ID: id, Value: p}
		}
	}()
	r.log.Debug("invoke", zap.String("id", id))
	c.Execute()
	return nil
}

func (r *CommandRegistry) Lookup(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[id]
	return c, ok
}

func (r *CommandRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// IDs returns every registered id, sorted.
func (r *CommandRegistry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.commands))
	for id := range r.commands {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (r *CommandRegistry) Search(query string) []CommandResult {
	q := strings.ToLower(strings.TrimSpace(query))
	r.mu.RLock()
	results := make([]CommandResult, 0, len(r.commands))
	for _, c := range r.commands {
		h := strings.ToLower(c.ID + " " + c.Description)
		if q != "" && !strings.Contains(h, q) {
			continue
		}
		results = append(results, CommandResult{CommandID: c.ID, Desc: c.Description})
	}
	r.mu.RUnlock()
	slices.SortFunc(results, func(a, b CommandResult) int {
		return cmp.Compare(a.CommandID, b.CommandID)
	})
	return results
}

// Suggest returns up to n registered ids close to id by edit distance.
func (r *CommandRegistry) Suggest(id string, n int) []string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || n <= 0 {
		return nil
	}
	limit := max(2, len(id)/3)
	type scored struct {
		id   string
		dist int
	}
	var hits []scored
	for _, candidate := range r.IDs() {
		d := levenshtein.ComputeDistance(id, strings.ToLower(candidate))
		if d <= limit {
			hits = append(hits, scored{id: candidate, dist: d})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return cmp.Compare(a.dist, b.dist) })
	out := make([]string, 0, min(n, len(hits)))
	for _, h := range hits {
		if len(out) == n {
			break
		}
		out = append(out, h.id)
	}
	return out
}
