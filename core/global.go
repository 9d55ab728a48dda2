package core

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrRegistryNotInitialized = errors.New("command registry not initialized")

var (
	globalOnce     sync.Once
	globalCommands atomic.Pointer[CommandRegistry]
)

// InitCommands creates the process-wide registry. It must run before the
// first Invoke; later calls return the same registry.
func InitCommands(log *zap.Logger) *CommandRegistry {
	globalOnce.Do(func() {
		globalCommands.Store(NewCommandRegistry(log))
	})
	return globalCommands.Load()
}

func Commands() (*CommandRegistry, error) {
	reg := globalCommands.Load()
	if reg == nil {
		return nil, ErrRegistryNotInitialized
	}
	return reg, nil
}

func Register(c Command) error {
	reg, err := Commands()
	if err != nil {
		return err
	}
	return reg.Register(c)
}

func Invoke(id string) error {
	reg, err := Commands()
	if err != nil {
		return err
	}
	return reg.Invoke(id)
}
