package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/wayshell/internal/config"
	"github.com/jask/wayshell/internal/tui"
	"github.com/jask/wayshell/internal/watch"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive shell (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), cfg, logger)
	},
}

// runShell runs the script engine, the init-script watcher and the TUI until
// the TUI exits or the process is signalled.
func runShell(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	deps := tui.Deps{
		Commands: rt.cmds,
		Keys:     rt.keys,
		Tree:     rt.tree,
		Logger:   log,
	}
	if rt.history != nil {
		deps.History = rt.history
	}
	app := tui.New(ctx, deps)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	rt.program.Store(p)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.engine.Run(gctx) })
	g.Go(func() error {
		rt.forward(gctx)
		return nil
	})

	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.Script.InitFile, rt.cmds, cfg.Watch.Debounce, log)
		if err != nil {
			log.Warn("init script watcher unavailable", zap.Error(err))
		} else {
			if err := w.Start(gctx); err != nil {
				log.Warn("init script watcher not started", zap.Error(err))
			}
			defer w.Stop()
		}
	}

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	rt.picker.Wait()
	log.Info("shell stopped")
	return err
}
