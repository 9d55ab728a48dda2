package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/wayshell/internal/config"
	"github.com/jask/wayshell/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wayshell",
	Short: "wayshell - a command dispatcher with a Lua scripting engine",
	Long: `wayshell binds keys to named commands, drives a layout tree and forwards
code typed into an external picker to an embedded Lua engine.

Run without arguments to start the interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := os.Setenv("WAYSHELL_CONFIG", configPath); err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logCfg := cfg.Log
		// the terminal belongs to the TUI while it runs
		if usesTerminal(cmd) && logCfg.File == "" {
			logCfg.File = defaultLogFile()
		}
		logger, err = logging.New(logCfg, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $WAYSHELL_CONFIG or ~/.config/wayshell/config.toml)")

	rootCmd.AddCommand(runCmd, evalCmd, commandsCmd, historyCmd)
}

// usesTerminal reports whether cmd starts the TUI. The root is found by its
// missing parent so rootCmd's own hooks can call this.
func usesTerminal(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd == runCmd
}

func defaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(dir, "wayshell", "wayshell.log")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
