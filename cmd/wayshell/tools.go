package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/jask/wayshell/internal/database"
	"github.com/jask/wayshell/internal/database/repository"
	"github.com/jask/wayshell/internal/script"
)

var (
	evalFile     bool
	historyLimit int
	historyPrune int
	historyID    string
)

var evalCmd = &cobra.Command{
	Use:   "eval CODE",
	Short: "Evaluate Lua code (or a file with --file) and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		rt, err := newRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		done := make(chan error, 1)
		go func() { done <- rt.engine.Run(ctx) }()
		defer func() {
			cancel()
			<-done
		}()

		q := script.Execute(args[0])
		if evalFile {
			q = script.ExecFile(args[0])
		}
		resp, err := rt.bridge.Query(ctx, q)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, resp.Output)
		if len(resp.Values) > 0 {
			fmt.Fprintln(out, strings.Join(resp.Values, "\t"))
		}
		return resp.Err
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List registered commands and their key bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noHistory := cfg
		noHistory.History.Enabled = false
		rt, err := newRuntime(cmd.Context(), noHistory, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		byCmd := make(map[string][]string)
		for _, b := range rt.keys.Bindings() {
			byCmd[b.Command] = append(byCmd[b.Command], b.Keys...)
		}
		for _, id := range rt.cmds.IDs() {
			command, _ := rt.cmds.Lookup(id)
			fmt.Fprintf(out, "%-28s %-22s %s\n", id, strings.Join(byCmd[id], ","), command.Description)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently evaluated scripts, or one in full with --id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.OpenMigrated(cfg.History.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := repository.NewHistoryRepo(db)
		out := cmd.OutOrStdout()
		if historyID != "" {
			e, err := repo.ByQueryID(cmd.Context(), historyID)
			if err != nil {
				return err
			}
			if e == nil {
				return fmt.Errorf("no history entry for query %s", historyID)
			}
			printEntry(out, e)
			return nil
		}
		if cmd.Flags().Changed("prune") {
			n, err := repo.Prune(cmd.Context(), historyPrune)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "pruned %d entries\n", n)
			return nil
		}

		entries, err := repo.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %s  %-9s %s", e.QueryID, e.CreatedAt.Local().Format(time.DateTime), e.Kind, oneLine(e.Code))
			if e.Error != nil {
				line += "  ! " + oneLine(*e.Error)
			} else if e.Result != "" {
				line += "  => " + strings.ReplaceAll(e.Result, "\t", ", ")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&evalFile, "file", false, "Treat CODE as a path to a Lua file")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Delete all but the newest N entries")
	historyCmd.Flags().StringVar(&historyID, "id", "", "Show one entry in full by query id")
}

// printEntry writes every field of e, unabridged.
func printEntry(w io.Writer, e *repository.HistoryEntry) {
	fmt.Fprintf(w, "query:   %s\n", e.QueryID)
	fmt.Fprintf(w, "kind:    %s\n", e.Kind)
	fmt.Fprintf(w, "time:    %s\n", e.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "code:\n%s\n", e.Code)
	if e.Output != "" {
		fmt.Fprintf(w, "output:\n%s", e.Output)
		if !strings.HasSuffix(e.Output, "\n") {
			fmt.Fprintln(w)
		}
	}
	if e.Result != "" {
		fmt.Fprintf(w, "result:  %s\n", strings.ReplaceAll(e.Result, "\t", ", "))
	}
	if e.Error != nil {
		fmt.Fprintf(w, "error:   %s\n", *e.Error)
	}
}

func oneLine(s string) string {
	return ansi.Truncate(strings.Join(strings.Fields(s), " "), 60, "...")
}
