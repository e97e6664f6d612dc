package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdgt/rutube-saver/internal/history"
)

func newHistoryCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and clean up recorded downloads",
	}
	cmd.AddCommand(newHistoryListCommand(app))
	cmd.AddCommand(newHistoryPruneCommand(app))
	return cmd
}

func newHistoryListCommand(app *appContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded downloads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(app.cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No downloads recorded.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.CreatedAt.Local().Format(time.DateTime),
					e.URL,
					e.Path,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"When", "URL", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")

	return cmd
}

func newHistoryPruneCommand(app *appContext) *cobra.Command {
	var deleteFiles bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Clear the download history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(app.cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, files, err := store.Prune(cmd.Context(), deleteFiles)
			if err != nil {
				return err
			}
			if deleteFiles {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries and %d files.\n", entries, files)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries.\n", entries)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteFiles, "delete-files", false, "Also delete the recorded files from disk")

	return cmd
}
