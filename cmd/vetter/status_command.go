package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"vetter/internal/records"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store statistics and daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *records.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				lockPath := filepath.Join(cfg.Paths.DataDir, "vetterd.lock")
				if _, err := os.Stat(lockPath); err == nil {
					fmt.Fprintln(out, "Daemon lock file present (vetterd may be running).")
				} else {
					fmt.Fprintln(out, "Daemon lock file absent.")
				}
				fmt.Fprintf(out, "Store: %s\n\n", store.Path())

				headers := []string{"STAGE", "COUNT"}
				rows := [][]string{
					{"ingested", strconv.Itoa(stats.Ingested)},
					{"questioned", strconv.Itoa(stats.Questioned)},
					{"answered", strconv.Itoa(stats.Answered)},
					{"evaluated", strconv.Itoa(stats.Evaluated)},
					{"total", strconv.Itoa(stats.Total)},
				}
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}
