package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"vetter/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage stored applicant records",
	}

	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	recordsCmd.AddCommand(newRecordsRemoveCommand(ctx))
	recordsCmd.AddCommand(newRecordsClearCommand(ctx))

	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *records.Store) error {
				items, err := store.Find(cmd.Context(), records.PredicateAll)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No records stored.")
					return nil
				}

				headers, rows := recordRows(items)
				if isTerminal(out) {
					fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
					return nil
				}
				// Plain output for pipes and scripts.
				fmt.Fprintln(out, strings.Join(headers, "\t"))
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			})
		},
	}
}

func recordRows(items []*records.Record) ([]string, [][]string) {
	headers := []string{"KEY", "SUBMITTED", "STAGE", "SCORE"}
	rows := make([][]string, 0, len(items))
	for _, record := range items {
		rows = append(rows, []string{
			record.DedupKey,
			record.SubmittedAt,
			record.Stage(),
			formatScore(record),
		})
	}
	return headers, rows
}

func formatScore(record *records.Record) string {
	if !record.HasEvaluation() {
		return "-"
	}
	return fmt.Sprintf("%.1f", record.Evaluation.Score)
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Show one record in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *records.Store) error {
				record, err := store.GetByKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("no record with key %s", args[0])
				}
				printRecord(cmd, record)
				return nil
			})
		},
	}
}

func printRecord(cmd *cobra.Command, record *records.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Key:        %s\n", record.DedupKey)
	fmt.Fprintf(out, "Submitted:  %s\n", record.SubmittedAt)
	fmt.Fprintf(out, "Stage:      %s\n", record.Stage())
	fmt.Fprintf(out, "Updated:    %s\n", record.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(record.Fields) > 0 {
		fmt.Fprintln(out, "Fields:")
		for _, name := range sortedFieldNames(record.Fields) {
			fmt.Fprintf(out, "  %s: %s\n", name, record.Fields[name])
		}
	}
	if record.Attachment != nil {
		fmt.Fprintln(out, "Attachment:")
		fmt.Fprintf(out, "  source: %s\n", record.Attachment.SourceReference)
		if record.Attachment.LocalReference != "" {
			fmt.Fprintf(out, "  local:  %s\n", record.Attachment.LocalReference)
		}
		if record.Attachment.Error != "" {
			fmt.Fprintf(out, "  error:  %s\n", record.Attachment.Error)
		}
		fmt.Fprintf(out, "  text:   %d characters extracted\n", len(record.Attachment.ExtractedText))
	}
	if len(record.Questions) > 0 {
		fmt.Fprintln(out, "Questions:")
		for i, question := range record.Questions {
			fmt.Fprintf(out, "  %d. %s\n", i+1, question)
		}
	}
	if len(record.Answers) > 0 {
		fmt.Fprintln(out, "Answers:")
		for i, answer := range record.Answers {
			fmt.Fprintf(out, "  %d. %s\n", i+1, answer)
		}
	}
	if record.HasEvaluation() {
		fmt.Fprintf(out, "Score:      %.1f\n", record.Evaluation.Score)
		fmt.Fprintln(out, "Commentary:")
		for _, line := range strings.Split(record.Evaluation.Commentary, "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
}

func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newRecordsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *records.Store) error {
				removed, err := store.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no record with key %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed record %s\n", args[0])
				return nil
			})
		},
	}
}

func newRecordsClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all stored records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("refusing to clear without --force")
			}
			return ctx.withStore(func(store *records.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm removal of every record")
	return cmd
}
