package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show the run ledger, or the record detail of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunRecords(cmd, store, args[0])
			}
			return printRuns(cmd, store)
		},
	}
}

func printRuns(cmd *cobra.Command, store *ledger.Store) error {
	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			run.ID,
			run.Modality,
			strconv.Itoa(run.WorldSize),
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			finished,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Run", "Modality", "World", "Status", "Started", "Finished"},
		rows, 2))
	return nil
}

func printRunRecords(cmd *cobra.Command, store *ledger.Store, runID string) error {
	records, err := store.ListRecords(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("list run records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No records for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		detail := record.ArtifactPath
		if record.ErrorMessage != "" {
			detail = truncate(record.ErrorMessage, 64)
		}
		rows = append(rows, []string{
			record.Name,
			record.SaveName,
			string(record.Status),
			detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Record", "Save name", "Status", "Artifact / Error"},
		rows))
	return nil
}
