package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"loom/internal/backend"
	"loom/internal/dataset"
	"loom/internal/dist"
	"loom/internal/logging"
	"loom/internal/services"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Validate the conditioning manifest and list its records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			modality, ok := dataset.ParseModality(cfg.Dataset.Modality)
			if !ok {
				return services.Wrap(services.ErrConfiguration, "startup", "parse modality", cfg.Dataset.Modality, nil)
			}
			b, err := backend.Open(cfg, dist.Resolve(), logging.NewNop())
			if err != nil {
				return err
			}

			source := dataset.NewManifestSource(cfg.Dataset.Manifest, modality, b.Loader, cfg.Generation.Seed)
			records, err := source.Open(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for i, record := range records {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					record.Name,
					record.SaveName,
					truncate(record.Prompt, 48),
					strconv.FormatInt(record.Seed, 10),
					conditioningLabel(record),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Name", "Save name", "Prompt", "Seed", "Conditioning"},
				rows, 0, 4))
			fmt.Fprintf(out, "%d records valid for %s conditioning\n", len(records), modality)
			return nil
		},
	}
}

func conditioningLabel(record *dataset.Record) string {
	switch {
	case record.HasBackground():
		return "background"
	case record.HasAudio():
		return "audio"
	default:
		return "none"
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}
