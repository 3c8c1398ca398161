package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/deps"
	"loom/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries and configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, "Binaries:")
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg.Pipeline.FFmpegBinary)) {
				detail := status.Command
				if !status.Available {
					detail = status.Detail
				}
				fmt.Fprintln(out, statusLine(status.Name, status.Available, detail, colorize))
			}

			fmt.Fprintln(out, "Paths:")
			failed := false
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				fmt.Fprintln(out, statusLine(result.Name, result.Passed, result.Detail, colorize))
				if !result.Passed {
					failed = true
				}
			}
			if failed {
				fmt.Fprintln(out, "Some checks failed; loom generate will refuse to start.")
			}
			return nil
		},
	}
}

func statusLine(label string, ok bool, detail string, colorize bool) string {
	state := "OK"
	color := ansiGreen
	if !ok {
		state = "ERROR"
		color = ansiRed
	}
	line := fmt.Sprintf("  %-24s [%s] %s", label+":", state, strings.TrimSpace(detail))
	if colorize {
		return color + line + ansiReset
	}
	return line
}
