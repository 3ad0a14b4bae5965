package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytscribe/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var outdir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools and output directory are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := resolveOutdir(outdir, cfg)
			if err != nil {
				return err
			}
			cfg.Paths.OutputDir = dir

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			results := preflight.RunAll(cmd.Context(), cfg)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				version := strings.TrimSpace(r.Version)
				if version == "" {
					version = "-"
				}
				rows = append(rows, []string{r.Name, yesNo(r.Passed), yesNo(r.Optional), version})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Ready", "Optional", "Version"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	registerOutdir(cmd, &outdir)
	return cmd
}
