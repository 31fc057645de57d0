package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"unmix/internal/preflight"
	"unmix/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of the external tools a run needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			missingRequired := false
			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					if status.Optional {
						state = "missing (optional)"
					} else {
						state = "missing"
						missingRequired = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Description})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"DEPENDENCY", "COMMAND", "STATUS", "NOTES"},
				rows,
				nil,
			))

			// Create the configured directories first so the access checks
			// below report what a run would actually see; any failure shows
			// up in those checks.
			_ = cfg.EnsureDirectories()
			fmt.Fprintln(out, "Filesystem:")
			for _, line := range checkLines(preflight.RunAll(cfg), colorize) {
				fmt.Fprintln(out, line)
			}

			if missingRequired {
				return services.Wrap(services.ErrEnvironment, "preflight", "check binaries",
					"one or more required tools are missing", nil)
			}
			return nil
		},
	}
}
