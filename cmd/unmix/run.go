package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"unmix/internal/config"
	"unmix/internal/deps"
	"unmix/internal/job"
	"unmix/internal/logging"
	"unmix/internal/pipeline"
	"unmix/internal/preflight"
	"unmix/internal/services"
	"unmix/internal/workspace"
)

// staleWorkspaceAge is how old an abandoned workspace must be before the
// startup sweep removes it. Old enough that a concurrently running job is
// never swept out from under itself.
const staleWorkspaceAge = 24 * time.Hour

type runOptions struct {
	outdir   string
	model    string
	device   string
	bitrate  string
	keepTemp bool
}

// applyOverrides layers explicit flags over the loaded config and re-validates
// the result. Precedence: flag over config file over built-in default.
func applyOverrides(opts *runOptions, keepTempChanged bool, cfg *config.Config) error {
	if v := strings.TrimSpace(opts.outdir); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return err
		}
		cfg.Output.Dir = expanded
	}
	if v := strings.TrimSpace(opts.model); v != "" {
		cfg.Separation.Model = v
	}
	if v := strings.TrimSpace(opts.device); v != "" {
		cfg.Separation.Device = strings.ToLower(v)
	}
	if v := strings.TrimSpace(opts.bitrate); v != "" {
		cfg.Output.Bitrate = strings.ToLower(v)
	}
	if keepTempChanged {
		cfg.Workspace.KeepTemp = opts.keepTemp
	}
	return cfg.Validate()
}

func runExtraction(cmd *cobra.Command, ctx *commandContext, opts *runOptions, input string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(opts, cmd.Flags().Changed("keep-temp"), cfg); err != nil {
		return err
	}

	logger, err := ctx.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// Environment first, input second, directories last: a missing tool or a
	// bad input path must fail before anything is created on disk.
	if err := deps.VerifyRequired(deps.Default(cfg)); err != nil {
		return err
	}

	j, err := job.New(job.Params{
		InputPath: input,
		OutputDir: cfg.Output.Dir,
		Model:     cfg.Separation.Model,
		Device:    cfg.Separation.Device,
		Bitrate:   cfg.Output.Bitrate,
		KeepTemp:  cfg.Workspace.KeepTemp,
	})
	if err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrEnvironment, "preflight", "prepare directories", "", err)
	}
	checks := preflight.RunAll(cfg)
	if failure := preflight.FirstFailure(checks); failure != nil {
		return services.Wrap(services.ErrEnvironment, "preflight", failure.Name, failure.Detail, nil)
	}
	for _, check := range checks {
		if check.Warning {
			logger.Warn("preflight warning",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
		}
	}

	if swept := workspace.CleanStale(cfg.Workspace.Root, staleWorkspaceAge, logger); len(swept.Removed) > 0 {
		logger.Info("removed stale workspaces", logging.Int("count", len(swept.Removed)))
	}

	runnerOpts := []pipeline.Option{}
	if bar := newStageProgress(cmd.OutOrStdout()); bar != nil {
		defer bar.Finish()
		runnerOpts = append(runnerOpts, pipeline.WithProgress(bar.Observe))
	}
	runner, err := pipeline.New(cfg, logger, runnerOpts...)
	if err != nil {
		return err
	}

	result, err := runner.Run(cmd.Context(), j)
	if err != nil {
		return err
	}

	printRunSummary(cmd.OutOrStdout(), result)
	return nil
}

func printRunSummary(out io.Writer, result *pipeline.Result) {
	rows := [][]string{
		{job.StemVocals, result.VocalsPath, fileSize(result.VocalsPath)},
		{job.StemInstrumental, result.InstrumentalPath, fileSize(result.InstrumentalPath)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"STEM", "FILE", "SIZE"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(out, "Completed in %s\n", result.Elapsed.Round(100*time.Millisecond))
	if result.Workspace != "" {
		fmt.Fprintf(out, "Workspace kept at %s\n", result.Workspace)
	}
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return formatBytes(info.Size())
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
