package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "unmix INPUT",
		Short: "Split a media file into vocal and instrumental MP3 stems",
		Long: `unmix decodes any ffmpeg-readable audio or video file, separates vocals
from accompaniment with a Demucs model, and writes two MP3 stems named
after the input into the output directory.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runExtraction(cmd, ctx, opts, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: console or json")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.outdir, "outdir", "o", "", "Directory for the finished stems (default outputs)")
	flags.StringVarP(&opts.model, "model", "m", "", "Separation model name (default htdemucs)")
	flags.StringVarP(&opts.device, "device", "d", "", "Inference device: auto, cpu, cuda, mps (default auto)")
	flags.StringVarP(&opts.bitrate, "bitrate", "b", "", "MP3 bitrate, e.g. 192k (default 192k)")
	flags.BoolVar(&opts.keepTemp, "keep-temp", false, "Keep the temporary workspace after the run")

	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
