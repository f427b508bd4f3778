package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "podcat",
		Short:         "Podcat site content service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.contentDir, "content-dir", "", "Directory with episodes.yaml, faq.yaml and about.yaml (default: $PODCAT_CONTENT_DIR or embedded content)")
	rootCmd.PersistentFlags().StringVar(&ctx.audioDir, "audio-dir", "", "Directory episode audio paths are relative to (default: $PODCAT_AUDIO_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log content loading to stderr")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newEpisodesCommand(ctx))
	rootCmd.AddCommand(newFAQCommand(ctx))
	rootCmd.AddCommand(newAboutCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))

	return rootCmd
}
