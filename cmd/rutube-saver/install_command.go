package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdgt/rutube-saver/internal/platform"
)

func newInstallCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install a managed yt-dlp binary",
		Long: `Download a yt-dlp binary into the user cache when none is installed on
the system. Downloads never trigger this implicitly; a missing dependency
fails the batch instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("resolving yt-dlp")
			if err := platform.Install(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "yt-dlp is installed and ready")
			return nil
		},
	}
}
