package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdgt/rutube-saver/internal/config"
	"github.com/mdgt/rutube-saver/internal/logging"
)

// version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// appContext carries configuration and the logger into subcommands
type appContext struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func (a *appContext) ensure() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func newRootCommand() *cobra.Command {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:           "rutube-saver",
		Short:         "Concurrent batch downloader for Rutube links",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.ensure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newGetCommand(app))
	rootCmd.AddCommand(newExtractCommand(app))
	rootCmd.AddCommand(newInstallCommand(app))
	rootCmd.AddCommand(newHistoryCommand(app))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "rutube-saver %s\n", version)
			return nil
		},
	}
}
