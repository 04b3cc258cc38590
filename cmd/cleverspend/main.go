package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cleverspend/internal/cli"
	"cleverspend/internal/config"
)

// annotationStoreless marks commands that must not open the store.
const annotationStoreless = "storeless"

var (
	version  = "dev"
	logLevel string
	app      *cli.App

	rootCmd = &cobra.Command{
		Use:   "cleverspend",
		Short: "Personal expense tracker",
		Long: `cleverspend records expenses against categories and summarizes them
per day, month, year or all time, with pie chart geometry for each summary.`,
		SilenceUsage:       true,
		PersistentPreRunE:  openApp,
		PersistentPostRunE: closeApp,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(expensesCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		if _, err := config.ParseLogLevel(logLevel); err != nil {
			return err
		}
		cfg.LogLevel = logLevel
	}

	logger := cli.SetupLogger(cfg.Level())
	if cmd.Annotations[annotationStoreless] == "true" {
		app = cli.NewStorelessApp(cfg, logger)
		return nil
	}
	app, err = cli.NewApp(cmd.Context(), cfg, logger)
	return err
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
