package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expensebook/internal/cli"
	"expensebook/internal/config"
	"expensebook/internal/log"
)

var (
	version  = "dev"
	logLevel string

	logger *log.Logger
	cfg    *config.Config

	rootCmd = &cobra.Command{
		Use:   "expensebook",
		Short: "Personal expense tracker",
		Long: `expensebook records expenses in named, colored categories and shows
totals by category and by month. Run without a subcommand to start the web UI.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
		RunE:              runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(expensesCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	level := logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger = cli.SetupLogger(level)

	loaded, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "expensebook", version)
		},
	}
}
