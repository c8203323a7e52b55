package main

import (
	"fmt"
	"km-report-service/internal/app"
	"km-report-service/internal/config"
	"km-report-service/internal/platform/logger"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	outputDir  string
	month      string
	year       int
	verbose    bool

	env app.Env
	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:          "kmreport",
	Short:        "Build the monthly kilometers report from the scheduling app",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()
		env = app.EnvFromOS()

		level := env.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.New(level, env.LogFormat)

		path := env.ConfigPath
		if cmd.Flags().Changed("config") {
			path = configPath
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cmd.Flags().Changed("output-dir") {
			env.OutputDir = outputDir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output folder for ledgers and PDF pages")
	rootCmd.PersistentFlags().StringVarP(&month, "month", "m", "", "Month to process (1-12)")
	rootCmd.PersistentFlags().IntVarP(&year, "year", "y", time.Now().Year(), "Year to process")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd, renderCmd)
}
