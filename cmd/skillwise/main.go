// Package main is the SkillWise command line: résumé extraction, roadmap
// generation and offline roadmap inspection.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fadilmartias/skillwise/internal/config"
	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "skillwise",
		Short:         "SkillWise learning roadmap tools",
		Long:          "SkillWise extracts résumé text, generates personalised learning roadmaps and tracks roadmap progress from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if logLevel == "" {
				logLevel = config.LoadAppConfig().LogLevel
			}
			slog.SetDefault(logger.New(&logger.Config{Level: logLevel, Format: config.LoadAppConfig().LogFormat}, cmd.ErrOrStderr()))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")

	root.AddCommand(
		newExtractCmd(),
		newGenerateCmd(),
		newClassifyCmd(),
		newProgressCmd(),
	)
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
