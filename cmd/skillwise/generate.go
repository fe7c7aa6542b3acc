package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fadilmartias/skillwise/internal/config"
	"github.com/fadilmartias/skillwise/internal/prompt"
	"github.com/fadilmartias/skillwise/internal/service"
	"github.com/fadilmartias/skillwise/internal/util"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		role       string
		goal       string
		resumePath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a learning roadmap from a résumé",
		RunE: func(cmd *cobra.Command, _ []string) error {
			role = strings.TrimSpace(role)
			if role == "" {
				return fmt.Errorf("--role is required")
			}

			text, err := util.NewExtractor(config.LoadOCRConfig(), true).Extract(cmd.Context(), resumePath)
			if err != nil {
				return fmt.Errorf("extract %s: %w", resumePath, err)
			}

			gen, err := newCLIGenerator(cmd)
			if err != nil {
				return err
			}
			genConfig := config.LoadGenerationConfig()
			requester := service.NewRoadmapService(gen, service.RetryPolicy{
				MaxAttempts: genConfig.MaxRetries,
				Unit:        genConfig.BackoffUnit,
			})

			roadmap, err := requester.Generate(cmd.Context(), prompt.Roadmap(role, goal, text))
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(roadmap+"\n"), 0o644); err != nil {
					return fmt.Errorf("write roadmap: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Roadmap written to %s\n", outPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), roadmap)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Target role, e.g. \"Data Analyst\" (required)")
	cmd.Flags().StringVar(&goal, "goal", "", "Career goal in your own words")
	cmd.Flags().StringVar(&resumePath, "resume", "", "Path to the résumé PDF (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the roadmap to a file instead of stdout")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func newCLIGenerator(cmd *cobra.Command) (service.Generator, error) {
	if config.LoadGenerationConfig().Provider == config.ProviderOpenRouter {
		return service.NewOpenRouterService()
	}
	return service.NewGeminiService(cmd.Context())
}
