package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/teammesh/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Display the configuration after merging the user config, the project
.teammesh.yaml, the --config file and environment variables. API keys are
masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(func(o *config.LoadOptions) {
			o.ConfigFile = configFile
		})
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if topologyFile != "" {
			cfg.Topology = topologyFile
		}

		displayConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func displayConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "topology: %s\n", orUnset(cfg.Topology))
	fmt.Fprintf(w, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "log.format: %s\n", cfg.Log.Format)
	fmt.Fprintf(w, "run.budget: %d\n", cfg.Run.Budget)
	fmt.Fprintf(w, "run.step_budget: %d\n", cfg.Run.StepBudget)
	fmt.Fprintf(w, "decision.max_attempts: %d\n", cfg.Decision.MaxAttempts)
	fmt.Fprintf(w, "decision.initial_delay: %s\n", cfg.Decision.InitialDelay)
	fmt.Fprintf(w, "decision.multiplier: %g\n", cfg.Decision.Multiplier)
	fmt.Fprintf(w, "decision.max_delay: %s\n", cfg.Decision.MaxDelay)
	fmt.Fprintf(w, "openai.api_key: %s\n", mask(cfg.OpenAI.APIKey))
	fmt.Fprintf(w, "openai.base_url: %s\n", orUnset(cfg.OpenAI.BaseURL))
	fmt.Fprintf(w, "anthropic.api_key: %s\n", mask(cfg.Anthropic.APIKey))
	fmt.Fprintf(w, "anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Fprintf(w, "anthropic.aws_region: %s\n", orUnset(cfg.Anthropic.AWSRegion))
	fmt.Fprintf(w, "tracing.enabled: %t\n", cfg.Tracing.Enabled)
	fmt.Fprintf(w, "tracing.project: %s\n", cfg.Tracing.Project)
	fmt.Fprintf(w, "tracing.endpoint: %s\n", orUnset(cfg.Tracing.Endpoint))
	fmt.Fprintf(w, "artifacts.dir: %s\n", orUnset(cfg.Artifacts.Dir))
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "****"
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
