package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/teammesh/config"
)

var (
	configFile   string
	topologyFile string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "teammesh",
	Short: "Hierarchical multi-agent teams",
	Long: `teammesh runs teams of language-model agents. Each team has a
supervisor that decides which member acts next; members are agents or
whole nested teams.

Configuration is read from ~/.config/teammesh/config.yaml, a .teammesh.yaml
in the project, the --config file, and TEAMMESH_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (merged over user and project config)")
	rootCmd.PersistentFlags().StringVarP(&topologyFile, "topology", "t", "", "Topology file (overrides the topology config key)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(func(o *config.LoadOptions) {
		o.ConfigFile = configFile
	})
	if err != nil {
		return nil, err
	}

	if topologyFile != "" {
		cfg.Topology = topologyFile
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Topology == "" {
		return nil, fmt.Errorf("no topology: pass --topology or set the topology config key")
	}

	return cfg, nil
}
