// Package config handles configuration loading for teammesh.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/teammesh/engine"
	"github.com/hupe1980/teammesh/logging"
	"github.com/hupe1980/teammesh/supervisor"
)

// ProjectFile is the name of the project-level config file.
const ProjectFile = ".teammesh.yaml"

// Config holds all configuration for teammesh.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Run       RunConfig       `mapstructure:"run"`
	Decision  DecisionConfig  `mapstructure:"decision"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	// Topology is the path of the team topology file.
	Topology string `mapstructure:"topology"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// RunConfig holds orchestration budgets.
type RunConfig struct {
	Budget     int `mapstructure:"budget"`
	StepBudget int `mapstructure:"step_budget"`
}

// DecisionConfig holds the retry policy of supervisor decisions.
type DecisionConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// OpenAIConfig holds settings for OpenAI compatible endpoints, GitHub
// Models included.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// TracingConfig toggles OpenTelemetry spans. Project names the traced
// service. Spans go to the OTLP/HTTP collector at Endpoint, or are printed
// to stderr when it is empty.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Project  string `mapstructure:"project"`
	Endpoint string `mapstructure:"endpoint"`
}

// ArtifactsConfig selects where worker artifacts are written. An empty Dir
// keeps them in memory.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadOptions controls where Load looks for files.
type LoadOptions struct {
	// ConfigFile is an explicit config file (e.g. --config). It is merged
	// over the user and project files.
	ConfigFile string
	// UserConfigDir overrides the XDG user config directory.
	UserConfigDir string
	// ProjectDir is where the search for ProjectFile starts. Defaults to
	// the working directory.
	ProjectDir string
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
//  1. Environment variables (GITHUB_TOKEN, OPENAI_API_KEY, GITHUB_INFERENCE_ENDPOINT,
//     ANTHROPIC_API_KEY, LOG_LEVEL, LOG_FORMAT, TEAMMESH_*)
//  2. Explicit config file
//  3. Project config (.teammesh.yaml in the project directory or a parent)
//  4. User config ($XDG_CONFIG_HOME/teammesh/config.yaml)
//  5. Built-in defaults
func Load(optFns ...func(o *LoadOptions)) (*Config, error) {
	opts := LoadOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.UserConfigDir == "" {
		opts.UserConfigDir = UserConfigDir()
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(opts.UserConfigDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if project := findProjectConfig(opts.ProjectDir); project != "" {
		if err := merge(v, project); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	if opts.ConfigFile != "" {
		if err := merge(v, opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("merging config file: %w", err)
		}
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a single file plus defaults and
// environment variables.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

func merge(v *viper.Viper, path string) error {
	other := viper.New()
	other.SetConfigFile(path)
	if err := other.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(other.AllSettings())
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("TEAMMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The first non-empty variable wins.
	_ = v.BindEnv("openai.api_key", "GITHUB_TOKEN", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "GITHUB_INFERENCE_ENDPOINT", "OPENAI_BASE_URL")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("anthropic.aws_region", "AWS_REGION")
	_ = v.BindEnv("anthropic.aws_profile", "AWS_PROFILE")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")
	_ = v.BindEnv("tracing.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("run.budget", engine.DefaultConfig.RunBudget)
	v.SetDefault("run.step_budget", engine.DefaultConfig.StepBudget)

	v.SetDefault("decision.max_attempts", supervisor.DefaultRetryPolicy.MaxAttempts)
	v.SetDefault("decision.initial_delay", supervisor.DefaultRetryPolicy.InitialDelay.String())
	v.SetDefault("decision.multiplier", supervisor.DefaultRetryPolicy.Multiplier)
	v.SetDefault("decision.max_delay", supervisor.DefaultRetryPolicy.MaxDelay.String())

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.project", "teammesh")
	v.SetDefault("tracing.endpoint", "")

	v.SetDefault("artifacts.dir", "")
	v.SetDefault("topology", "")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Run: RunConfig{
			Budget:     engine.DefaultConfig.RunBudget,
			StepBudget: engine.DefaultConfig.StepBudget,
		},
		Decision: DecisionConfig{
			MaxAttempts:  supervisor.DefaultRetryPolicy.MaxAttempts,
			InitialDelay: supervisor.DefaultRetryPolicy.InitialDelay,
			Multiplier:   supervisor.DefaultRetryPolicy.Multiplier,
			MaxDelay:     supervisor.DefaultRetryPolicy.MaxDelay,
		},
		Tracing: TracingConfig{Project: "teammesh"},
	}
}

// EngineConfig returns the orchestration budgets.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{RunBudget: c.Run.Budget, StepBudget: c.Run.StepBudget}
}

// RetryPolicy returns the supervisor retry policy.
func (c *Config) RetryPolicy() supervisor.RetryPolicy {
	return supervisor.RetryPolicy{
		MaxAttempts:  c.Decision.MaxAttempts,
		InitialDelay: c.Decision.InitialDelay,
		Multiplier:   c.Decision.Multiplier,
		MaxDelay:     c.Decision.MaxDelay,
	}
}

// LoggerConfig returns the logger settings. Unknown levels fall back to info.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	cfg.AddSource = c.Log.AddSource
	return cfg
}

// Validate checks values Load cannot reject on its own.
func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	if c.Decision.MaxAttempts < 1 {
		return fmt.Errorf("decision: max_attempts must be positive, got %d", c.Decision.MaxAttempts)
	}
	return nil
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// UserConfigDir returns the XDG config directory for teammesh.
func UserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "teammesh")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "teammesh")
	}
	return filepath.Join(home, ".config", "teammesh")
}

// findProjectConfig searches for ProjectFile in dir and its parents.
func findProjectConfig(dir string) string {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
