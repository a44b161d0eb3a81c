package config

import (
	"fmt"
	"time"

	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/llm"
	"github.com/kbukum/fraudguard/logger"
)

// Screening backends.
const (
	BackendOllama    = "ollama"
	BackendHeuristic = "heuristic"
)

// Config is the application configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging   logger.Config    `yaml:"logging" mapstructure:"logging"`
	LLM       llm.Config       `yaml:"llm" mapstructure:"llm"`
	Rules     fraud.RuleParams `yaml:"rules" mapstructure:"rules"`
	Screening ScreeningConfig  `yaml:"screening" mapstructure:"screening"`
}

// ScreeningConfig configures pipeline execution.
type ScreeningConfig struct {
	// Backend selects the capability suite: "ollama" or "heuristic".
	Backend string `yaml:"backend" mapstructure:"backend"`
	// StageTimeout bounds each capability invocation.
	StageTimeout time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`
	// MaxParallel limits concurrent stages per level (0 = unlimited).
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`
	// TopologyDir, when set, is searched for custom topology YAML files.
	TopologyDir string `yaml:"topology_dir" mapstructure:"topology_dir"`
}

// ApplyDefaults fills unset configuration values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "fraudguard"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Rules.ApplyDefaults()

	if c.Screening.Backend == "" {
		c.Screening.Backend = BackendOllama
	}
	if c.Screening.StageTimeout == 0 {
		c.Screening.StageTimeout = 60 * time.Second
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	switch c.Screening.Backend {
	case BackendOllama, BackendHeuristic:
	default:
		return fmt.Errorf("config: screening.backend must be %q or %q (got: %s)", BackendOllama, BackendHeuristic, c.Screening.Backend)
	}
	if c.Screening.MaxParallel < 0 {
		return fmt.Errorf("config: screening.max_parallel must not be negative")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}
