package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads the application configuration. Sources in ascending precedence:
// defaults, the YAML config file, the .env file, process environment
// variables. Missing files are not an error.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.ConfigFile == "" {
		lc.ConfigFile = findFirst(
			"./cmd/fraudguard/config.yml",
			"../cmd/fraudguard/config.yml",
			"./config/config.yml",
			"./config.yml",
		)
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFirst(".env.fraudguard", ".env")
	}

	v := viper.New()

	if lc.ConfigFile != "" && exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", lc.ConfigFile, err)
		}
	}

	if lc.EnvFile != "" && exists(lc.EnvFile) {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", lc.EnvFile, err)
		}
	}

	v.SetEnvPrefix("FRAUDGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvKeys registers the nested keys so AutomaticEnv picks up overrides
// like FRAUDGUARD_SCREENING_BACKEND or FRAUDGUARD_LLM_BASE_URL.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"name",
		"environment",
		"version",
		"debug",
		"logging.level",
		"logging.format",
		"logging.output",
		"logging.no_color",
		"llm.name",
		"llm.base_url",
		"llm.model",
		"llm.temperature",
		"llm.max_tokens",
		"llm.timeout",
		"rules.large_amount_ceiling",
		"screening.backend",
		"screening.stage_timeout",
		"screening.max_parallel",
		"screening.topology_dir",
	} {
		_ = v.BindEnv(key)
	}
}

func findFirst(paths ...string) string {
	for _, path := range paths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
