// Package config loads match-runner configuration the way the wider corpus
// does: viper + godotenv, environment overrides, sane defaults, validation
// before use.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level configuration for the match-runner process.
type Config struct {
	BotsDir              string        `mapstructure:"bots_dir" validate:"required"`
	DockerHost           string        `mapstructure:"docker_host"`
	GatewayListenAddr    string        `mapstructure:"gateway_listen_addr" validate:"required"`
	GatewayPublicBaseURL string        `mapstructure:"gateway_public_base_url"`
	MetricsListenAddr    string        `mapstructure:"metrics_listen_addr" validate:"required"`
	DefaultTurnTimeout   time.Duration `mapstructure:"default_turn_timeout" validate:"required"`
	RemoteConnectTimeout time.Duration `mapstructure:"remote_connect_timeout" validate:"required"`
	Logging              LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds the configured log level and formatting. The CLI
// builds its logger from the --verbose flag and does not read these fields.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

var validate = validator.New()

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/planetwars-matchrunner")
	}

	v.SetEnvPrefix("PWMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env vars for keys viper already knows, so bind
	// every key explicitly (PWMR_BOTS_DIR, PWMR_LOGGING_LEVEL, ...).
	for _, key := range []string{"bots_dir", "docker_host", "gateway_listen_addr", "gateway_public_base_url",
		"metrics_listen_addr", "default_turn_timeout", "remote_connect_timeout", "logging.level", "logging.pretty"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads configuration or returns a default config on
// error.
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in
// main.go).
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// SetDefaults fills any zero-valued fields with this process's defaults.
func SetDefaults(cfg *Config) {
	if cfg.BotsDir == "" {
		cfg.BotsDir = "./bots"
	}
	if cfg.GatewayListenAddr == "" {
		cfg.GatewayListenAddr = ":7133"
	}
	if cfg.GatewayPublicBaseURL == "" {
		cfg.GatewayPublicBaseURL = "http://localhost:7133"
	}
	if cfg.MetricsListenAddr == "" {
		cfg.MetricsListenAddr = ":9133"
	}
	if cfg.DefaultTurnTimeout == 0 {
		cfg.DefaultTurnTimeout = time.Second
	}
	if cfg.RemoteConnectTimeout == 0 {
		cfg.RemoteConnectTimeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// ValidateConfig checks struct tags via go-playground/validator.
func ValidateConfig(cfg *Config) error {
	return validate.Struct(cfg)
}
