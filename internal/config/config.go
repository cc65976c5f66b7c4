// Package config loads routerd's own daemon configuration: a YAML file
// overridable by ROUTERD_* environment variables, validated after defaults
// are applied, using a viper/mapstructure loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/routerd/routerd/internal/bytesize"
)

// Config is routerd's full daemon configuration.
//
// Precedence, highest to lowest: environment variables (ROUTERD_*), the
// config file, then defaults. An environment variable overrides only a key
// the config file sets; when no config file is found, Load returns
// GetDefaultConfig() without reading the environment.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Nexus   NexusConfig   `mapstructure:"nexus" yaml:"nexus"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls the slog wrapper's behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// NexusConfig controls the nexus's two UDS listeners.
type NexusConfig struct {
	ConfigSocket string `mapstructure:"config_socket" validate:"required" yaml:"config_socket"`
	ExecSocket   string `mapstructure:"exec_socket" validate:"required" yaml:"exec_socket"`

	// MaxBodySize is loaded and defaulted here but is not passed to the nexus
	// listeners; request frames are not checked against it.
	MaxBodySize bytesize.ByteSize `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// MetricsConfig controls the Prometheus registry served over httpaux.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// HTTPConfig controls the chi-based auxiliary surface (/metrics, /healthz,
// /debug/mds).
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty,hostname_port" yaml:"addr"`
}

// GetDefaultConfig returns the built-in defaults used when no config file is
// present.
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Nexus: NexusConfig{
			ConfigSocket: "/var/run/routerd/config.sock",
			ExecSocket:   "/var/run/routerd/exec.sock",
			MaxBodySize:  1 * bytesize.MiB,
		},
		Metrics:         MetricsConfig{Enabled: true},
		HTTP:            HTTPConfig{Enabled: true, Addr: "127.0.0.1:9091"},
		ShutdownTimeout: 5 * time.Second,
	}
}

// ApplyDefaults fills any zero-valued field left after unmarshalling.
func ApplyDefaults(cfg *Config) {
	def := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = def.Logging.Output
	}
	if cfg.Nexus.ConfigSocket == "" {
		cfg.Nexus.ConfigSocket = def.Nexus.ConfigSocket
	}
	if cfg.Nexus.ExecSocket == "" {
		cfg.Nexus.ExecSocket = def.Nexus.ExecSocket
	}
	if cfg.Nexus.MaxBodySize == 0 {
		cfg.Nexus.MaxBodySize = def.Nexus.MaxBodySize
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = def.HTTP.Addr
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
}

// Validate runs the validator/v10 struct-tag checks against cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Load reads configPath (or the default search path if empty), applies
// environment overrides and defaults, and validates the result. If no config
// file is found it returns GetDefaultConfig() as is, with no environment
// overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("ROUTERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("routerd")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "routerd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "routerd")
}

// GetDefaultConfigPath returns the default search path for routerd.yaml.
func GetDefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "routerd.yaml")
}
