// Package config loads the laycut configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/LayCut/internal/model"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to environment variable overrides,
// e.g. LAYCUT_SERVER_ADDR or LAYCUT_OPTIMIZER_PRIORITY.
const EnvPrefix = "LAYCUT"

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" yaml:"optimizer"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Mode            string        `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release or test
	ReadTimeout     time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout" yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" yaml:"shutdownTimeout"`
	MaxUploadBytes  int64         `mapstructure:"maxUploadBytes" yaml:"maxUploadBytes"`
	MaxBodyBytes    int64         `mapstructure:"maxBodyBytes" yaml:"maxBodyBytes"` // JSON request bodies
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

type OptimizerConfig struct {
	Priority model.Priority `mapstructure:"priority" yaml:"priority"`
	// MaxTotalQuantity caps the pieces in one order set, which also caps the
	// cuts in one plan. 0 disables the cap.
	MaxTotalQuantity int `mapstructure:"maxTotalQuantity" yaml:"maxTotalQuantity"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins" yaml:"allowOrigins"`
}

// ExportConfig controls where the CLI writes export files given as relative paths.
type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
			MaxBodyBytes:    1 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
		Optimizer: OptimizerConfig{
			Priority:         model.PriorityMinWaste,
			MaxTotalQuantity: 1_000_000,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}

// DefaultConfigDir returns ~/.laycut, or .laycut when the home directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".laycut")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.maxUploadBytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.maxBodyBytes", d.Server.MaxBodyBytes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("optimizer.priority", string(d.Optimizer.Priority))
	v.SetDefault("optimizer.maxTotalQuantity", d.Optimizer.MaxTotalQuantity)
	v.SetDefault("cors.allowOrigins", d.CORS.AllowOrigins)
	v.SetDefault("export.dir", d.Export.Dir)
}

// Load reads the YAML config at path and applies LAYCUT_* environment overrides.
// If path is empty or the file does not exist, defaults are used with no error.
// The result is validated.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating missing parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.maxUploadBytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.maxBodyBytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if !c.Optimizer.Priority.Valid() {
		return fmt.Errorf("optimizer.priority must be %q or %q, got %q",
			model.PriorityMinWaste, model.PriorityMinCuts, c.Optimizer.Priority)
	}
	if c.Optimizer.MaxTotalQuantity < 0 {
		return fmt.Errorf("optimizer.maxTotalQuantity must not be negative, got %d", c.Optimizer.MaxTotalQuantity)
	}
	return nil
}

// ApplyToSettings copies the optimizer settings from the config onto s.
func (c Config) ApplyToSettings(s model.PlanSettings) model.PlanSettings {
	s = s.WithPriority(c.Optimizer.Priority)
	s.MaxTotalQuantity = c.Optimizer.MaxTotalQuantity
	return s
}

// ZapConfig builds the logger configuration. verbose forces debug level.
func (c Config) ZapConfig(verbose bool) (zap.Config, error) {
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zap.Config{}, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc, nil
}

// ExportPath resolves a relative export file name against Export.Dir.
func (c Config) ExportPath(name string) string {
	if name == "" || c.Export.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Export.Dir, name)
}
