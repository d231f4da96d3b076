package core

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/Fuabioo/unsheet/internal/logging"
	"github.com/Fuabioo/unsheet/internal/security"
	"github.com/spf13/viper"
)

// Extraction back ends.
const (
	ModeTool   = "tool"
	ModeNative = "native"
)

// Config holds global configuration for unsheet.
type Config struct {
	Extract  ExtractConfig  `mapstructure:"extract" json:"extract"`
	Security SecurityConfig `mapstructure:"security" json:"security"`
	Log      logging.Config `mapstructure:"log" json:"log"`
}

// ExtractConfig selects and configures the extraction back end.
type ExtractConfig struct {
	Mode        string        `mapstructure:"mode" json:"mode"`
	Tool        string        `mapstructure:"tool" json:"tool"`
	Args        []string      `mapstructure:"args" json:"args"`
	Overwrite   bool          `mapstructure:"overwrite" json:"overwrite"`
	WorkDir     string        `mapstructure:"workdir" json:"workdir"`
	LockTimeout time.Duration `mapstructure:"lock_timeout" json:"lock_timeout"`
}

// SecurityConfig holds limits for the native extractor.
type SecurityConfig struct {
	MaxExtractedSizeBytes uint64  `mapstructure:"max_extracted_size_bytes" json:"max_extracted_size_bytes"`
	MaxFileCount          int     `mapstructure:"max_file_count" json:"max_file_count"`
	MaxCompressionRatio   float64 `mapstructure:"max_compression_ratio" json:"max_compression_ratio"`
}

// DefaultConfig returns the built-in configuration: the external unzip tool
// run against the current directory.
func DefaultConfig() *Config {
	limits := security.DefaultLimits()
	return &Config{
		Extract: ExtractConfig{
			Mode:        ModeTool,
			Tool:        "unzip",
			Args:        []string{},
			WorkDir:     ".",
			LockTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			MaxExtractedSizeBytes: limits.MaxExtractedSize,
			MaxFileCount:          limits.MaxFileCount,
			MaxCompressionRatio:   limits.MaxCompressionRatio,
		},
		Log: logging.DefaultConfig(),
	}
}

// LoadConfig layers defaults, an optional JSON config file and UNSHEET_*
// environment variables, in that order of precedence (lowest first).
//
// path selects the config file. When empty, config.json in dataDir is used
// if it exists. An explicitly named file must exist.
func LoadConfig(dataDir, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("UNSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = ConfigPath(dataDir)
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if explicit || !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.InvalidConfig(err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("extract.mode", d.Extract.Mode)
	v.SetDefault("extract.tool", d.Extract.Tool)
	v.SetDefault("extract.args", d.Extract.Args)
	v.SetDefault("extract.overwrite", d.Extract.Overwrite)
	v.SetDefault("extract.workdir", d.Extract.WorkDir)
	v.SetDefault("extract.lock_timeout", d.Extract.LockTimeout)

	v.SetDefault("security.max_extracted_size_bytes", d.Security.MaxExtractedSizeBytes)
	v.SetDefault("security.max_file_count", d.Security.MaxFileCount)
	v.SetDefault("security.max_compression_ratio", d.Security.MaxCompressionRatio)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// Validate rejects configurations the driver cannot run with.
func (c *Config) Validate() error {
	switch c.Extract.Mode {
	case ModeTool:
		if strings.TrimSpace(c.Extract.Tool) == "" {
			return errors.InvalidConfig("extract.tool is required in tool mode")
		}
	case ModeNative:
	default:
		return errors.InvalidConfig(fmt.Sprintf("extract.mode must be %q or %q, got %q", ModeTool, ModeNative, c.Extract.Mode))
	}

	if c.Extract.WorkDir == "" {
		return errors.InvalidConfig("extract.workdir cannot be empty")
	}
	if c.Extract.LockTimeout <= 0 {
		return errors.InvalidConfig("extract.lock_timeout must be positive")
	}
	if c.Security.MaxFileCount <= 0 || c.Security.MaxCompressionRatio <= 0 || c.Security.MaxExtractedSizeBytes == 0 {
		return errors.InvalidConfig("security limits must be positive")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return errors.InvalidConfig(fmt.Sprintf("log.format must be \"console\" or \"json\", got %q", c.Log.Format))
	}

	return nil
}

// ToSecurityLimits converts the config to security.Limits.
func (c *Config) ToSecurityLimits() security.Limits {
	return security.Limits{
		MaxExtractedSize:    c.Security.MaxExtractedSizeBytes,
		MaxFileCount:        c.Security.MaxFileCount,
		MaxCompressionRatio: c.Security.MaxCompressionRatio,
	}
}
