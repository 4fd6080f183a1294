package bp

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the file options, for tools that keep reader
// settings in a file:
//
//	mmap: true
//	verify_checksums: true
//	coalesce_gap: 65536
//	log_level: debug
type Config struct {
	Mmap            bool   `yaml:"mmap"`
	VerifyChecksums bool   `yaml:"verify_checksums"`
	CoalesceGap     *int64 `yaml:"coalesce_gap"`
	LogLevel        string `yaml:"log_level"`
}

// DefaultConfig returns the settings Open uses when given no options.
func DefaultConfig() Config {
	gap := int64(DefaultCoalesceGap)
	return Config{CoalesceGap: &gap, LogLevel: "info"}
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return cfg, err
	}
	if cfg.CoalesceGap != nil && *cfg.CoalesceGap < 0 {
		return cfg, fmt.Errorf("config %s: coalesce_gap must not be negative", path)
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("config: %w", err)
	}
	return lvl, nil
}

// Options converts the config into file options. logger may be nil.
func (c Config) Options(logger *zap.Logger) []FileOption {
	opts := []FileOption{
		WithMmap(c.Mmap),
		WithChecksums(c.VerifyChecksums),
		WithLogger(logger),
	}
	if c.CoalesceGap != nil {
		opts = append(opts, WithCoalesceGap(*c.CoalesceGap))
	}
	return opts
}
