package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/protocol"
)

// Output formats understood by the render package.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTree = "tree"
)

var formats = []string{FormatText, FormatJSON, FormatYAML, FormatTree}

// Config is the resolved bitsctl configuration. An empty LogLevel leaves the
// level chosen by the logging profile and BITSCTL_LOG_LEVEL in place.
type Config struct {
	Decode   protocol.Limits
	Format   string
	Workers  int
	LogLevel string
}

type fileConfig struct {
	Decode struct {
		MaxBytes int `toml:"max_bytes"`
		MaxDepth int `toml:"max_depth"`
	} `toml:"decode"`
	Output struct {
		Format string `toml:"format"`
	} `toml:"output"`
	Batch struct {
		Workers int `toml:"workers"`
	} `toml:"batch"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func Default() Config {
	return Config{
		Decode:   protocol.DefaultLimits(),
		Format:   FormatText,
		Workers:  4,
	}
}

// Load reads a TOML file and applies every key it defines on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("decode", "max_bytes") {
		cfg.Decode.MaxBytes = raw.Decode.MaxBytes
	}
	if meta.IsDefined("decode", "max_depth") {
		cfg.Decode.MaxDepth = raw.Decode.MaxDepth
	}
	if meta.IsDefined("output", "format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Output.Format))
	}
	if meta.IsDefined("batch", "workers") {
		cfg.Workers = raw.Batch.Workers
	}
	if meta.IsDefined("log", "level") {
		cfg.LogLevel = strings.TrimSpace(raw.Log.Level)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Decode.MaxBytes < 0 {
		return fmt.Errorf("decode.max_bytes must not be negative")
	}
	if cfg.Decode.MaxDepth < 0 {
		return fmt.Errorf("decode.max_depth must not be negative")
	}
	if err := ValidateFormat(cfg.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1")
	}
	if cfg.LogLevel == "" {
		return nil
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("log.level %q is not a level", cfg.LogLevel)
	}
	return nil
}

func ValidateFormat(format string) error {
	for _, f := range formats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(formats, ", "))
}
