// Package config handles rbmtool configuration loading and management.
package config

import (
	"fmt"
	"strings"
)

// Config holds all tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data" toml:"data"`
	Codec   CodecConfig   `yaml:"codec" toml:"codec"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// DataConfig lists the mounts searched for asset paths. Later entries
// shadow earlier ones.
type DataConfig struct {
	Directories []string `yaml:"directories" toml:"directories"`
	Archives    []string `yaml:"archives" toml:"archives"` // .tab index paths
}

// CodecConfig holds encoder settings.
type CodecConfig struct {
	// Endian is "" to keep the byte order of the input, "little" or "big".
	Endian string `yaml:"endian" toml:"endian"`
}

// ExportConfig holds mesh export settings.
type ExportConfig struct {
	// Format is "obj", "gltf" (JSON with an embedded buffer) or "glb".
	Format         string `yaml:"format" toml:"format"`
	OutputDir      string `yaml:"output_dir" toml:"output_dir"`
	WriteMaterials bool   `yaml:"write_materials" toml:"write_materials"`
	FlipV          bool   `yaml:"flip_v" toml:"flip_v"`
}

// WatchConfig holds asset watcher settings.
type WatchConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions"`
	DebounceMS int      `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Directories: []string{},
			Archives:    []string{},
		},
		Codec: CodecConfig{
			Endian: "",
		},
		Export: ExportConfig{
			Format:         "obj",
			OutputDir:      ".",
			WriteMaterials: true,
			FlipV:          true,
		},
		Watch: WatchConfig{
			Extensions: []string{".rbm"},
			DebounceMS: 200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Codec.Endian {
	case "", "little", "big":
	default:
		return fmt.Errorf("codec.endian: unknown byte order %q", c.Codec.Endian)
	}
	switch c.Export.Format {
	case "obj", "gltf", "glb":
	default:
		return fmt.Errorf("export.format: unknown format %q", c.Export.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if len(c.Watch.Extensions) == 0 {
		return fmt.Errorf("watch.extensions: at least one extension required")
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("watch.extensions: %q must start with a dot", ext)
		}
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms: must not be negative")
	}
	return nil
}
