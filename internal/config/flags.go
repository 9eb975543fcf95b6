package config

import (
	"flag"
	"strings"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	ConfigPath  string
	Debug       bool
	LogFile     string
	Endian      string
	OutputDir   string
	Format      string
	Directories listFlag
	Archives    listFlag
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	fs.StringVar(&f.Endian, "endian", "", "Output byte order: little or big")
	fs.StringVar(&f.OutputDir, "o", "", "Output directory")
	fs.StringVar(&f.Format, "format", "", "Export format: obj, gltf or glb")
	fs.Var(&f.Directories, "dir", "Mount a data directory (repeatable)")
	fs.Var(&f.Archives, "archive", "Mount a .tab archive (repeatable)")
}

// applyFlags applies CLI flag overrides to the config. Mounts given on the
// command line are appended after the configured ones so they take
// precedence.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Endian != "" {
		cfg.Codec.Endian = f.Endian
	}
	if f.OutputDir != "" {
		cfg.Export.OutputDir = f.OutputDir
	}
	if f.Format != "" {
		cfg.Export.Format = f.Format
	}
	cfg.Data.Directories = append(cfg.Data.Directories, f.Directories...)
	cfg.Data.Archives = append(cfg.Data.Archives, f.Archives...)
}
