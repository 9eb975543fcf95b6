// rbmtool is a CLI utility for inspecting, converting and exporting RBM
// render block models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/rbmkit/internal/config"
	"github.com/Faultbox/rbmkit/internal/logger"
	"github.com/Faultbox/rbmkit/internal/vfs"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "verify":
		err = cmdVerify(args)
	case "convert":
		err = cmdConvert(args)
	case "export":
		err = cmdExport(args)
	case "list", "ls":
		err = cmdList(args)
	case "cat":
		err = cmdCat(args)
	case "pack":
		err = cmdPack(args)
	case "watch":
		err = cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rbmtool - RBM render block model utility

Usage:
  rbmtool <command> [options]

Commands:
  info <model>                   Show header and per-block summary
  verify <model>...              Decode, re-encode and byte-compare
  convert <model> <output>       Re-encode (use -endian to change byte order)
  export <model> [name]          Write glTF, GLB or Wavefront OBJ/MTL to the output directory
  list [-ext .rbm]               List mounted directory files and archive entries
  cat <path>                     Write a mounted file to stdout
  pack <dir> <output.tab>        Build a .tab/.arc archive from a directory
  watch [dir]...                 Re-validate models as they change

Shared options:
  -config <file>   Config file (.yaml or .toml)
  -dir <dir>       Mount a data directory (repeatable)
  -archive <tab>   Mount a .tab archive (repeatable)
  -endian <order>  Output byte order: little or big
  -o <dir>         Output directory
  -format <fmt>    Export format: obj, gltf or glb
  -log <file>      Write logs to this file
  -debug           Enable debug logging

Examples:
  rbmtool info models/car.rbm
  rbmtool verify -dir ./data vehicles/car.rbm
  rbmtool convert -endian big car.rbm car_be.rbm
  rbmtool export -o ./out car.rbm
  rbmtool export -format glb -o ./out char.rbm
  rbmtool watch -dir ./data`)
}

// env is the state every subcommand starts from.
type env struct {
	cfg *config.Config
	fs  *vfs.FS
	log *zap.Logger
}

// setup parses the shared flags plus any registered by extra, loads the
// config, initializes logging and mounts the configured data sources.
func setup(name string, args []string, extra func(*flag.FlagSet)) (*env, []string, error) {
	fset := flag.NewFlagSet(name, flag.ExitOnError)
	var flags config.Flags
	flags.Register(fset)
	if extra != nil {
		extra(fset)
	}
	if err := fset.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	log := logger.Named(name)

	fs := vfs.New(logger.Named("vfs"))
	for _, dir := range cfg.Data.Directories {
		fs.MountDirectory(dir)
	}
	for _, tab := range cfg.Data.Archives {
		if err := fs.MountArchive(tab); err != nil {
			fs.Close()
			return nil, nil, err
		}
	}
	return &env{cfg: cfg, fs: fs, log: log}, fset.Args(), nil
}

func (e *env) close() {
	if err := e.fs.Close(); err != nil {
		e.log.Warn("closing mounts", zap.Error(err))
	}
}

// readModelBytes reads a model argument. An existing file on disk wins;
// anything else is looked up in the mounts.
func (e *env) readModelBytes(arg string) ([]byte, error) {
	if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
		return os.ReadFile(arg)
	}
	return e.fs.Read(arg)
}

func (e *env) loadModel(arg string) (*rbm.Model, error) {
	data, err := e.readModelBytes(arg)
	if err != nil {
		return nil, err
	}
	m, err := rbm.Decode(data)
	if err != nil {
		e.log.Warn("model rejected",
			zap.String("path", arg),
			zap.String("kind", rbm.ErrKind(err)),
			zap.Error(err))
		return nil, fmt.Errorf("decoding %s: %w", arg, err)
	}
	return m, nil
}

// modelName is the base name of a model path without its extension.
func modelName(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return base[:len(base)-len(filepath.Ext(base))]
}
