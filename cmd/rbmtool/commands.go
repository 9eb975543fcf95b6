package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/rbmkit/internal/config"
	"github.com/Faultbox/rbmkit/internal/export"
	"github.com/Faultbox/rbmkit/internal/logger"
	"github.com/Faultbox/rbmkit/internal/mesh"
	"github.com/Faultbox/rbmkit/internal/vfs"
	"github.com/Faultbox/rbmkit/internal/watch"
	"github.com/Faultbox/rbmkit/pkg/archive"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

func cmdInfo(args []string) error {
	e, rest, err := setup("info", args, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if len(rest) < 1 {
		return fmt.Errorf("usage: rbmtool info <model>")
	}
	m, err := e.loadModel(rest[0])
	if err != nil {
		return err
	}

	fmt.Printf("Model:    %s\n", rest[0])
	fmt.Printf("Endian:   %s\n", m.Endian)
	fmt.Printf("Version:  %s\n", m.Version)
	fmt.Printf("Bounds:   (%g, %g, %g) - (%g, %g, %g)\n",
		m.Min.X, m.Min.Y, m.Min.Z, m.Max.X, m.Max.Y, m.Max.Z)
	fmt.Printf("Blocks:   %d\n", len(m.Blocks))
	fmt.Printf("Vertices: %d\n", m.VertexCount())
	fmt.Printf("Indices:  %d\n", m.IndexCount())
	fmt.Println()

	for i, b := range m.Blocks {
		mat := b.MaterialInfo()
		fmt.Printf("  [%d] %-15s %-22s verts=%-6d indices=%d\n",
			i, b.Kind(), mat.PrimitiveType, b.VertexCount(), b.IndexCount())
		for slot, tex := range mat.Textures {
			if tex != "" {
				fmt.Printf("        tex%d %s\n", slot, tex)
			}
		}
	}
	return nil
}

func cmdVerify(args []string) error {
	e, rest, err := setup("verify", args, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if len(rest) < 1 {
		return fmt.Errorf("usage: rbmtool verify <model>...")
	}

	failed := 0
	for _, arg := range rest {
		if err := verifyOne(e, arg); err != nil {
			fmt.Printf("FAIL %s: %v\n", arg, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", arg)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d models failed", failed, len(rest))
	}
	return nil
}

// verifyOne decodes a model, re-encodes it and compares the bytes.
func verifyOne(e *env, arg string) error {
	data, err := e.readModelBytes(arg)
	if err != nil {
		return err
	}
	m, err := rbm.Decode(data)
	if err != nil {
		e.log.Warn("model rejected",
			zap.String("path", arg),
			zap.String("kind", rbm.ErrKind(err)),
			zap.Error(err))
		return err
	}
	out, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("re-encoding: %w", err)
	}
	if !bytes.Equal(data, out) {
		return fmt.Errorf("re-encoded %d bytes differ from %d input bytes at offset %d",
			len(out), len(data), firstDiff(data, out))
	}
	return nil
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func cmdConvert(args []string) error {
	e, rest, err := setup("convert", args, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if len(rest) < 2 {
		return fmt.Errorf("usage: rbmtool convert [-endian little|big] <model> <output>")
	}
	m, err := e.loadModel(rest[0])
	if err != nil {
		return err
	}

	switch e.cfg.Codec.Endian {
	case "little":
		m.Endian = rbm.LittleEndian
	case "big":
		m.Endian = rbm.BigEndian
	}
	if err := m.WriteFile(rest[1]); err != nil {
		return fmt.Errorf("writing %s: %w", rest[1], err)
	}
	e.log.Info("model converted",
		zap.String("input", rest[0]),
		zap.String("output", rest[1]),
		zap.Stringer("endian", m.Endian))
	fmt.Printf("Wrote %s (%s endian)\n", rest[1], m.Endian)
	return nil
}

func cmdExport(args []string) error {
	e, rest, err := setup("export", args, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if len(rest) < 1 {
		return fmt.Errorf("usage: rbmtool export [-format obj|gltf|glb] [-o dir] <model> [name]")
	}
	src := rest[0]
	name := modelName(src)
	if len(rest) > 1 {
		name = rest[1]
	}

	m, err := e.loadModel(src)
	if err != nil {
		return err
	}
	meshes, err := mesh.FromModel(m)
	if err != nil {
		return fmt.Errorf("converting %s: %w", src, err)
	}

	opts := export.Options{
		FlipV: e.cfg.Export.FlipV,
		TexturePaths: func(m *mesh.Mesh) [rbm.TextureCount]string {
			return mesh.ResolveTextures(src, m.Material.Textures)
		},
	}
	out, err := writeExport(e.cfg.Export, name, meshes, opts)
	if err != nil {
		return err
	}
	e.log.Info("model exported",
		zap.String("input", src),
		zap.String("output", out),
		zap.String("format", e.cfg.Export.Format),
		zap.Int("blocks", len(meshes)))
	fmt.Printf("Wrote %s\n", out)
	return nil
}

// writeExport writes meshes in the configured format and returns the main
// output path.
func writeExport(cfg config.ExportConfig, name string, meshes []*mesh.Mesh, opts export.Options) (string, error) {
	switch cfg.Format {
	case "gltf", "glb":
		return export.WriteGLTFFile(cfg.OutputDir, name, meshes, cfg.Format == "glb", opts)
	case "", "obj":
		return export.WriteFiles(cfg.OutputDir, name, meshes, cfg.WriteMaterials, opts)
	default:
		return "", fmt.Errorf("unknown export format %q", cfg.Format)
	}
}

func cmdList(args []string) error {
	var ext string
	var limit int
	e, _, err := setup("list", args, func(fset *flag.FlagSet) {
		fset.StringVar(&ext, "ext", "", "Only list directory files with this extension")
		fset.IntVar(&limit, "n", 0, "Limit output to N files (0 = all)")
	})
	if err != nil {
		return err
	}
	defer e.close()

	count := 0
	emit := func(format string, a ...any) bool {
		if limit > 0 && count >= limit {
			return false
		}
		fmt.Printf(format, a...)
		count++
		return true
	}

	files, err := e.fs.Files(ext)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !emit("%s\n", f) {
			return nil
		}
	}

	for _, mount := range e.fs.Mounts() {
		if mount.Kind != vfs.MountArchive {
			continue
		}
		a, err := archive.Open(mount.Path)
		if err != nil {
			return err
		}
		for _, entry := range a.Entries() {
			if !emit("%s:%08x\t%d\t%d\n", mount.Path, entry.Hash, entry.Offset, entry.Size) {
				break
			}
		}
		a.Close()
	}
	return nil
}

func cmdCat(args []string) error {
	e, rest, err := setup("cat", args, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if len(rest) < 1 {
		return fmt.Errorf("usage: rbmtool cat <path>")
	}
	data, err := e.fs.Read(rest[0])
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func cmdPack(args []string) error {
	var alignment uint
	e, rest, err := setup("pack", args, func(fset *flag.FlagSet) {
		fset.UintVar(&alignment, "align", archive.DefaultAlignment, "Data alignment in bytes")
	})
	if err != nil {
		return err
	}
	defer e.close()

	if len(rest) < 2 {
		return fmt.Errorf("usage: rbmtool pack [-align n] <dir> <output.tab>")
	}
	root, tabPath := rest[0], rest[1]

	var files []archive.File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, archive.File{Path: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}

	if err := archive.BuildFiles(tabPath, files, uint32(alignment)); err != nil {
		return err
	}
	e.log.Info("archive built", zap.String("path", tabPath), zap.Int("files", len(files)))
	fmt.Printf("Packed %d files into %s and %s\n", len(files), tabPath, archive.DataPath(tabPath))
	return nil
}

func cmdWatch(args []string) error {
	e, rest, err := setup("watch", args, nil)
	if err != nil {
		return err
	}
	defer e.close()

	roots := rest
	if len(roots) == 0 {
		roots = e.cfg.Data.Directories
	}
	if len(roots) == 0 {
		return fmt.Errorf("usage: rbmtool watch [dir]... (or mount directories with -dir)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := watch.Options{
		Extensions: e.cfg.Watch.Extensions,
		Debounce:   time.Duration(e.cfg.Watch.DebounceMS) * time.Millisecond,
	}
	report := func(r watch.Result) {
		e.fs.Invalidate(r.Path)
		switch {
		case r.Removed:
			fmt.Printf("gone %s\n", r.Path)
		case r.Err != nil:
			fmt.Printf("FAIL %s: %s: %v\n", r.Path, rbm.ErrKind(r.Err), r.Err)
		default:
			fmt.Printf("ok   %s (%d blocks, %d vertices)\n", r.Path, len(r.Model.Blocks), r.Model.VertexCount())
		}
	}

	errc := make(chan error, len(roots))
	started := 0
	wait := func() error {
		var firstErr error
		for i, n := 0, started; i < n; i++ {
			if err := <-errc; err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, root := range roots {
		w, err := watch.New(root, opts, logger.Log, report)
		if err != nil {
			stop()
			wait()
			return err
		}
		go func() { errc <- w.Run(ctx) }()
		started++
		e.log.Info("watching", zap.String("dir", root), zap.Strings("extensions", opts.Extensions))
	}
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", strings.Join(roots, ", "))

	return wait()
}
