package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"assimp-media3d/internal/batch"
	"assimp-media3d/internal/config"
	"assimp-media3d/internal/convert"
	"assimp-media3d/internal/exporter"
	"assimp-media3d/internal/importer"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/texture"
	"assimp-media3d/internal/visual"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json, .toml or .yaml config file")
	inputDir := flag.String("input", "", "Directory scanned for model files (default: config dir)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/converted)")
	texturesDir := flag.String("textures", "", "Directory searched first for texture files")
	format := flag.String("format", "", "Output format: glb, gltf or stl (default: glb)")
	steps := flag.String("pp", "", "Comma separated post-process steps")
	preview := flag.Bool("preview", false, "Also write a WebP preview per model")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	testN := flag.Int("test", 0, "Convert only the first N files")
	watch := flag.String("watch", "", "Convert this one file again whenever it changes")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		InputDir:    *inputDir,
		OutputDir:   *outputDir,
		TexturesDir: *texturesDir,
		Format:      *format,
		PostProcess: *steps,
		Preview:     *preview,
		Workers:     *workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !supportedOutput(cfg.OutputExt()) {
		fmt.Fprintf(os.Stderr, "Error: unsupported output format %q (want one of %s)\n",
			cfg.Format, strings.Join(exporter.Formats, ", "))
		os.Exit(1)
	}
	pp, _ := cfg.Steps()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watch != "" {
		if err := watchFile(ctx, cfg, *watch, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Find input files
	imp := importer.NewContext(importer.Options{Logger: log})
	exts := imp.Extensions()
	imp.Release()
	files, err := batch.Discover(cfg.InputDir, exts, cfg.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(files) {
		files = files[:*testN]
	}

	if len(files) == 0 {
		fmt.Printf("No model files (%s) in %s.\n", strings.Join(exts, " "), cfg.InputDir)
		os.Exit(0)
	}

	if cfg.TexturesDir != "" {
		fmt.Printf("Textures: %d indexed in %s\n", texture.BuildIndex(cfg.TexturesDir).Len(), cfg.TexturesDir)
	}

	fmt.Printf("Model conversion → %s\n", cfg.Format)
	fmt.Printf("Files: %d, Workers: %d, Post-process: %s\n", len(files), cfg.Workers, pp)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(ctx, batch.Config{
		InputDir:            cfg.InputDir,
		OutputDir:           cfg.OutputDir,
		TexturesDir:         cfg.TexturesDir,
		Format:              cfg.Format,
		Steps:               pp,
		SimpleTriangulation: cfg.SimpleTriangulation,
		Preview:             cfg.Preview,
		PreviewSize:         cfg.PreviewSize,
		Supersample:         cfg.Supersample,
		Workers:             cfg.Workers,
		Logger:              log,
		Progress:            os.Stdout,
	}, files)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, triangles := 0, 0
	var failed []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			triangles += r.Triangles
		} else {
			failed = append(failed, r)
		}
	}

	fmt.Printf("Converted: %d/%d (%d triangles)\n", success, len(files), triangles)

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(len(failed), 20)
		for _, r := range failed[:limit] {
			fmt.Printf("  %s: %s\n", r.Input, r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}

func supportedOutput(ext string) bool {
	for _, f := range exporter.Formats {
		if f == ext {
			return true
		}
	}
	return false
}

// watchFile re-exports one model every time it changes, until interrupted.
func watchFile(ctx context.Context, cfg config.Config, path string, log *slog.Logger) error {
	pp, _ := cfg.Steps()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(cfg.OutputDir, stem+cfg.OutputExt())
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	fmt.Printf("Watching %s → %s (Ctrl-C to stop)\n", path, out)
	return visual.Watch(ctx, visual.Config{
		Path:  path,
		Steps: pp,
		Convert: convert.Options{
			TexturesDir:            cfg.TexturesDir,
			UseSimpleTriangulation: cfg.SimpleTriangulation,
			Logger:                 log,
		},
		Logger: log,
	}, func(v *media3d.ModelVisual3D, err error) {
		if err == nil && v == nil {
			err = errors.New("unsupported format")
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", time.Now().Format(time.TimeOnly), err)
			return
		}
		sc, err := exporter.Export(v, exporter.Options{Logger: log})
		if err == nil {
			err = exporter.WriteFile(out, sc)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", time.Now().Format(time.TimeOnly), err)
			return
		}
		fmt.Printf("%s: wrote %s (%d meshes)\n", time.Now().Format(time.TimeOnly), out, len(sc.Meshes))
	})
}
