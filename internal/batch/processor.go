// Package batch converts a directory of model files with a worker pool.
package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"assimp-media3d/internal/convert"
	"assimp-media3d/internal/exporter"
	"assimp-media3d/internal/importer"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/raster"
	"assimp-media3d/internal/scene"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds the settings shared by all workers of a batch run.
type Config struct {
	InputDir    string
	OutputDir   string
	TexturesDir string
	// Format is the output extension, with or without the dot.
	Format              string
	Steps               scene.PostProcess
	SimpleTriangulation bool

	Preview     bool
	PreviewSize int
	Supersample int

	Workers int
	Logger  *slog.Logger
	// Progress receives a progress line every two seconds. Nil disables it.
	Progress io.Writer
}

// Result holds the outcome of processing one file. Paths are relative to
// the input and output directories.
type Result struct {
	Input     string
	Output    string
	Preview   string
	Meshes    int
	Triangles int
	Success   bool
	Error     string
}

// Discover lists the files under dir whose extension is in exts, sorted.
// skip, when inside dir, is not descended into.
func Discover(dir string, exts []string, skip string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}
	skip = filepath.Clean(skip)

	var files []string
	err := filepath.WalkDir(dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			if path != dir && filepath.Clean(path) == skip {
				return filepath.SkipDir
			}
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Run converts files (relative to cfg.InputDir) using cfg.Workers
// goroutines. Each worker owns its importer context and converter.
// Files not started before ctx ends are reported as failed.
func Run(ctx context.Context, cfg Config, files []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !strings.HasPrefix(cfg.Format, ".") {
		cfg.Format = "." + cfg.Format
	}

	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	fileChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wk := newWorker(cfg)
			defer wk.imp.Release()
			for idx := range fileChan {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Input: files[idx], Error: err.Error()}
				} else {
					results[idx] = wk.process(files[idx])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)
	return results
}

type worker struct {
	cfg  Config
	log  *slog.Logger
	imp  *importer.Context
	conv convert.Options
}

func newWorker(cfg Config) *worker {
	return &worker{
		cfg: cfg,
		log: cfg.Logger,
		imp: importer.NewContext(importer.Options{Logger: cfg.Logger}),
		conv: convert.Options{
			TexturesDir:            cfg.TexturesDir,
			UseSimpleTriangulation: cfg.SimpleTriangulation,
			Logger:                 cfg.Logger,
		},
	}
}

func (w *worker) process(rel string) Result {
	res := Result{Input: rel}
	fail := func(err error) Result {
		w.log.Warn("conversion failed", "file", rel, "err", err)
		res.Error = err.Error()
		return res
	}

	src := filepath.Join(w.cfg.InputDir, rel)
	sc, err := w.imp.ImportFile(src, w.cfg.Steps)
	if err != nil {
		return fail(err)
	}
	res.Meshes = len(sc.Meshes)

	opts := w.conv
	opts.ModelDir = filepath.Dir(src)
	conv, err := convert.New(opts).Convert(sc)
	if err != nil {
		return fail(err)
	}
	for _, g := range conv.Geometries {
		if g != nil {
			res.Triangles += g.TriangleCount()
		}
	}

	visual := &media3d.ModelVisual3D{Name: conv.Root.Name, Content: conv.Root}
	out, err := exporter.Export(visual, exporter.Options{Camera: conv.Camera, Logger: w.log})
	if err != nil {
		return fail(err)
	}

	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	res.Output = stem + w.cfg.Format
	outPath := filepath.Join(w.cfg.OutputDir, res.Output)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fail(err)
	}
	if err := exporter.WriteFile(outPath, out); err != nil {
		return fail(err)
	}

	if w.cfg.Preview {
		res.Preview = stem + ".webp"
		img := raster.Render(conv.Root, raster.Options{
			Size:        w.cfg.PreviewSize,
			Supersample: w.cfg.Supersample,
			Margin:      w.cfg.PreviewSize / 16,
		})
		if err := writeWebP(filepath.Join(w.cfg.OutputDir, res.Preview), img); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	return res
}

func writeWebP(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("webp encode: %w", err)
	}
	return f.Close()
}
