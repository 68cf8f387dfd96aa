// Package visual builds displayable Media3D visuals straight from asset
// files and can rebuild them when the file changes.
package visual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"assimp-media3d/internal/convert"
	"assimp-media3d/internal/importer"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"

	"github.com/fsnotify/fsnotify"
)

// Config describes one visual. It is passed by value and never modified.
type Config struct {
	// Path is the asset file.
	Path string
	// FormatHint overrides the extension of Path when set.
	FormatHint string
	// Steps are the post-processing steps run after import.
	Steps scene.PostProcess
	// Convert configures the conversion. An empty ModelDir defaults to
	// the directory of Path.
	Convert convert.Options
	Logger  *slog.Logger
}

func (cfg Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// Build imports and converts the file named by cfg. A file in a format
// no importer supports is logged and yields a nil visual with no error.
func Build(ctx context.Context, cfg Config) (*media3d.ModelVisual3D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := cfg.logger()

	ictx := importer.NewContext(importer.Options{
		Triangulator: cfg.Convert.Triangulator,
		Logger:       log,
	})
	defer ictx.Release()

	var (
		sc  *scene.Scene
		err error
	)
	if cfg.FormatHint != "" {
		sc, err = importHinted(ictx, cfg)
	} else {
		sc, err = ictx.ImportFile(cfg.Path, cfg.Steps)
	}
	if errors.Is(err, importer.ErrUnsupportedFormat) {
		log.Warn("unsupported model format", "path", cfg.Path, "err", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := cfg.Convert
	if opts.ModelDir == "" {
		opts.ModelDir = filepath.Dir(cfg.Path)
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	res, err := convert.New(opts).Convert(sc)
	if err != nil {
		return nil, fmt.Errorf("visual: %s: %w", cfg.Path, err)
	}
	return &media3d.ModelVisual3D{Name: res.Root.Name, Content: res.Root}, nil
}

func importHinted(ictx *importer.Context, cfg Config) (*scene.Scene, error) {
	if !ictx.Supports(cfg.FormatHint) {
		return nil, fmt.Errorf("%w: %q", importer.ErrUnsupportedFormat, cfg.FormatHint)
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("visual: open %s: %w", cfg.Path, err)
	}
	defer f.Close()
	return ictx.ImportReader(f, cfg.FormatHint, filepath.Dir(cfg.Path), cfg.Steps)
}

// Debounce is how long Watch waits for writes to settle before rebuilding.
var Debounce = 100 * time.Millisecond

// Watch builds the visual, passes it to fn, and rebuilds it whenever the
// file is written or replaced, until ctx ends. Build errors go to fn;
// Watch itself returns only on watcher failure or when ctx is done.
func Watch(ctx context.Context, cfg Config, fn func(*media3d.ModelVisual3D, error)) error {
	log := cfg.logger()
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return fmt.Errorf("visual: %s: %w", cfg.Path, err)
	}
	cfg.Path = path

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("visual: watcher: %w", err)
	}
	defer w.Close()
	// Editors often replace files, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("visual: watch %s: %w", filepath.Dir(path), err)
	}

	fn(Build(ctx, cfg))

	timer := time.NewTimer(Debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("model changed", "path", path, "op", ev.Op.String())
			timer.Reset(Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("visual: watch %s: %w", path, err)
		case <-timer.C:
			fn(Build(ctx, cfg))
		}
	}
}
