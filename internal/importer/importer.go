// Package importer reads 3D asset files into scene graphs and runs the
// requested post-processing on them.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"assimp-media3d/internal/geom"
	"assimp-media3d/internal/postprocess"
	"assimp-media3d/internal/scene"
)

// ErrUnsupportedFormat is returned for file types no importer handles.
var ErrUnsupportedFormat = errors.New("importer: unsupported format")

// Importer reads one family of file formats.
type Importer interface {
	// Extensions lists the lower-case extensions handled, with dot.
	Extensions() []string
	// Read parses r. dir is the directory of the source file and is
	// used to open side files such as material libraries or buffers.
	Read(r io.Reader, dir string) (*scene.Scene, error)
}

// Options configures a Context.
type Options struct {
	// Triangulator is used by the triangulate post-process step.
	Triangulator geom.Triangulator
	Logger       *slog.Logger
}

// Context holds the registered importers. It is not safe for concurrent
// use and must not be used after Release.
type Context struct {
	importers map[string]Importer
	opts      Options
	log       *slog.Logger
	released  bool
}

// NewContext returns a context with the OBJ, STL and glTF importers
// registered.
func NewContext(opts Options) *Context {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Context{importers: make(map[string]Importer), opts: opts, log: log}
	c.Register(&OBJ{Logger: log})
	c.Register(&STL{})
	c.Register(&GLTF{})
	return c
}

// Register adds imp, replacing earlier importers for its extensions.
func (c *Context) Register(imp Importer) {
	c.check()
	for _, ext := range imp.Extensions() {
		c.importers[normalizeExt(ext)] = imp
	}
}

// Supports reports whether a file with extension ext can be imported.
func (c *Context) Supports(ext string) bool {
	c.check()
	_, ok := c.importers[normalizeExt(ext)]
	return ok
}

// Extensions returns the supported extensions, sorted.
func (c *Context) Extensions() []string {
	c.check()
	out := make([]string, 0, len(c.importers))
	for ext := range c.importers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ImportFile reads the file at path and applies steps. The file is
// closed before ImportFile returns.
func (c *Context) ImportFile(path string, steps scene.PostProcess) (*scene.Scene, error) {
	c.check()
	imp, err := c.lookup(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()

	sc, err := imp.Read(f, filepath.Dir(path))
	if err != nil {
		c.log.Error("import failed", "path", path, "err", err)
		return nil, fmt.Errorf("importer: read %s: %w", path, err)
	}
	if sc.Root.Name == "" {
		sc.Root.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c.finish(sc, steps)
}

// ImportReader reads a stream whose format is given by hint, an
// extension with or without the dot. dir resolves side files.
func (c *Context) ImportReader(r io.Reader, hint, dir string, steps scene.PostProcess) (*scene.Scene, error) {
	c.check()
	imp, err := c.lookup(hint)
	if err != nil {
		return nil, err
	}
	sc, err := imp.Read(r, dir)
	if err != nil {
		c.log.Error("import failed", "hint", hint, "err", err)
		return nil, fmt.Errorf("importer: read %s stream: %w", hint, err)
	}
	return c.finish(sc, steps)
}

// Release drops the registered importers. Any later call panics.
func (c *Context) Release() {
	c.check()
	c.importers = nil
	c.released = true
}

func (c *Context) finish(sc *scene.Scene, steps scene.PostProcess) (*scene.Scene, error) {
	err := postprocess.Apply(sc, steps, postprocess.Options{
		Triangulator: c.opts.Triangulator,
		Logger:       c.log,
	})
	if err != nil {
		return nil, fmt.Errorf("importer: post-process: %w", err)
	}
	c.log.Debug("imported",
		"meshes", len(sc.Meshes),
		"materials", len(sc.Materials),
		"nodes", sc.Root.Count(),
		"steps", sc.Applied.String(),
	)
	return sc, nil
}

func (c *Context) lookup(ext string) (Importer, error) {
	ext = normalizeExt(ext)
	imp, ok := c.importers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return imp, nil
}

func (c *Context) check() {
	if c.released {
		panic("importer: context used after Release")
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// defaultMaterial is the grey material given to meshes whose format
// carries none.
func defaultMaterial() *scene.Material {
	m := &scene.Material{}
	m.SetString(scene.KeyName, "DefaultMaterial")
	m.SetColor3(scene.KeyColorDiffuse, scene.Color4{R: 0.6, G: 0.6, B: 0.6})
	return m
}
