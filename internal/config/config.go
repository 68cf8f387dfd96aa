// Package config loads conversion settings from JSON, TOML or YAML files
// and merges them with command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"assimp-media3d/internal/scene"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and conversion settings.
type Config struct {
	// Paths. Relative paths are resolved against BaseDir, which defaults
	// to the directory of the config file.
	BaseDir     string `json:"base_dir" toml:"base_dir" yaml:"base_dir"`
	InputDir    string `json:"input_dir" toml:"input_dir" yaml:"input_dir"`
	OutputDir   string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	TexturesDir string `json:"textures_dir" toml:"textures_dir" yaml:"textures_dir"`

	// Conversion settings
	Format              string   `json:"format" toml:"format" yaml:"format"`
	PostProcess         []string `json:"post_process" toml:"post_process" yaml:"post_process"`
	SimpleTriangulation bool     `json:"simple_triangulation" toml:"simple_triangulation" yaml:"simple_triangulation"`

	// Preview settings
	Preview     bool `json:"preview" toml:"preview" yaml:"preview"`
	PreviewSize int  `json:"preview_size" toml:"preview_size" yaml:"preview_size"`
	Supersample int  `json:"supersample" toml:"supersample" yaml:"supersample"`

	Workers int `json:"workers" toml:"workers" yaml:"workers"`
}

// DefaultPostProcess is used when the config names no steps.
var DefaultPostProcess = []string{"validate", "gen-smooth-normals"}

// Load reads a config file; the format follows the extension (.json,
// .toml, .yaml or .yml). Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unknown format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the config untouched.
type Flags struct {
	InputDir    string
	OutputDir   string
	TexturesDir string
	Format      string
	PostProcess string // comma separated step names
	Preview     bool
	Workers     int
}

// Resolve applies flags, expands and absolutizes paths and fills in
// defaults for everything still unset.
func (c *Config) Resolve(flags Flags) error {
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TexturesDir != "" {
		c.TexturesDir = flags.TexturesDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.PostProcess != "" {
		c.PostProcess = strings.Split(flags.PostProcess, ",")
	}
	if flags.Preview {
		c.Preview = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	var err error
	for _, p := range []*string{&c.BaseDir, &c.InputDir, &c.OutputDir, &c.TexturesDir} {
		if *p, err = homedir.Expand(*p); err != nil {
			return fmt.Errorf("config: expand %s: %w", *p, err)
		}
	}
	for _, p := range []*string{&c.InputDir, &c.OutputDir, &c.TexturesDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.BaseDir, *p)
		}
	}

	if c.InputDir == "" {
		c.InputDir = c.BaseDir
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "converted")
	}

	c.Format = strings.TrimPrefix(strings.ToLower(c.Format), ".")
	if c.Format == "" {
		c.Format = "glb"
	}
	if len(c.PostProcess) == 0 {
		c.PostProcess = append([]string(nil), DefaultPostProcess...)
	}
	if _, err := c.Steps(); err != nil {
		return err
	}

	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Steps parses PostProcess into scene flags.
func (c *Config) Steps() (scene.PostProcess, error) {
	p, err := scene.ParsePostProcess(c.PostProcess)
	if err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// OutputExt is the output file extension with its dot.
func (c *Config) OutputExt() string {
	return "." + c.Format
}
