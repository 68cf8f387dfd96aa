package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"assimp-media3d/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFormats(t *testing.T) {
	files := map[string]string{
		"cfg.json": `{"input_dir": "models", "format": "gltf", "post_process": ["triangulate"], "workers": 3}`,
		"cfg.toml": "input_dir = \"models\"\nformat = \"gltf\"\npost_process = [\"triangulate\"]\nworkers = 3\n",
		"cfg.yaml": "input_dir: models\nformat: gltf\npost_process: [triangulate]\nworkers: 3\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, name, content)
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "models", cfg.InputDir)
			assert.Equal(t, "gltf", cfg.Format)
			assert.Equal(t, []string{"triangulate"}, cfg.PostProcess)
			assert.Equal(t, 3, cfg.Workers)
			assert.Equal(t, filepath.Dir(path), cfg.BaseDir)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "cfg.ini", "x=1"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cfg.json", "{"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	base := t.TempDir()
	cfg := Config{BaseDir: base, InputDir: "in"}
	require.NoError(t, cfg.Resolve(Flags{}))

	assert.Equal(t, filepath.Join(base, "in"), cfg.InputDir)
	assert.Equal(t, filepath.Join(base, "in", "converted"), cfg.OutputDir)
	assert.Equal(t, "glb", cfg.Format)
	assert.Equal(t, ".glb", cfg.OutputExt())
	assert.Equal(t, DefaultPostProcess, cfg.PostProcess)
	assert.Equal(t, 256, cfg.PreviewSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)

	steps, err := cfg.Steps()
	require.NoError(t, err)
	assert.True(t, steps.Has(scene.ProcessValidateDataStructure|scene.ProcessGenSmoothNormals))
}

func TestResolveFlagsOverride(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "elsewhere")
	cfg := Config{BaseDir: base, InputDir: "in", Format: "glb", Workers: 8}
	require.NoError(t, cfg.Resolve(Flags{
		OutputDir:   out,
		Format:      ".STL",
		PostProcess: "triangulate,flip-uvs",
		Preview:     true,
		Workers:     2,
	}))

	assert.Equal(t, out, cfg.OutputDir)
	assert.Equal(t, "stl", cfg.Format)
	assert.True(t, cfg.Preview)
	assert.Equal(t, 2, cfg.Workers)
	steps, err := cfg.Steps()
	require.NoError(t, err)
	assert.Equal(t, scene.ProcessTriangulate|scene.ProcessFlipUVs, steps)
}

func TestResolveExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := Config{TexturesDir: "~/textures"}
	require.NoError(t, cfg.Resolve(Flags{}))
	assert.Equal(t, filepath.Join(home, "textures"), cfg.TexturesDir)
}

func TestResolveRejectsUnknownStep(t *testing.T) {
	cfg := Config{BaseDir: t.TempDir()}
	assert.Error(t, cfg.Resolve(Flags{PostProcess: "validate,explode"}))
}
