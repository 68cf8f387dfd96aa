package visual

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"assimp-media3d/internal/media3d"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
const quadOBJ = "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"

func writeModel(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func triangles(v *media3d.ModelVisual3D) int {
	n := 0
	media3d.WalkModels(v.Content, mgl64.Ident4(), func(m media3d.Model3D, _ mgl64.Mat4) {
		if g, ok := m.(*media3d.GeometryModel3D); ok {
			n += g.Geometry.TriangleCount()
		}
	})
	return n
}

func TestBuild(t *testing.T) {
	path := writeModel(t, t.TempDir(), "tri.obj", triangleOBJ)
	v, err := Build(context.Background(), Config{Path: path, Logger: quiet})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "tri", v.Name)
	assert.Equal(t, 1, triangles(v))
}

func TestBuildFormatHint(t *testing.T) {
	path := writeModel(t, t.TempDir(), "model.dat", quadOBJ)
	v, err := Build(context.Background(), Config{Path: path, FormatHint: "obj", Logger: quiet})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 2, triangles(v))
}

func TestBuildUnsupportedFormat(t *testing.T) {
	path := writeModel(t, t.TempDir(), "model.fbx", "binary")
	v, err := Build(context.Background(), Config{Path: path, Logger: quiet})
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = Build(context.Background(), Config{Path: path, FormatHint: "3ds", Logger: quiet})
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestBuildCancelled(t *testing.T) {
	path := writeModel(t, t.TempDir(), "tri.obj", triangleOBJ)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, Config{Path: path, Logger: quiet})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatchRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "live.obj", triangleOBJ)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	builds := make(chan *media3d.ModelVisual3D, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{Path: path, Logger: quiet}, func(v *media3d.ModelVisual3D, err error) {
			if err != nil {
				v = nil
			}
			select {
			case builds <- v:
			default:
			}
		})
	}()

	select {
	case v := <-builds:
		require.NotNil(t, v)
		assert.Equal(t, 1, triangles(v))
	case <-time.After(5 * time.Second):
		t.Fatal("no initial build")
	}

	writeModel(t, dir, "other.obj", quadOBJ)
	writeModel(t, dir, "live.obj", quadOBJ)
	select {
	case v := <-builds:
		require.NotNil(t, v)
		assert.Equal(t, 2, triangles(v))
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
