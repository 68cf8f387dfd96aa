package exporter

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"assimp-media3d/internal/importer"
	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func quad() *media3d.MeshGeometry3D {
	return &media3d.MeshGeometry3D{
		Positions: []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Normals:   []mathutil.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		TextureCoordinates: []mathutil.Vec2{
			{0, 1}, {1, 1}, {1, 0.25}, {0, 0},
		},
		TriangleIndices: []int{0, 1, 2, 0, 2, 3},
	}
}

func red() media3d.Material {
	return media3d.NewDiffuseMaterial(media3d.NewSolidColorBrush(media3d.Color{R: 1, A: 1}))
}

func TestExportTree(t *testing.T) {
	geo := quad()
	mat := red()
	root := &media3d.ModelVisual3D{
		Name:      "Model",
		Transform: &media3d.TranslateTransform3D{OffsetX: 1, OffsetY: 2, OffsetZ: 3},
		Content: &media3d.Model3DGroup{
			Name: "Body",
			Children: []media3d.Model3D{
				&media3d.GeometryModel3D{Name: "Left", Geometry: geo, Material: mat},
				&media3d.GeometryModel3D{Name: "Right", Geometry: geo, Material: mat},
				&media3d.GeometryModel3D{Name: "Blue", Geometry: geo, Material: media3d.NewDiffuseMaterial(
					media3d.NewSolidColorBrush(media3d.Color{B: 1, A: 1}))},
			},
		},
	}

	sc, err := Export(root, Options{Logger: quiet})
	require.NoError(t, err)

	assert.Equal(t, "Model", sc.Root.Name)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, sc.Root.Transform.Translation())
	require.Len(t, sc.Root.Children, 1)
	body := sc.Root.Children[0]
	assert.Equal(t, "Body", body.Name)
	assert.Equal(t, []int{0, 0, 1}, body.Meshes)

	require.Len(t, sc.Meshes, 2)
	require.Len(t, sc.Materials, 2)
	assert.True(t, sc.Applied.Has(scene.ProcessTriangulate))

	m := sc.Meshes[0]
	assert.Len(t, m.Faces, 2)
	assert.Equal(t, []int{0, 2, 3}, m.Faces[1].Indices)
	assert.Len(t, m.Normals, 4)
	assert.InDelta(t, 0.75, m.TextureCoords[0][2][1], 1e-12)
	assert.InDelta(t, 1.0, m.TextureCoords[0][3][1], 1e-12)

	c, _, ok := sc.Materials[0].Color(scene.KeyColorDiffuse)
	require.True(t, ok)
	assert.Equal(t, scene.Color4{R: 1, A: 1}, c)
}

func TestExportEmbedsImageAsWebP(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	brush := &media3d.ImageBrush{Image: img, TileMode: media3d.TileTile, Opacity: 1}
	mat := media3d.NewDiffuseMaterial(brush)
	root := &media3d.ModelVisual3D{
		Content: &media3d.Model3DGroup{Children: []media3d.Model3D{
			&media3d.GeometryModel3D{Geometry: quad(), Material: mat},
			&media3d.GeometryModel3D{Geometry: quad(), Material: mat, BackMaterial: mat},
		}},
	}

	sc, err := Export(root, Options{Logger: quiet})
	require.NoError(t, err)
	require.Len(t, sc.Textures, 1)
	assert.Equal(t, "webp", sc.Textures[0].FormatHint)
	assert.Equal(t, "RIFF", string(sc.Textures[0].Data[:4]))

	require.Len(t, sc.Materials, 2)
	slot, ok := sc.Materials[0].Texture(scene.TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, scene.EmbeddedRef(0), slot.Path)
	assert.Equal(t, scene.MapModeWrap, slot.MapModeU)

	_, ok = sc.Materials[0].Int(scene.KeyTwoSided)
	assert.False(t, ok)
	v, ok := sc.Materials[1].Int(scene.KeyTwoSided)
	require.True(t, ok)
	assert.EqualValues(t, 1, v)
}

func TestExportSourcedImageKeepsPath(t *testing.T) {
	mat := media3d.NewDiffuseMaterial(&media3d.ImageBrush{Source: "tex/wood.png", Opacity: 1})
	root := &media3d.ModelVisual3D{Content: &media3d.GeometryModel3D{Geometry: quad(), Material: mat}}

	sc, err := Export(root, Options{Logger: quiet})
	require.NoError(t, err)
	assert.Empty(t, sc.Textures)
	slot, ok := sc.Materials[0].Texture(scene.TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, "tex/wood.png", slot.Path)
}

func TestExportLightsAndCamera(t *testing.T) {
	root := &media3d.ModelVisual3D{
		Name: "Root",
		Content: &media3d.Model3DGroup{Children: []media3d.Model3D{
			&media3d.DirectionalLight{Name: "Sun", Color: media3d.White, Direction: mathutil.Vec3{0, -1, 0}},
			&media3d.SpotLight{
				PointLight:     media3d.PointLight{Name: "Spot", Color: media3d.White},
				Direction:      mathutil.Vec3{0, 0, -1},
				InnerConeAngle: 30,
				OuterConeAngle: 60,
			},
			&media3d.DirectionalLight{Name: "Sun", Color: media3d.White},
		}},
	}
	cam := &media3d.PerspectiveCamera{Name: "Cam", FieldOfView: 90, LookDirection: mathutil.Vec3{0, 0, -1}}

	sc, err := Export(root, Options{Camera: cam, Logger: quiet})
	require.NoError(t, err)
	require.Len(t, sc.Lights, 3)
	assert.Equal(t, "Sun", sc.Lights[0].Name)
	assert.Equal(t, "Sun_2", sc.Lights[2].Name)
	assert.Equal(t, scene.LightSpot, sc.Lights[1].Type)
	assert.InDelta(t, mathutil.Deg2Rad(60), sc.Lights[1].AngleOuterCone, 1e-12)
	assert.NotNil(t, sc.Root.Find("Sun_2"))

	require.Len(t, sc.Cameras, 1)
	assert.InDelta(t, mathutil.Deg2Rad(45), sc.Cameras[0].HorizontalFOV, 1e-12)
	assert.NotNil(t, sc.Root.Find("Cam"))
	assert.NotZero(t, sc.Flags&scene.FlagIncomplete)
}

func TestExportRejectsBrokenGeometry(t *testing.T) {
	geo := quad()
	geo.TriangleIndices = geo.TriangleIndices[:4]
	_, err := Export(&media3d.ModelVisual3D{Content: &media3d.GeometryModel3D{Geometry: geo, Material: red()}}, Options{Logger: quiet})
	assert.Error(t, err)

	_, err = Export(nil, Options{})
	assert.Error(t, err)
}

func TestWriteGLBRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	root := &media3d.ModelVisual3D{
		Name:      "Scene",
		Transform: &media3d.TranslateTransform3D{OffsetX: 5},
		Content: &media3d.GeometryModel3D{
			Name:     "Quad",
			Geometry: quad(),
			Material: media3d.NewDiffuseMaterial(&media3d.ImageBrush{Image: img, Opacity: 1}),
		},
	}
	sc, err := Export(root, Options{Logger: quiet})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.glb")
	require.NoError(t, WriteFile(path, sc))

	ctx := importer.NewContext(importer.Options{Logger: quiet})
	defer ctx.Release()
	got, err := ctx.ImportFile(path, 0)
	require.NoError(t, err)

	require.Len(t, got.Meshes, 1)
	m := got.Meshes[0]
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Faces, 2)
	assert.InDelta(t, 0.75, m.TextureCoords[0][2][1], 1e-6)

	require.Len(t, got.Root.Children, 1)
	n := got.Root.Children[0]
	assert.Equal(t, "Scene", n.Name)
	assert.InDelta(t, 5, n.Transform.Translation()[0], 1e-6)
	assert.Equal(t, []int{0}, n.Meshes)

	require.Len(t, got.Textures, 1)
	assert.Equal(t, "webp", got.Textures[0].FormatHint)
	slot, ok := got.Materials[0].Texture(scene.TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, scene.EmbeddedRef(0), slot.Path)
}

func TestWriteSTLAppliesWorldTransform(t *testing.T) {
	root := &media3d.ModelVisual3D{
		Name: "Part",
		Children: []*media3d.ModelVisual3D{{
			Transform: &media3d.TranslateTransform3D{OffsetZ: 2},
			Content:   &media3d.GeometryModel3D{Geometry: quad(), Material: red()},
		}},
	}
	sc, err := Export(root, Options{Logger: quiet})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "part.stl")
	require.NoError(t, WriteFile(path, sc))

	ctx := importer.NewContext(importer.Options{Logger: quiet})
	defer ctx.Release()
	got, err := ctx.ImportFile(path, 0)
	require.NoError(t, err)
	require.Len(t, got.Meshes, 1)
	m := got.Meshes[0]
	assert.Len(t, m.Faces, 2)
	for _, v := range m.Vertices {
		assert.InDelta(t, 2, v[2], 1e-6)
	}
	require.Len(t, m.Normals, 6)
	assert.InDelta(t, 1, m.Normals[0][2], 1e-6)
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "out.fbx"), scene.New("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
