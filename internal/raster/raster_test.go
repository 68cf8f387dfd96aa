package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func front() *mathutil.Mat3 {
	v := mathutil.Mat3Identity()
	return &v
}

func solid(c media3d.Color) media3d.Material {
	return media3d.NewDiffuseMaterial(media3d.NewSolidColorBrush(c))
}

func square(z float64) *media3d.MeshGeometry3D {
	return &media3d.MeshGeometry3D{
		Positions:          []mathutil.Vec3{{0, 0, z}, {1, 0, z}, {1, 1, z}, {0, 1, z}},
		TextureCoordinates: []mathutil.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		TriangleIndices:    []int{0, 1, 2, 0, 2, 3},
	}
}

func TestRenderTriangleCoverage(t *testing.T) {
	geo := &media3d.MeshGeometry3D{
		Positions:       []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		TriangleIndices: []int{0, 1, 2},
	}
	m := &media3d.GeometryModel3D{Geometry: geo, Material: solid(media3d.Color{R: 1, A: 1})}

	img := Render(m, Options{Size: 32, View: front()})
	require.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())

	in := img.NRGBAAt(1, 30)
	assert.Equal(t, uint8(255), in.A)
	assert.Greater(t, in.R, uint8(0))
	assert.Zero(t, in.G)
	assert.Zero(t, in.B)

	out := img.NRGBAAt(30, 1)
	assert.Zero(t, out.A)
}

func TestRenderDepthOrder(t *testing.T) {
	group := &media3d.Model3DGroup{Children: []media3d.Model3D{
		&media3d.GeometryModel3D{Geometry: square(1), Material: solid(media3d.Color{B: 1, A: 1})},
		&media3d.GeometryModel3D{Geometry: square(0), Material: solid(media3d.Color{R: 1, A: 1})},
	}}

	img := Render(group, Options{Size: 16, View: front()})
	c := img.NRGBAAt(8, 8)
	assert.Greater(t, c.B, uint8(0))
	assert.Zero(t, c.R)
}

func TestRenderTexture(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			tex.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	m := &media3d.GeometryModel3D{
		Geometry: square(0),
		Material: media3d.NewDiffuseMaterial(&media3d.ImageBrush{Image: tex, Opacity: 1}),
	}

	img := Render(m, Options{Size: 16, View: front()})
	c := img.NRGBAAt(8, 8)
	assert.Greater(t, c.G, uint8(0))
	assert.Zero(t, c.R)
	assert.Equal(t, uint8(255), c.A)
}

func TestRenderSupersampleKeepsSize(t *testing.T) {
	m := &media3d.GeometryModel3D{Geometry: square(0), Material: solid(media3d.White)}
	img := Render(m, Options{Size: 16, Supersample: 4, Margin: 4})
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	assert.Zero(t, img.NRGBAAt(0, 0).A)
}

func TestRenderEmptyModel(t *testing.T) {
	img := Render(&media3d.Model3DGroup{}, Options{Size: 8})
	require.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	for _, p := range img.Pix {
		assert.Zero(t, p)
	}
}

func TestSampleTextureWrapAndClamp(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	tex.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	r, _, b, _ := SampleTexture(tex, 1.25, 0, true)
	assert.Equal(t, uint8(191), r)
	assert.Equal(t, uint8(64), b)

	r, _, b, _ = SampleTexture(tex, 1.25, 0, false)
	assert.Zero(t, r)
	assert.Equal(t, uint8(255), b)
}

func TestLightsFromModel(t *testing.T) {
	group := &media3d.Model3DGroup{Children: []media3d.Model3D{
		&media3d.AmbientLight{Color: media3d.White},
		&media3d.DirectionalLight{Color: media3d.White, Direction: mathutil.Vec3{0, 0, -2}},
	}}
	lc, ok := LightsFromModel(group, mathutil.Mat3Identity())
	require.True(t, ok)
	assert.Equal(t, mathutil.Vec3{1, 1, 1}, lc.Ambient)
	require.Len(t, lc.Lights, 1)
	assert.InDelta(t, -1, lc.Lights[0].Dir[2], 1e-12)

	s := lc.Shade(mathutil.Vec3{0, 0, 1})
	assert.InDelta(t, 2, s[0], 1e-12)

	_, ok = LightsFromModel(&media3d.Model3DGroup{}, mathutil.Mat3Identity())
	assert.False(t, ok)
}

func TestViewMatrix(t *testing.T) {
	assert.Equal(t, mathutil.Mat3Identity(), ViewMatrix(0, 0, 0))

	x := ViewMatrix(90, 0, 0).MulVec3(mathutil.Vec3{1, 0, 0})
	assert.InDelta(t, 1, math.Abs(x[2]), 1e-12)
	assert.InDelta(t, 0, x[0], 1e-12)
}
