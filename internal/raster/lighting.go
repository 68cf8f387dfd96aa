package raster

import (
	"math"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"

	"github.com/go-gl/mathgl/mgl64"
)

// DirLight is a directional light in view space. Dir points from the
// light into the scene.
type DirLight struct {
	Dir       mathutil.Vec3
	Intensity mathutil.Vec3 // linear RGB
}

// LightConfig holds the lighting of one render.
type LightConfig struct {
	Ambient  mathutil.Vec3 // linear RGB
	Lights   []DirLight
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig is a key light from the upper right and a dimmer
// rim light from behind, used when the model carries no lights.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Ambient: mathutil.Vec3{0.45, 0.45, 0.45},
		Lights: []DirLight{
			{Dir: mathutil.Vec3{-180, -260, -140}.Normalize(), Intensity: mathutil.Vec3{1.3, 1.3, 1.3}},
			{Dir: mathutil.Vec3{160, -130, 210}.Normalize(), Intensity: mathutil.Vec3{0.5, 0.5, 0.5}},
		},
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
}

// LightsFromModel collects the ambient and directional lights under m,
// rotated into view space. Point and spot lights are treated as
// directional lights shining from their position towards the origin.
// ok is false when m holds no lights.
func LightsFromModel(m media3d.Model3D, view mathutil.Mat3) (lc LightConfig, ok bool) {
	lc = LightConfig{Exposure: 1.05, InvGamma: 1.0 / 2.2}
	media3d.WalkModels(m, mgl64.Ident4(), func(m media3d.Model3D, world mgl64.Mat4) {
		switch l := m.(type) {
		case *media3d.AmbientLight:
			lc.Ambient = lc.Ambient.Add(linear(l.Color))
			ok = true
		case *media3d.DirectionalLight:
			d := view.MulVec3(media3d.TransformDir(world, l.Direction)).Normalize()
			lc.Lights = append(lc.Lights, DirLight{Dir: d, Intensity: linear(l.Color)})
			ok = true
		case *media3d.PointLight:
			lc.Lights = append(lc.Lights, positional(view, world, l.Position, l.Color))
			ok = true
		case *media3d.SpotLight:
			lc.Lights = append(lc.Lights, positional(view, world, l.Position, l.Color))
			ok = true
		}
	})
	return lc, ok
}

func positional(view mathutil.Mat3, world mgl64.Mat4, pos mathutil.Vec3, c media3d.Color) DirLight {
	p := media3d.TransformPoint(world, pos)
	return DirLight{Dir: view.MulVec3(p.Scale(-1)).Normalize(), Intensity: linear(c)}
}

func linear(c media3d.Color) mathutil.Vec3 {
	return mathutil.Vec3{
		srgbToLinear[to255(c.R)],
		srgbToLinear[to255(c.G)],
		srgbToLinear[to255(c.B)],
	}
}

func to255(v float32) uint8 {
	return clamp8(float64(v) * 255)
}

// Shade returns the per-channel light reaching a face with the given
// view-space normal. Faces are lit from both sides.
func (lc *LightConfig) Shade(normal mathutil.Vec3) mathutil.Vec3 {
	s := lc.Ambient
	for _, l := range lc.Lights {
		ndl := math.Abs(normal.Dot(l.Dir))
		s = s.Add(l.Intensity.Scale(ndl))
	}
	return s
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
