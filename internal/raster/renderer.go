// Package raster renders flat-shaded orthographic previews of Media3D
// model trees.
package raster

import (
	"image"
	"math"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"

	"github.com/go-gl/mathgl/mgl64"
)

// Options configures Render.
type Options struct {
	// Size is the edge of the square output image in pixels.
	Size int
	// Supersample renders at Size*Supersample and filters down.
	Supersample int
	// View rotates world space into view space. Nil selects DefaultView.
	View *mathutil.Mat3
	// Margin is the empty border in output pixels.
	Margin int
}

type drawMesh struct {
	geo   *media3d.MeshGeometry3D
	world mgl64.Mat4
	surf  Surface
}

// Render draws every GeometryModel3D under m, fitted to the image, and
// lit by the model's own lights or DefaultLightConfig.
func Render(m media3d.Model3D, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	view := DefaultView()
	if opts.View != nil {
		view = *opts.View
	}
	renderSize := opts.Size * opts.Supersample

	var meshes []drawMesh
	media3d.WalkModels(m, mgl64.Ident4(), func(m media3d.Model3D, world mgl64.Mat4) {
		gm, ok := m.(*media3d.GeometryModel3D)
		if !ok || gm.Geometry == nil || len(gm.Geometry.Positions) == 0 {
			return
		}
		meshes = append(meshes, drawMesh{geo: gm.Geometry, world: world, surf: surface(gm.Material)})
	})
	if len(meshes) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}

	lc, ok := LightsFromModel(m, view)
	if !ok {
		lc = DefaultLightConfig()
	}

	// Transform to view space and fit the bounding box.
	viewPos := make([][]mathutil.Vec3, len(meshes))
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, dm := range meshes {
		vp := make([]mathutil.Vec3, len(dm.geo.Positions))
		for j, p := range dm.geo.Positions {
			v := view.MulVec3(media3d.TransformPoint(dm.world, p))
			vp[j] = v
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], v[k])
				hi[k] = math.Max(hi[k], v[k])
			}
		}
		viewPos[i] = vp
	}
	center := lo.Add(hi).Scale(0.5)
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 1e-3 {
		span = 1e-3
	}
	margin := opts.Margin * opts.Supersample
	if 2*margin >= renderSize {
		margin = 0
	}
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2

	fb := NewFrameBuffer(renderSize, renderSize)
	for i, dm := range meshes {
		geo := dm.geo
		vp := viewPos[i]
		hasUV := len(geo.TextureCoordinates) == len(geo.Positions)
		surf := dm.surf
		if surf.Tex != nil && !hasUV {
			surf.R, surf.G, surf.B, surf.A = averageColor(surf.Tex)
			surf.Tex = nil
		}

		for t := 0; t+2 < len(geo.TriangleIndices); t += 3 {
			var tri [3]Vertex
			var pts [3]mathutil.Vec3
			valid := true
			for k := 0; k < 3; k++ {
				idx := geo.TriangleIndices[t+k]
				if idx < 0 || idx >= len(vp) {
					valid = false
					break
				}
				p := vp[idx]
				pts[k] = p
				tri[k] = Vertex{
					X: (p[0]-center[0])*scale + half,
					Y: half - (p[1]-center[1])*scale,
					Z: p[2],
				}
				if hasUV {
					tri[k].U = geo.TextureCoordinates[idx][0]
					tri[k].V = geo.TextureCoordinates[idx][1]
				}
			}
			if !valid {
				continue
			}
			n := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
			if n.Len() < 1e-12 {
				continue
			}
			RasterizeTriangle(fb, tri, n.Normalize(), &surf, &lc)
		}
	}

	return Downsample(fb.Image(), opts.Size)
}

// surface picks the brush of the first diffuse material, falling back to
// a neutral grey.
func surface(m media3d.Material) Surface {
	s := Surface{R: 160, G: 160, B: 170, A: 255}
	d := media3d.FirstDiffuse(m)
	if d == nil {
		return s
	}
	switch b := d.Brush.(type) {
	case *media3d.SolidColorBrush:
		c := b.Color.NRGBA()
		s.R, s.G, s.B, s.A = c.R, c.G, c.B, c.A
	case *media3d.ImageBrush:
		if b.Image != nil {
			s.Tex = b.Image
			s.Wrap = b.TileMode != media3d.TileNone
		}
	}
	return s
}
