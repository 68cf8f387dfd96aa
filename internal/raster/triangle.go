package raster

import (
	"image"
	"math"

	"assimp-media3d/internal/mathutil"
)

// Vertex is a projected vertex: screen X and Y in pixels, view-space Z
// (larger is nearer) and texture coordinates.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Surface is what a triangle is painted with. Tex takes precedence over
// the flat color when set.
type Surface struct {
	Tex        *image.NRGBA
	Wrap       bool
	R, G, B, A uint8
}

// RasterizeTriangle fills one triangle with z-buffering, flat shading
// from normal (view space), sRGB color handling and ACES tone mapping.
//
// This is the hot path: no allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, tri [3]Vertex, normal mathutil.Vec3, s *Surface, lc *LightConfig) {
	x0, y0, z0 := tri[0].X, tri[0].Y, tri[0].Z
	x1, y1, z1 := tri[1].X, tri[1].Y, tri[1].Z
	x2, y2, z2 := tri[2].X, tri[2].Y, tri[2].Z

	shade := lc.Shade(normal)

	minX := int(math.Floor(min(x0, x1, x2)))
	maxX := int(math.Ceil(max(x0, x1, x2)))
	minY := int(math.Floor(min(y0, y1, y2)))
	maxY := int(math.Ceil(max(y0, y1, y2)))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	exposure := lc.Exposure
	invGamma := lc.InvGamma

	for sy := minY; sy <= maxY; sy++ {
		// Sample at pixel centers.
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := s.R, s.G, s.B, s.A
			if s.Tex != nil {
				u := w0*tri[0].U + w1*tri[1].U + w2*tri[2].U
				v := w0*tri[0].V + w1*tri[1].V + w2*tri[2].V
				cr, cg, cb, ca = SampleTexture(s.Tex, u, v, s.Wrap)
			}
			// Skip transparent texels.
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			fr := math.Pow(ACESTonemap(srgbToLinear[cr]*shade[0]*exposure), invGamma)
			fg := math.Pow(ACESTonemap(srgbToLinear[cg]*shade[1]*exposure), invGamma)
			ffb := math.Pow(ACESTonemap(srgbToLinear[cb]*shade[2]*exposure), invGamma)

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp8(fr * 255)
			fb.Color[pxIdx+1] = clamp8(fg * 255)
			fb.Color[pxIdx+2] = clamp8(ffb * 255)
			fb.Color[pxIdx+3] = ca
		}
	}
}
