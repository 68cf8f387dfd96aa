package convert

import (
	"assimp-media3d/internal/geom"
	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"
)

// FlipV converts a texture V coordinate between bottom-left and
// top-left origins. It is its own inverse.
func FlipV(v float64) float64 {
	return 1 - v
}

// ConvertMesh builds triangle geometry for m. When triangulated is set
// the faces are already triangles and pass through. The second result
// holds the closed polygon loops when ReadPolygonIndices is enabled.
func (c *Converter) ConvertMesh(m *scene.Mesh, triangulated bool) (*media3d.MeshGeometry3D, []int) {
	g := &media3d.MeshGeometry3D{
		Positions: append([]mathutil.Vec3(nil), m.Vertices...),
	}
	if m.HasNormals() {
		g.Normals = append([]mathutil.Vec3(nil), m.Normals...)
	}
	if m.HasTextureCoords(0) {
		g.TextureCoordinates = make([]mathutil.Vec2, len(m.TextureCoords[0]))
		for i, uv := range m.TextureCoords[0] {
			g.TextureCoordinates[i] = mathutil.Vec2{uv[0], FlipV(uv[1])}
		}
	}

	var loops []int
	n := len(m.Vertices)
	for fi, f := range m.Faces {
		idx := f.Indices
		if len(idx) < 3 {
			continue
		}
		if !inRange(idx, n) {
			c.log.Debug("skipping face with out of range index", "mesh", m.Name, "face", fi)
			continue
		}
		if c.opts.ReadPolygonIndices {
			loops = appendLoop(loops, idx)
		}

		switch {
		case triangulated || len(idx) == 3:
			if len(idx) == 3 {
				g.TriangleIndices = append(g.TriangleIndices, idx...)
			}
		case len(idx) == 4:
			q := geom.TriangulateQuad(
				[4]int{idx[0], idx[1], idx[2], idx[3]},
				[4]mathutil.Vec3{m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]], m.Vertices[idx[3]]},
			)
			g.TriangleIndices = append(g.TriangleIndices, q[:]...)
		default:
			tris, err := geom.TriangulateFace(m.Vertices, idx, c.opts.Triangulator)
			if err != nil {
				c.log.Debug("triangulation failed, using fan", "mesh", m.Name, "face", fi, "err", err)
				tris = fan(idx)
			}
			g.TriangleIndices = append(g.TriangleIndices, tris...)
		}
	}
	return g, loops
}

func inRange(idx []int, n int) bool {
	for _, i := range idx {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}

func fan(idx []int) []int {
	out := make([]int, 0, 3*(len(idx)-2))
	for i := 1; i+1 < len(idx); i++ {
		out = append(out, idx[0], idx[i], idx[i+1])
	}
	return out
}

// appendLoop appends the closed loop of idx, repeating its first index
// at the end. An index equal to the previous entry is not repeated,
// which also covers a loop starting where the last one closed.
func appendLoop(dst, idx []int) []int {
	push := func(i int) {
		if len(dst) > 0 && dst[len(dst)-1] == i {
			return
		}
		dst = append(dst, i)
	}
	for _, i := range idx {
		push(i)
	}
	push(idx[0])
	return dst
}
