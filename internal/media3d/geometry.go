package media3d

import (
	"math"

	"assimp-media3d/internal/mathutil"
)

// MeshGeometry3D is an indexed triangle mesh. TriangleIndices has a
// multiple of three entries; Normals and TextureCoordinates are either
// empty or one per position.
type MeshGeometry3D struct {
	Positions          []mathutil.Vec3
	Normals            []mathutil.Vec3
	TextureCoordinates []mathutil.Vec2
	TriangleIndices    []int
}

// TriangleCount returns the number of triangles.
func (g *MeshGeometry3D) TriangleCount() int {
	return len(g.TriangleIndices) / 3
}

// Bounds returns the axis-aligned bounding box of the positions.
// An empty mesh returns ok == false.
func (g *MeshGeometry3D) Bounds() (min, max mathutil.Vec3, ok bool) {
	if len(g.Positions) == 0 {
		return min, max, false
	}
	min = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range g.Positions {
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], p[k])
			max[k] = math.Max(max[k], p[k])
		}
	}
	return min, max, true
}
