package geom

import "assimp-media3d/internal/mathutil"

// QuadOrigin picks the vertex a quad is fanned from. A vertex whose
// local normal points against the summed face normal is concave; the
// fan then starts at the opposite vertex so the diagonal runs through
// the concave one. Convex quads start at 0.
func QuadOrigin(p [4]mathutil.Vec3) int {
	var local [4]mathutil.Vec3
	var sum mathutil.Vec3
	for i := range p {
		prev, next := p[(i+3)%4], p[(i+1)%4]
		local[i] = p[i].Sub(prev).Cross(next.Sub(p[i]))
		sum = sum.Add(local[i])
	}
	for i, n := range local {
		if n.Dot(sum) < 0 {
			return (i + 2) % 4
		}
	}
	return 0
}

// TriangulateQuad splits a quad into two triangles using QuadOrigin.
func TriangulateQuad(idx [4]int, p [4]mathutil.Vec3) [6]int {
	o := QuadOrigin(p)
	a, b, c, d := idx[o], idx[(o+1)%4], idx[(o+2)%4], idx[(o+3)%4]
	return [6]int{a, b, c, a, c, d}
}
