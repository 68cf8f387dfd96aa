package postprocess

import (
	"assimp-media3d/internal/geom"
	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"
)

// Triangulate replaces every polygon face with triangles. Quads take the
// geom quad path, larger polygons go through tri with a fan fallback.
// Point and line faces are kept, faces with out of range indices are
// dropped. It returns the number of polygons split.
func Triangulate(sc *scene.Scene, tri geom.Triangulator) int {
	split := 0
	for _, m := range sc.Meshes {
		pruneFaces(m)
		if m.IsTriangulated() {
			continue
		}
		faces := make([]scene.Face, 0, len(m.Faces))
		for _, f := range m.Faces {
			idx := f.Indices
			switch {
			case len(idx) <= 3:
				faces = append(faces, f)
				continue
			case len(idx) == 4:
				q := geom.TriangulateQuad(
					[4]int{idx[0], idx[1], idx[2], idx[3]},
					[4]mathutil.Vec3{m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]], m.Vertices[idx[3]]},
				)
				faces = appendTriangles(faces, q[:])
			default:
				t, err := geom.TriangulateFace(m.Vertices, idx, tri)
				if err != nil {
					t = t[:0]
					for k := 1; k+1 < len(idx); k++ {
						t = append(t, idx[0], idx[k], idx[k+1])
					}
				}
				faces = appendTriangles(faces, t)
			}
			split++
		}
		m.Faces = faces
		m.UpdatePrimitiveTypes()
	}
	return split
}

func appendTriangles(faces []scene.Face, idx []int) []scene.Face {
	for i := 0; i+2 < len(idx); i += 3 {
		faces = append(faces, scene.Face{Indices: []int{idx[i], idx[i+1], idx[i+2]}})
	}
	return faces
}
