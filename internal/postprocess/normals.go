package postprocess

import (
	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"gonum.org/v1/gonum/spatial/r3"
)

func vec(v mathutil.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func unvec(v r3.Vec) mathutil.Vec3 {
	return mathutil.Vec3{v.X, v.Y, v.Z}
}

// faceNormal returns the Newell normal of a polygon, unnormalized, so
// its length is twice the polygon area.
func faceNormal(pos []mathutil.Vec3, idx []int) r3.Vec {
	var n r3.Vec
	for i := range idx {
		a, b := vec(pos[idx[i]]), vec(pos[idx[(i+1)%len(idx)]])
		n = r3.Add(n, r3.Cross(a, b))
	}
	return n
}

func unit(v r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return v
	}
	return r3.Unit(v)
}

// GenSmoothNormals gives meshes without normals area-weighted vertex
// normals.
func GenSmoothNormals(sc *scene.Scene) {
	for _, m := range sc.Meshes {
		if m.HasNormals() {
			continue
		}
		pruneFaces(m)
		acc := make([]r3.Vec, len(m.Vertices))
		for _, f := range m.Faces {
			if len(f.Indices) < 3 {
				continue
			}
			n := faceNormal(m.Vertices, f.Indices)
			for _, i := range f.Indices {
				acc[i] = r3.Add(acc[i], n)
			}
		}
		m.Normals = make([]mathutil.Vec3, len(acc))
		for i, n := range acc {
			m.Normals[i] = unvec(unit(n))
		}
	}
}

// GenNormals gives meshes without normals flat face normals. Vertices
// shared by several faces are duplicated so each face owns its corners.
func GenNormals(sc *scene.Scene) {
	for _, m := range sc.Meshes {
		if m.HasNormals() {
			continue
		}
		pruneFaces(m)
		unshare(m)
		m.Normals = make([]mathutil.Vec3, len(m.Vertices))
		for _, f := range m.Faces {
			if len(f.Indices) < 3 {
				continue
			}
			n := unvec(unit(faceNormal(m.Vertices, f.Indices)))
			for _, i := range f.Indices {
				m.Normals[i] = n
			}
		}
	}
}

// unshare rewrites m so that every face corner has its own vertex.
func unshare(m *scene.Mesh) {
	src := *m
	m.Vertices = nil
	m.Colors = nil
	for ch := range m.TextureCoords {
		m.TextureCoords[ch] = nil
	}
	remap := make(map[int][]int)
	for fi, f := range src.Faces {
		idx := make([]int, len(f.Indices))
		for k, old := range f.Indices {
			idx[k] = len(m.Vertices)
			remap[old] = append(remap[old], idx[k])
			m.Vertices = append(m.Vertices, src.Vertices[old])
			if len(src.Colors) > 0 {
				m.Colors = append(m.Colors, src.Colors[old])
			}
			for ch, uv := range src.TextureCoords {
				if len(uv) > 0 {
					m.TextureCoords[ch] = append(m.TextureCoords[ch], uv[old])
				}
			}
		}
		m.Faces[fi] = scene.Face{Indices: idx}
	}
	for _, b := range m.Bones {
		var weights []scene.VertexWeight
		for _, w := range b.Weights {
			for _, n := range remap[w.Vertex] {
				weights = append(weights, scene.VertexWeight{Vertex: n, Weight: w.Weight})
			}
		}
		b.Weights = weights
	}
}
