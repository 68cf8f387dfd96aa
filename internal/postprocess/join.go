package postprocess

import (
	"fmt"
	"strings"

	"assimp-media3d/internal/scene"
)

// JoinIdenticalVertices merges vertices whose every attribute matches
// and reindexes the faces. Meshes with bones are left alone. It returns
// the number of vertices removed and marks the scene non-verbose.
func JoinIdenticalVertices(sc *scene.Scene) int {
	removed := 0
	for _, m := range sc.Meshes {
		if len(m.Bones) > 0 {
			continue
		}
		pruneFaces(m)
		keep := make(map[string]int, len(m.Vertices))
		remap := make([]int, len(m.Vertices))
		var order []int
		for i := range m.Vertices {
			k := vertexKey(m, i)
			if j, ok := keep[k]; ok {
				remap[i] = j
				continue
			}
			keep[k] = len(order)
			remap[i] = len(order)
			order = append(order, i)
		}
		if len(order) == len(m.Vertices) {
			continue
		}
		removed += len(m.Vertices) - len(order)

		m.Vertices = pick(m.Vertices, order)
		if len(m.Normals) > 0 {
			m.Normals = pick(m.Normals, order)
		}
		if len(m.Colors) > 0 {
			m.Colors = pick(m.Colors, order)
		}
		for ch, uv := range m.TextureCoords {
			if len(uv) > 0 {
				m.TextureCoords[ch] = pick(uv, order)
			}
		}
		for _, f := range m.Faces {
			for k, old := range f.Indices {
				f.Indices[k] = remap[old]
			}
		}
	}
	sc.Flags |= scene.FlagNonVerbose
	return removed
}

func vertexKey(m *scene.Mesh, i int) string {
	var b strings.Builder
	fmt.Fprint(&b, m.Vertices[i])
	if len(m.Normals) > i {
		fmt.Fprint(&b, m.Normals[i])
	}
	if len(m.Colors) > i {
		fmt.Fprint(&b, m.Colors[i])
	}
	for _, uv := range m.TextureCoords {
		if len(uv) > i {
			fmt.Fprint(&b, uv[i])
		}
	}
	return b.String()
}

func pick[T any](src []T, order []int) []T {
	out := make([]T, len(order))
	for k, i := range order {
		out[k] = src[i]
	}
	return out
}
