package postprocess

import "assimp-media3d/internal/scene"

// FlipUVs mirrors the V coordinate of every UV channel.
func FlipUVs(sc *scene.Scene) {
	for _, m := range sc.Meshes {
		for ch := range m.TextureCoords {
			for i := range m.TextureCoords[ch] {
				m.TextureCoords[ch][i][1] = 1 - m.TextureCoords[ch][i][1]
			}
		}
	}
}

// FlipWindingOrder reverses the vertex order of every face.
func FlipWindingOrder(sc *scene.Scene) {
	for _, m := range sc.Meshes {
		for _, f := range m.Faces {
			idx := f.Indices
			for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
	}
}
