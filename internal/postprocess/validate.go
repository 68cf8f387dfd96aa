package postprocess

import (
	"errors"
	"fmt"

	"assimp-media3d/internal/scene"
)

// ErrInvalidScene is wrapped by every validation failure.
var ErrInvalidScene = errors.New("postprocess: invalid scene")

// Validate checks references between the parts of sc: node mesh
// indices, face indices, per-vertex array lengths, material indices and
// embedded texture references. It sets FlagValidated, and
// FlagIncomplete for scenes without meshes.
func Validate(sc *scene.Scene) error {
	if sc.Root == nil {
		return fmt.Errorf("%w: no root node", ErrInvalidScene)
	}

	var err error
	sc.Root.Walk(func(n *scene.Node, _ int) bool {
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(sc.Meshes) {
				err = fmt.Errorf("%w: node %q references mesh %d of %d", ErrInvalidScene, n.Name, mi, len(sc.Meshes))
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	for i, m := range sc.Meshes {
		if err := validateMesh(sc, i, m); err != nil {
			return err
		}
	}

	for i, mat := range sc.Materials {
		for _, p := range mat.Properties {
			if p.Key != scene.KeyTextureFile {
				continue
			}
			ref, _ := p.Str()
			if _, ok := scene.EmbeddedIndex(ref); ok {
				if _, found := sc.Texture(ref); !found {
					return fmt.Errorf("%w: material %d references missing embedded texture %s", ErrInvalidScene, i, ref)
				}
			}
		}
	}

	if len(sc.Meshes) == 0 {
		sc.Flags |= scene.FlagIncomplete
	}
	sc.Flags |= scene.FlagValidated
	return nil
}

func validateMesh(sc *scene.Scene, i int, m *scene.Mesh) error {
	n := len(m.Vertices)
	if n == 0 {
		return fmt.Errorf("%w: mesh %d %q has no vertices", ErrInvalidScene, i, m.Name)
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("%w: mesh %d has %d normals for %d vertices", ErrInvalidScene, i, len(m.Normals), n)
	}
	if len(m.Colors) != 0 && len(m.Colors) != n {
		return fmt.Errorf("%w: mesh %d has %d colours for %d vertices", ErrInvalidScene, i, len(m.Colors), n)
	}
	for ch, uv := range m.TextureCoords {
		if len(uv) != 0 && len(uv) != n {
			return fmt.Errorf("%w: mesh %d channel %d has %d uvs for %d vertices", ErrInvalidScene, i, ch, len(uv), n)
		}
	}
	for fi, f := range m.Faces {
		if len(f.Indices) == 0 {
			return fmt.Errorf("%w: mesh %d face %d is empty", ErrInvalidScene, i, fi)
		}
		for _, idx := range f.Indices {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: mesh %d face %d index %d out of range", ErrInvalidScene, i, fi, idx)
			}
		}
	}
	if m.MaterialIndex < 0 || (len(sc.Materials) > 0 && m.MaterialIndex >= len(sc.Materials)) {
		return fmt.Errorf("%w: mesh %d material %d of %d", ErrInvalidScene, i, m.MaterialIndex, len(sc.Materials))
	}
	return nil
}

// pruneFaces drops faces that are empty or index past the vertex list,
// so steps can run on scenes that skipped validation. It returns the
// number of faces dropped.
func pruneFaces(m *scene.Mesh) int {
	n := len(m.Vertices)
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		if faceInRange(f.Indices, n) {
			kept = append(kept, f)
		}
	}
	dropped := len(m.Faces) - len(kept)
	m.Faces = kept
	if dropped > 0 {
		m.UpdatePrimitiveTypes()
	}
	return dropped
}

func faceInRange(idx []int, n int) bool {
	if len(idx) == 0 {
		return false
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}
