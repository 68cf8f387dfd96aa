package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"github.com/flywave/go-stl"
)

// STL imports binary and ASCII stereolithography files. Every facet
// gets its own three vertices carrying the facet normal.
type STL struct{}

func (*STL) Extensions() []string {
	return []string{".stl"}
}

func (*STL) Read(r io.Reader, _ string) (*scene.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stl: read: %w", err)
	}
	// the binary check measures the stream, so it must start at offset 0
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	if len(solid.Triangles) == 0 {
		return nil, errors.New("stl: no facets")
	}

	name := solid.Name
	if !solid.IsAscii {
		// binary headers often repeat the ASCII "solid <name>" line
		name = strings.TrimSpace(strings.TrimPrefix(name, "solid"))
	}
	mesh := solidMesh(solid)
	mesh.Name = name
	mesh.UpdatePrimitiveTypes()
	if allZero(mesh.Normals) {
		mesh.Normals = nil
	}

	sc := scene.New(name)
	sc.Meshes = []*scene.Mesh{mesh}
	sc.Materials = []*scene.Material{defaultMaterial()}
	sc.Root.Meshes = []int{0}
	return sc, nil
}

func solidMesh(s *stl.Solid) *scene.Mesh {
	m := &scene.Mesh{
		Vertices: make([]mathutil.Vec3, 0, 3*len(s.Triangles)),
		Normals:  make([]mathutil.Vec3, 0, 3*len(s.Triangles)),
		Faces:    make([]scene.Face, 0, len(s.Triangles)),
	}
	for _, t := range s.Triangles {
		n := mathutil.Vec3{float64(t.Normal[0]), float64(t.Normal[1]), float64(t.Normal[2])}
		base := len(m.Vertices)
		for _, v := range t.Vertices {
			m.Vertices = append(m.Vertices, mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})
			m.Normals = append(m.Normals, n)
		}
		m.Faces = append(m.Faces, scene.Face{Indices: []int{base, base + 1, base + 2}})
	}
	return m
}

func allZero(v []mathutil.Vec3) bool {
	for _, n := range v {
		if n != (mathutil.Vec3{}) {
			return false
		}
	}
	return true
}
