package scene

import "assimp-media3d/internal/mathutil"

// MaxTexCoords is the number of UV channels a mesh can carry.
const MaxTexCoords = 8

// PrimitiveType is a bit set of the face kinds present in a mesh.
type PrimitiveType uint8

const (
	PrimitivePoint PrimitiveType = 1 << iota
	PrimitiveLine
	PrimitiveTriangle
	PrimitivePolygon
)

func (p PrimitiveType) String() string {
	s := ""
	for _, e := range []struct {
		bit  PrimitiveType
		name string
	}{
		{PrimitivePoint, "point"},
		{PrimitiveLine, "line"},
		{PrimitiveTriangle, "triangle"},
		{PrimitivePolygon, "polygon"},
	} {
		if p&e.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += e.name
	}
	if s == "" {
		return "none"
	}
	return s
}

// Face is an ordered list of vertex indices.
type Face struct {
	Indices []int
}

// Color4 is a float RGBA colour.
type Color4 struct {
	R, G, B, A float32
}

// IsBlack reports whether all colour channels are zero; alpha is ignored.
func (c Color4) IsBlack() bool {
	return c.R <= 0 && c.G <= 0 && c.B <= 0
}

// VertexWeight binds a vertex to a bone.
type VertexWeight struct {
	Vertex int
	Weight float32
}

// Bone is a skinning influence on a mesh.
type Bone struct {
	Name    string
	Offset  mathutil.Mat4
	Weights []VertexWeight
}

// Mesh is a set of faces sharing one material.
type Mesh struct {
	Name           string
	PrimitiveTypes PrimitiveType
	Vertices       []mathutil.Vec3
	Normals        []mathutil.Vec3
	Colors         []Color4
	TextureCoords  [MaxTexCoords][]mathutil.Vec3
	UVComponents   [MaxTexCoords]int
	Faces          []Face
	Bones          []*Bone
	MaterialIndex  int
}

// HasNormals reports whether every vertex has a normal.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// HasTextureCoords reports whether UV channel ch is populated.
func (m *Mesh) HasTextureCoords(ch int) bool {
	if ch < 0 || ch >= MaxTexCoords {
		return false
	}
	return len(m.TextureCoords[ch]) > 0 && len(m.TextureCoords[ch]) == len(m.Vertices)
}

// UVChannels returns the number of leading populated UV channels.
func (m *Mesh) UVChannels() int {
	n := 0
	for n < MaxTexCoords && m.HasTextureCoords(n) {
		n++
	}
	return n
}

// UpdatePrimitiveTypes recomputes PrimitiveTypes from the faces.
func (m *Mesh) UpdatePrimitiveTypes() {
	var p PrimitiveType
	for _, f := range m.Faces {
		switch n := len(f.Indices); {
		case n == 1:
			p |= PrimitivePoint
		case n == 2:
			p |= PrimitiveLine
		case n == 3:
			p |= PrimitiveTriangle
		case n > 3:
			p |= PrimitivePolygon
		}
	}
	m.PrimitiveTypes = p
}

// IsTriangulated reports whether all faces are triangles.
func (m *Mesh) IsTriangulated() bool {
	for _, f := range m.Faces {
		if len(f.Indices) != 3 {
			return false
		}
	}
	return true
}

// IndexCount returns the total number of face indices.
func (m *Mesh) IndexCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Indices)
	}
	return n
}
