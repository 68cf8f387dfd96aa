// Package scene holds the imported scene graph: a node tree with
// transforms referencing shared meshes, materials and embedded textures,
// plus cameras, lights and animations.
package scene

// Flags describes the state of a scene.
type Flags uint32

const (
	// FlagIncomplete marks a scene without meshes (animation or
	// skeleton only).
	FlagIncomplete Flags = 1 << iota
	// FlagValidated is set once ValidateDataStructure passed.
	FlagValidated
	// FlagNonVerbose marks shared vertices between faces.
	FlagNonVerbose
)

// Scene is the root of an imported asset.
type Scene struct {
	Flags      Flags
	Root       *Node
	Meshes     []*Mesh
	Materials  []*Material
	Textures   []*Texture
	Cameras    []*Camera
	Lights     []*Light
	Animations []*Animation

	// Applied records the post-process steps already run on the scene.
	Applied PostProcess
}

// New returns an empty scene with a root node.
func New(rootName string) *Scene {
	return &Scene{Root: NewNode(rootName)}
}

// Material returns the material a mesh references, or nil.
func (s *Scene) Material(m *Mesh) *Material {
	if m.MaterialIndex < 0 || m.MaterialIndex >= len(s.Materials) {
		return nil
	}
	return s.Materials[m.MaterialIndex]
}

// Texture resolves an embedded texture reference of the form "*N".
func (s *Scene) Texture(ref string) (*Texture, bool) {
	i, ok := EmbeddedIndex(ref)
	if !ok || i >= len(s.Textures) {
		return nil, false
	}
	return s.Textures[i], true
}

// VertexCount returns the number of vertices across all meshes.
func (s *Scene) VertexCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Vertices)
	}
	return n
}
