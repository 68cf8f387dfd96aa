package scene

import (
	"testing"

	"assimp-media3d/internal/mathutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeWorldTransform(t *testing.T) {
	s := New("root")
	s.Root.Transform = mathutil.Mat4Translation(mathutil.Vec3{1, 0, 0})
	child := s.Root.AddChild(NewNode("child"))
	child.Transform = mathutil.Mat4Translation(mathutil.Vec3{0, 2, 0})

	assert.Same(t, s.Root, child.Parent)
	assert.Equal(t, mathutil.Vec3{1, 2, 0}, child.WorldTransform().Translation())
	assert.Same(t, child, s.Root.Find("child"))
	assert.Nil(t, s.Root.Find("missing"))
	assert.Equal(t, 2, s.Root.Count())
}

func TestWalkOrder(t *testing.T) {
	root := NewNode("a")
	b := root.AddChild(NewNode("b"))
	b.AddChild(NewNode("c"))
	root.AddChild(NewNode("d"))

	var names []string
	var depths []int
	root.Walk(func(n *Node, depth int) bool {
		names = append(names, n.Name)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
}

func TestMaterialColorByteLength(t *testing.T) {
	var m Material
	m.SetColor3(KeyColorDiffuse, Color4{R: 1, G: 0.5, B: 0.25})
	c, n, ok := m.Color(KeyColorDiffuse)
	require.True(t, ok)
	assert.Equal(t, 12, n)
	assert.Equal(t, Color4{R: 1, G: 0.5, B: 0.25}, c)

	m.SetColor4(KeyColorDiffuse, Color4{R: 1, G: 1, B: 1, A: 0.5})
	c, n, ok = m.Color(KeyColorDiffuse)
	require.True(t, ok)
	assert.Equal(t, 16, n)
	assert.Equal(t, float32(0.5), c.A)
	assert.Len(t, m.Properties, 1)
}

func TestMaterialTextures(t *testing.T) {
	var m Material
	m.SetString(KeyName, "brick")
	i := m.AddTexture(TextureDiffuse, TextureSlot{Path: "brick.png", MapModeU: MapModeClamp, MapModeV: MapModeMirror})
	j := m.AddTexture(TextureDiffuse, TextureSlot{Path: "detail.png", UVIndex: 1})

	assert.Equal(t, 0, i)
	assert.Equal(t, 1, j)
	assert.Equal(t, "brick", m.Name())
	assert.Equal(t, 2, m.TextureCount(TextureDiffuse))
	assert.Equal(t, 0, m.TextureCount(TextureSpecular))

	slot, ok := m.Texture(TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, TextureSlot{Path: "brick.png", MapModeU: MapModeClamp, MapModeV: MapModeMirror}, slot)
	slot, ok = m.Texture(TextureDiffuse, 1)
	require.True(t, ok)
	assert.Equal(t, 1, slot.UVIndex)
}

func TestMaterialNumbers(t *testing.T) {
	var m Material
	m.SetFloats(KeyShininess, 32)
	m.SetInt(KeyTwoSided, 1)

	f, ok := m.Float(KeyShininess)
	assert.True(t, ok)
	assert.Equal(t, float32(32), f)
	v, ok := m.Int(KeyTwoSided)
	assert.True(t, ok)
	assert.Equal(t, int32(1), v)
	_, ok = m.Float(KeyOpacity)
	assert.False(t, ok)
}

func TestMeshPrimitiveTypes(t *testing.T) {
	m := &Mesh{Faces: []Face{{Indices: []int{0, 1, 2}}, {Indices: []int{0, 1, 2, 3}}}}
	m.UpdatePrimitiveTypes()
	assert.Equal(t, PrimitiveTriangle|PrimitivePolygon, m.PrimitiveTypes)
	assert.Equal(t, "triangle|polygon", m.PrimitiveTypes.String())
	assert.False(t, m.IsTriangulated())
	assert.Equal(t, 7, m.IndexCount())
}

func TestEmbeddedRef(t *testing.T) {
	i, ok := EmbeddedIndex(EmbeddedRef(3))
	assert.True(t, ok)
	assert.Equal(t, 3, i)
	_, ok = EmbeddedIndex("diffuse.png")
	assert.False(t, ok)
	_, ok = EmbeddedIndex("*x")
	assert.False(t, ok)
}

func TestParsePostProcess(t *testing.T) {
	p, err := ParsePostProcess([]string{"triangulate", " Flip-UVs "})
	require.NoError(t, err)
	assert.True(t, p.Has(ProcessTriangulate|ProcessFlipUVs))
	assert.Equal(t, "triangulate,flip-uvs", p.String())

	_, err = ParsePostProcess([]string{"bogus"})
	assert.Error(t, err)
}
