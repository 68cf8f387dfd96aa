package importer

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assimp-media3d/internal/convert"
	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"github.com/flywave/go-stl"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() *Context {
	return NewContext(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const cubeOBJ = `# two faces
mtllib cube.mtl
o Cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0.5 1.5 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl Red
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl Blue
f -5/1/1 -4/2/1 -3/3/1 -1/3/1 -2/4/1
o Empty
`

const cubeMTL = `newmtl Red
Kd 1 0 0
Ns 10
d 0.5
map_Kd -s 1 1 1 textures/red.tga

newmtl Blue
Kd 0 0 1
Ke 0 0 0
illum 2
`

func TestImportOBJ(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "cube.obj", cubeOBJ)
	write(t, dir, "cube.mtl", cubeMTL)

	c := newTestContext()
	sc, err := c.ImportFile(path, 0)
	require.NoError(t, err)

	assert.Equal(t, "cube", sc.Root.Name)
	require.Len(t, sc.Root.Children, 1)
	node := sc.Root.Children[0]
	assert.Equal(t, "Cube", node.Name)
	assert.Equal(t, []int{0, 1}, node.Meshes)

	require.Len(t, sc.Meshes, 2)
	quad := sc.Meshes[0]
	assert.Len(t, quad.Vertices, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, quad.Faces[0].Indices)
	assert.True(t, quad.HasNormals())
	assert.True(t, quad.HasTextureCoords(0))
	assert.Equal(t, 2, quad.UVComponents[0])
	assert.Equal(t, scene.PrimitivePolygon, quad.PrimitiveTypes)

	penta := sc.Meshes[1]
	assert.Len(t, penta.Faces[0].Indices, 5)
	assert.Len(t, penta.Vertices, 5)
	assert.Equal(t, mathutil.Vec3{0.5, 1.5, 0}, penta.Vertices[3])

	require.Len(t, sc.Materials, 2)
	red := sc.Materials[quad.MaterialIndex]
	assert.Equal(t, "Red", red.Name())
	col, n, ok := red.Color(scene.KeyColorDiffuse)
	require.True(t, ok)
	assert.Equal(t, 12, n)
	assert.Equal(t, scene.Color4{R: 1}, col)
	op, _ := red.Float(scene.KeyOpacity)
	assert.Equal(t, float32(0.5), op)
	slot, ok := red.Texture(scene.TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, "textures/red.tga", slot.Path)

	blue := sc.Materials[penta.MaterialIndex]
	assert.Equal(t, "Blue", blue.Name())
	model, _ := blue.Int(scene.KeyShadingModel)
	assert.Equal(t, int32(2), model)
}

func TestImportOBJTriangulatePostProcess(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "cube.obj", cubeOBJ)
	write(t, dir, "cube.mtl", cubeMTL)

	sc, err := newTestContext().ImportFile(path, scene.ProcessTriangulate|scene.ProcessValidateDataStructure)
	require.NoError(t, err)
	assert.True(t, sc.Applied.Has(scene.ProcessTriangulate))
	assert.Len(t, sc.Meshes[0].Faces, 2)
	assert.Len(t, sc.Meshes[1].Faces, 3)
}

func TestImportOBJWithoutMaterials(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\nl 1 2\n"
	sc, err := newTestContext().ImportReader(strings.NewReader(src), "obj", t.TempDir(), 0)
	require.NoError(t, err)

	require.Len(t, sc.Meshes, 1)
	m := sc.Meshes[0]
	assert.False(t, m.HasNormals())
	assert.False(t, m.HasTextureCoords(0))
	assert.Equal(t, scene.PrimitiveTriangle|scene.PrimitiveLine, m.PrimitiveTypes)
	require.Len(t, sc.Materials, 1)
	assert.Equal(t, "DefaultMaterial", sc.Materials[0].Name())
	assert.Equal(t, "defaultobject", sc.Root.Children[0].Name)
}

func TestImportOBJPolylineAndPoints(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nl 1 2 3\np 1 3\n"
	sc, err := newTestContext().ImportReader(strings.NewReader(src), "obj", t.TempDir(), 0)
	require.NoError(t, err)

	require.Len(t, sc.Meshes, 1)
	m := sc.Meshes[0]
	assert.Equal(t, []scene.Face{
		{Indices: []int{0, 1}},
		{Indices: []int{1, 2}},
		{Indices: []int{0}},
		{Indices: []int{2}},
	}, m.Faces)
	assert.Equal(t, scene.PrimitivePoint|scene.PrimitiveLine, m.PrimitiveTypes)

	conv := convert.New(convert.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	g, _ := conv.ConvertMesh(m, false)
	assert.Empty(t, g.TriangleIndices)
}

func TestImportOBJErrors(t *testing.T) {
	c := newTestContext()
	_, err := c.ImportReader(strings.NewReader("v 0 0 0\nf 1 2 3\n"), ".obj", "", 0)
	assert.Error(t, err)
	_, err = c.ImportReader(strings.NewReader("v 0 zero 0\n"), ".obj", "", 0)
	assert.Error(t, err)
}

func TestParseMTLOptions(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader("newmtl a\nmap_Kd -clamp on -o 0.5 0.5 0 my texture.png\nTr 0.25\n"))
	require.NoError(t, err)
	require.Len(t, mats, 1)
	slot, ok := mats[0].Texture(scene.TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, "my texture.png", slot.Path)
	assert.Equal(t, scene.MapModeClamp, slot.MapModeU)
	op, _ := mats[0].Float(scene.KeyOpacity)
	assert.Equal(t, float32(0.75), op)
}

func binarySTL(t *testing.T, tris [][4][3]float32) []byte {
	t.Helper()
	solid := &stl.Solid{Name: "solid part"}
	for _, tri := range tris {
		var st stl.Triangle
		for c := 0; c < 3; c++ {
			st.Normal[c] = tri[0][c]
			for k := 0; k < 3; k++ {
				st.Vertices[k][c] = tri[k+1][c]
			}
		}
		solid.AppendTriangle(st)
	}
	var buf bytes.Buffer
	require.NoError(t, solid.WriteAll(&buf))
	return buf.Bytes()
}

func TestParseMTLLegacyEncoding(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader("newmtl Caf\xe9\nmap_Kd cr\xe8me.png\n"))
	require.NoError(t, err)
	require.Len(t, mats, 1)
	assert.Equal(t, "Café", mats[0].Name())
	slot, ok := mats[0].Texture(scene.TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, "crème.png", slot.Path)
}

func TestImportBinarySTL(t *testing.T) {
	data := binarySTL(t, [][4][3]float32{
		{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 1}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	})
	sc, err := newTestContext().ImportReader(bytes.NewReader(data), "stl", "", 0)
	require.NoError(t, err)

	require.Len(t, sc.Meshes, 1)
	m := sc.Meshes[0]
	assert.Equal(t, "part", m.Name)
	assert.Len(t, m.Vertices, 6)
	assert.Len(t, m.Faces, 2)
	assert.Equal(t, mathutil.Vec3{0, 0, 1}, m.Normals[4])
	assert.Equal(t, mathutil.Vec3{1, 1, 0}, m.Vertices[4])
}

func TestImportASCIISTL(t *testing.T) {
	src := `solid tri
  facet normal 0 0 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`
	dir := t.TempDir()
	path := write(t, dir, "tri.STL", src)
	sc, err := newTestContext().ImportFile(path, scene.ProcessGenNormals)
	require.NoError(t, err)

	m := sc.Meshes[0]
	assert.Equal(t, "tri", sc.Root.Name)
	assert.Len(t, m.Faces, 1)
	require.True(t, m.HasNormals())
	assert.Equal(t, mathutil.Vec3{0, 0, 1}, m.Normals[0])
}

func TestImportSTLGarbage(t *testing.T) {
	_, err := newTestContext().ImportReader(strings.NewReader("hello"), "stl", "", 0)
	assert.Error(t, err)

	_, err = newTestContext().ImportReader(strings.NewReader("solid empty\nendsolid empty\n"), "stl", "", 0)
	assert.Error(t, err)
}

func TestImportGLB(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "plane",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: uint32(pos), gltf.TEXCOORD_0: uint32(uv)},
			Indices:    gltf.Index(uint32(idx)),
			Material:   gltf.Index(0),
		}},
	}}
	doc.Materials = []*gltf.Material{{
		Name:        "paint",
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{0, 1, 0, 1},
		},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "top", Children: []uint32{1}, Translation: [3]float32{0, 2, 0}},
		{Name: "leaf", Mesh: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []uint32{0}

	dir := t.TempDir()
	path := filepath.Join(dir, "plane.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	sc, err := newTestContext().ImportFile(path, scene.ProcessValidateDataStructure)
	require.NoError(t, err)

	top := sc.Root.Find("top")
	require.NotNil(t, top)
	assert.Equal(t, mathutil.Vec3{0, 2, 0}, top.Transform.Translation())
	leaf := sc.Root.Find("leaf")
	require.NotNil(t, leaf)
	assert.Equal(t, []int{0}, leaf.Meshes)

	m := sc.Meshes[0]
	assert.Equal(t, "plane", m.Name)
	assert.Len(t, m.Faces, 2)
	assert.Equal(t, mathutil.Vec3{1, 1, 0}, m.TextureCoords[0][1])

	mat := sc.Materials[m.MaterialIndex]
	assert.Equal(t, "paint", mat.Name())
	c, n, ok := mat.Color(scene.KeyColorDiffuse)
	require.True(t, ok)
	assert.Equal(t, 16, n)
	assert.Equal(t, scene.Color4{G: 1, A: 1}, c)
	two, _ := mat.Int(scene.KeyTwoSided)
	assert.Equal(t, int32(1), two)
}

func TestUnsupportedFormat(t *testing.T) {
	c := newTestContext()
	_, err := c.ImportFile(filepath.Join(t.TempDir(), "model.fbx"), 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = c.ImportReader(strings.NewReader(""), "3ds", "", 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.True(t, c.Supports("OBJ"))
	assert.True(t, c.Supports(".glb"))
	assert.Equal(t, []string{".glb", ".gltf", ".obj", ".stl"}, c.Extensions())
}

func TestMissingFile(t *testing.T) {
	_, err := newTestContext().ImportFile(filepath.Join(t.TempDir(), "none.obj"), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReleasePanics(t *testing.T) {
	c := newTestContext()
	c.Release()
	assert.Panics(t, func() { c.Supports(".obj") })
	assert.Panics(t, func() { c.ImportFile("x.obj", 0) })
	assert.Panics(t, func() { c.Release() })
}
