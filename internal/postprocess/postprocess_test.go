package postprocess

import (
	"io"
	"log/slog"
	"testing"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// testScene has two quads sharing an edge and a line.
func testScene() *scene.Scene {
	sc := scene.New("root")
	m := &scene.Mesh{
		Name: "m",
		Vertices: []mathutil.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {2, 0, 0}, {2, 1, 0},
		},
		TextureCoords: [scene.MaxTexCoords][]mathutil.Vec3{
			{{0, 0, 0}, {0.5, 0, 0}, {0.5, 1, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}},
		},
		Faces: []scene.Face{
			{Indices: []int{0, 1, 2, 3}},
			{Indices: []int{1, 4, 5, 2}},
			{Indices: []int{0, 1}},
		},
	}
	m.UpdatePrimitiveTypes()
	sc.Meshes = []*scene.Mesh{m}
	sc.Materials = []*scene.Material{{}}
	sc.Root.Meshes = []int{0}
	return sc
}

func TestApplyRecordsSteps(t *testing.T) {
	sc := testScene()
	steps := scene.ProcessValidateDataStructure | scene.ProcessTriangulate | scene.ProcessFlipUVs
	require.NoError(t, Apply(sc, steps, quiet()))
	assert.True(t, sc.Applied.Has(steps))
	assert.NotZero(t, sc.Flags&scene.FlagValidated)

	m := sc.Meshes[0]
	assert.Len(t, m.Faces, 5)
	assert.Equal(t, scene.PrimitiveTriangle|scene.PrimitiveLine, m.PrimitiveTypes)
	assert.Equal(t, 1.0, m.TextureCoords[0][0][1])

	// Steps already applied do not run twice.
	require.NoError(t, Apply(sc, scene.ProcessFlipUVs, quiet()))
	assert.Equal(t, 1.0, m.TextureCoords[0][0][1])
}

func TestStepsDropOutOfRangeFaces(t *testing.T) {
	broken := func() *scene.Scene {
		sc := testScene()
		m := sc.Meshes[0]
		m.Faces = append(m.Faces,
			scene.Face{Indices: []int{0, 1, 2, 9}},
			scene.Face{Indices: []int{0, -1, 2}},
			scene.Face{},
		)
		return sc
	}

	sc := broken()
	steps := scene.ProcessTriangulate | scene.ProcessJoinIdenticalVertices | scene.ProcessGenSmoothNormals
	require.NoError(t, Apply(sc, steps, quiet()))
	m := sc.Meshes[0]
	assert.Len(t, m.Faces, 5)
	assert.Len(t, m.Normals, len(m.Vertices))

	sc = broken()
	require.NotPanics(t, func() { GenNormals(sc) })
	assert.Len(t, sc.Meshes[0].Faces, 3)

	sc = broken()
	require.NotPanics(t, func() { GenSmoothNormals(sc) })
	assert.Len(t, sc.Meshes[0].Faces, 3)
}

func TestTriangulatePolygon(t *testing.T) {
	sc := scene.New("root")
	sc.Meshes = []*scene.Mesh{{
		Vertices: []mathutil.Vec3{{0, 0, 0}, {2, 0, 0}, {2, 1, 0}, {1, 1, 0}, {1, 2, 0}, {0, 2, 0}},
		Faces:    []scene.Face{{Indices: []int{0, 1, 2, 3, 4, 5}}},
	}}
	require.NoError(t, Apply(sc, scene.ProcessTriangulate, quiet()))
	m := sc.Meshes[0]
	assert.Len(t, m.Faces, 4)
	assert.True(t, m.IsTriangulated())
}

func TestValidateErrors(t *testing.T) {
	sc := testScene()
	sc.Meshes[0].Faces = append(sc.Meshes[0].Faces, scene.Face{Indices: []int{0, 1, 9}})
	err := Apply(sc, scene.ProcessValidateDataStructure, quiet())
	assert.ErrorIs(t, err, ErrInvalidScene)
	assert.False(t, sc.Applied.Has(scene.ProcessValidateDataStructure))

	sc = testScene()
	sc.Root.Meshes = []int{3}
	assert.ErrorIs(t, Validate(sc), ErrInvalidScene)

	sc = testScene()
	sc.Meshes[0].Normals = []mathutil.Vec3{{0, 0, 1}}
	assert.ErrorIs(t, Validate(sc), ErrInvalidScene)

	sc = testScene()
	sc.Materials[0].AddTexture(scene.TextureDiffuse, scene.TextureSlot{Path: "*2"})
	assert.ErrorIs(t, Validate(sc), ErrInvalidScene)
}

func TestValidateEmptySceneIncomplete(t *testing.T) {
	sc := scene.New("root")
	require.NoError(t, Validate(sc))
	assert.NotZero(t, sc.Flags&scene.FlagIncomplete)
}

func TestGenSmoothNormals(t *testing.T) {
	sc := testScene()
	GenSmoothNormals(sc)
	m := sc.Meshes[0]
	require.Len(t, m.Normals, 6)
	for _, n := range m.Normals {
		assert.InDelta(t, 1.0, n[2], 1e-12)
	}
}

func TestGenNormalsUnshares(t *testing.T) {
	sc := testScene()
	require.NoError(t, Apply(sc, scene.ProcessTriangulate|scene.ProcessGenNormals, quiet()))
	m := sc.Meshes[0]
	assert.Equal(t, 3*4+2, len(m.Vertices))
	assert.Len(t, m.Normals, len(m.Vertices))
	assert.Len(t, m.TextureCoords[0], len(m.Vertices))
	assert.Equal(t, mathutil.Vec3{0, 0, 1}, m.Normals[0])
}

func TestGenNormalsSkippedAfterSmooth(t *testing.T) {
	sc := testScene()
	require.NoError(t, Apply(sc, scene.ProcessGenSmoothNormals|scene.ProcessGenNormals, quiet()))
	assert.Len(t, sc.Meshes[0].Vertices, 6)
	assert.False(t, sc.Applied.Has(scene.ProcessGenNormals))
}

func TestFlipWindingOrder(t *testing.T) {
	sc := testScene()
	FlipWindingOrder(sc)
	assert.Equal(t, []int{3, 2, 1, 0}, sc.Meshes[0].Faces[0].Indices)
	assert.Equal(t, []int{1, 0}, sc.Meshes[0].Faces[2].Indices)
}

func TestJoinIdenticalVertices(t *testing.T) {
	sc := testScene()
	sc.Meshes[0].Faces = sc.Meshes[0].Faces[:2]
	GenNormals(sc)
	before := len(sc.Meshes[0].Vertices)
	removed := JoinIdenticalVertices(sc)

	m := sc.Meshes[0]
	assert.Equal(t, before-6, removed)
	assert.Len(t, m.Vertices, 6)
	assert.Len(t, m.Normals, 6)
	assert.Equal(t, []int{0, 1, 2, 3}, m.Faces[0].Indices)
	assert.Equal(t, []int{1, 4, 5, 2}, m.Faces[1].Indices)
	assert.NotZero(t, sc.Flags&scene.FlagNonVerbose)
}
