package media3d

import (
	"testing"

	"assimp-media3d/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"":        "_",
		"Body":    "Body",
		"my node": "my_node",
		"1abc":    "_1abc",
		"-abc":    "__abc",
		"-x":      "__x",
		" ":       "__",
		"a.b-c":   "a_b_c",
		"_ok_9":   "_ok_9",
		"héllo":   "héllo",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}

func TestMat4Conversion(t *testing.T) {
	m := mathutil.Mat4Translation(mathutil.Vec3{1, 2, 3})
	g := FromMat4(m)
	assert.Equal(t, mgl64.Translate3D(1, 2, 3), g)
	assert.Equal(t, m, ToMat4(g))
	assert.Equal(t, mathutil.Vec3{2, 3, 4}, TransformPoint(g, mathutil.Vec3{1, 1, 1}))
	assert.Equal(t, mathutil.Vec3{1, 1, 1}, TransformDir(g, mathutil.Vec3{1, 1, 1}))
}

func TestTransformGroupOrder(t *testing.T) {
	g := &Transform3DGroup{Children: []Transform3D{
		&ScaleTransform3D{ScaleX: 2, ScaleY: 2, ScaleZ: 2},
		&TranslateTransform3D{OffsetX: 1},
	}}
	// Scale first, then translate.
	assert.Equal(t, mathutil.Vec3{3, 2, 2}, TransformPoint(g.Value(), mathutil.Vec3{1, 1, 1}))
	assert.Equal(t, mgl64.Ident4(), Matrix(nil))
}

func TestWalkModels(t *testing.T) {
	leaf := &GeometryModel3D{Name: "leaf", Transform: &TranslateTransform3D{OffsetY: 1}}
	root := &Model3DGroup{
		Name:      "root",
		Transform: &TranslateTransform3D{OffsetX: 1},
		Children:  []Model3D{leaf, &SpotLight{PointLight: PointLight{Name: "spot"}}},
	}

	var names []string
	var leafWorld mgl64.Mat4
	WalkModels(root, mgl64.Ident4(), func(m Model3D, world mgl64.Mat4) {
		names = append(names, m.ModelName())
		if m == Model3D(leaf) {
			leafWorld = world
		}
	})
	assert.Equal(t, []string{"root", "leaf", "spot"}, names)
	assert.Equal(t, mathutil.Vec3{1, 1, 0}, TransformPoint(leafWorld, mathutil.Vec3{}))
}

func TestFirstDiffuse(t *testing.T) {
	d := NewDiffuseMaterial(NewSolidColorBrush(Gray))
	g := &MaterialGroup{Children: []Material{&EmissiveMaterial{}, &MaterialGroup{Children: []Material{d}}}}
	assert.Same(t, d, FirstDiffuse(g))
	assert.Nil(t, FirstDiffuse(&SpecularMaterial{}))
}

func TestGeometryBounds(t *testing.T) {
	g := &MeshGeometry3D{Positions: []mathutil.Vec3{{1, -1, 0}, {-2, 3, 5}}}
	min, max, ok := g.Bounds()
	assert.True(t, ok)
	assert.Equal(t, mathutil.Vec3{-2, -1, 0}, min)
	assert.Equal(t, mathutil.Vec3{1, 3, 5}, max)
	_, _, ok = (&MeshGeometry3D{}).Bounds()
	assert.False(t, ok)
}

func TestColorNRGBA(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 0, A: 2}
	n := c.NRGBA()
	assert.Equal(t, uint8(255), n.R)
	assert.Equal(t, uint8(128), n.G)
	assert.Equal(t, uint8(255), n.A)
	assert.InDelta(t, 0.5, float64(FromNRGBA(n).G), 0.01)
}
