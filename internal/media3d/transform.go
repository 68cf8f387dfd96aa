package media3d

import (
	"assimp-media3d/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform3D is an affine transform. A nil Transform3D is identity.
type Transform3D interface {
	Value() mgl64.Mat4
}

// TranslateTransform3D moves by an offset.
type TranslateTransform3D struct {
	OffsetX, OffsetY, OffsetZ float64
}

func (t *TranslateTransform3D) Value() mgl64.Mat4 {
	return mgl64.Translate3D(t.OffsetX, t.OffsetY, t.OffsetZ)
}

// ScaleTransform3D scales about the origin.
type ScaleTransform3D struct {
	ScaleX, ScaleY, ScaleZ float64
}

func (t *ScaleTransform3D) Value() mgl64.Mat4 {
	return mgl64.Scale3D(t.ScaleX, t.ScaleY, t.ScaleZ)
}

// MatrixTransform3D is a general 4×4 transform (column vectors).
type MatrixTransform3D struct {
	Matrix mgl64.Mat4
}

func (t *MatrixTransform3D) Value() mgl64.Mat4 {
	return t.Matrix
}

// Transform3DGroup applies its children in order: the first child is
// applied to points first.
type Transform3DGroup struct {
	Children []Transform3D
}

func (t *Transform3DGroup) Value() mgl64.Mat4 {
	m := mgl64.Ident4()
	for _, c := range t.Children {
		m = Matrix(c).Mul4(m)
	}
	return m
}

// Matrix returns the value of t, or identity for nil.
func Matrix(t Transform3D) mgl64.Mat4 {
	if t == nil {
		return mgl64.Ident4()
	}
	return t.Value()
}

// FromMat4 converts a row-major scene matrix to a column-major mgl64 one.
func FromMat4(m mathutil.Mat4) mgl64.Mat4 {
	var g mgl64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			g.Set(r, c, m[r*4+c])
		}
	}
	return g
}

// ToMat4 converts an mgl64 matrix to the row-major scene layout.
func ToMat4(g mgl64.Mat4) mathutil.Mat4 {
	var m mathutil.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = g.At(r, c)
		}
	}
	return m
}

// TransformPoint applies m to p.
func TransformPoint(m mgl64.Mat4, p mathutil.Vec3) mathutil.Vec3 {
	v := m.Mul4x1(mgl64.Vec4{p[0], p[1], p[2], 1})
	return mathutil.Vec3{v[0], v[1], v[2]}
}

// TransformDir applies the linear part of m to d.
func TransformDir(m mgl64.Mat4, d mathutil.Vec3) mathutil.Vec3 {
	v := m.Mul4x1(mgl64.Vec4{d[0], d[1], d[2], 0})
	return mathutil.Vec3{v[0], v[1], v[2]}
}
