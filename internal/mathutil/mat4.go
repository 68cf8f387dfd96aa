package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major with the translation in the
// fourth column (a4, b4, c4), the layout scene graphs use for node
// transforms.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Translation returns a pure translation matrix.
func Mat4Translation(t Vec3) Mat4 {
	m := Mat4Identity()
	m[3], m[7], m[11] = t[0], t[1], t[2]
	return m
}

// Mat4Scale returns a pure scale matrix.
func Mat4Scale(s Vec3) Mat4 {
	m := Mat4Identity()
	m[0], m[5], m[10] = s[0], s[1], s[2]
	return m
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulDir transforms a direction (w=0); translation is ignored.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// Translation returns the offset stored in the fourth column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[c*4+r] = m[r*4+c]
		}
	}
	return t
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Compose builds T × R × S from a translation, rotation quaternion and scale.
func Compose(t Vec3, q Quat, s Vec3) Mat4 {
	r := q.Mat3()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row*3+col] *= s[col]
		}
	}
	return FromMat3Translation(r, t)
}

// IsIdentity checks if the matrix is identity within eps.
func (m Mat4) IsIdentity(eps float64) bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(m[i]-id[i]) > eps {
			return false
		}
	}
	return true
}
