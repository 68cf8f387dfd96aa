package media3d

import (
	"assimp-media3d/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

// Model3D is an element of a model tree.
type Model3D interface {
	ModelName() string
	ModelTransform() Transform3D
}

// Model3DGroup groups models under one transform.
type Model3DGroup struct {
	Name      string
	Transform Transform3D
	Children  []Model3D
}

// GeometryModel3D renders a mesh with a front and optional back material.
type GeometryModel3D struct {
	Name         string
	Geometry     *MeshGeometry3D
	Material     Material
	BackMaterial Material
	Transform    Transform3D
}

// AmbientLight lights every surface uniformly.
type AmbientLight struct {
	Name      string
	Color     Color
	Transform Transform3D
}

// DirectionalLight is a light at infinity.
type DirectionalLight struct {
	Name      string
	Color     Color
	Direction mathutil.Vec3
	Transform Transform3D
}

// PointLight radiates from a position with distance attenuation.
type PointLight struct {
	Name                 string
	Color                Color
	Position             mathutil.Vec3
	Range                float64
	ConstantAttenuation  float64
	LinearAttenuation    float64
	QuadraticAttenuation float64
	Transform            Transform3D
}

// SpotLight is a point light restricted to a cone. Angles are in degrees.
type SpotLight struct {
	PointLight
	Direction      mathutil.Vec3
	InnerConeAngle float64
	OuterConeAngle float64
}

func (m *Model3DGroup) ModelName() string {
	return m.Name
}

func (m *Model3DGroup) ModelTransform() Transform3D {
	return m.Transform
}

func (m *GeometryModel3D) ModelName() string {
	return m.Name
}

func (m *GeometryModel3D) ModelTransform() Transform3D {
	return m.Transform
}

func (l *AmbientLight) ModelName() string {
	return l.Name
}

func (l *AmbientLight) ModelTransform() Transform3D {
	return l.Transform
}

func (l *DirectionalLight) ModelName() string {
	return l.Name
}

func (l *DirectionalLight) ModelTransform() Transform3D {
	return l.Transform
}

func (l *PointLight) ModelName() string {
	return l.Name
}

func (l *PointLight) ModelTransform() Transform3D {
	return l.Transform
}

// WalkModels visits m and its descendants with their accumulated
// transforms. parent is the transform above m.
func WalkModels(m Model3D, parent mgl64.Mat4, fn func(m Model3D, world mgl64.Mat4)) {
	if m == nil {
		return
	}
	world := parent.Mul4(Matrix(m.ModelTransform()))
	fn(m, world)
	if g, ok := m.(*Model3DGroup); ok {
		for _, c := range g.Children {
			WalkModels(c, world, fn)
		}
	}
}

// PerspectiveCamera looks along LookDirection. FieldOfView is the full
// horizontal angle in degrees.
type PerspectiveCamera struct {
	Name              string
	Position          mathutil.Vec3
	LookDirection     mathutil.Vec3
	UpDirection       mathutil.Vec3
	FieldOfView       float64
	NearPlaneDistance float64
	FarPlaneDistance  float64
}
