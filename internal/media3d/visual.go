package media3d

import "github.com/go-gl/mathgl/mgl64"

// ModelVisual3D is a node of the visual tree.
type ModelVisual3D struct {
	Name      string
	Content   Model3D
	Transform Transform3D
	Children  []*ModelVisual3D
}

// Walk visits v and its descendants depth-first with their world
// transforms.
func (v *ModelVisual3D) Walk(fn func(v *ModelVisual3D, world mgl64.Mat4)) {
	v.walk(mgl64.Ident4(), fn)
}

func (v *ModelVisual3D) walk(parent mgl64.Mat4, fn func(*ModelVisual3D, mgl64.Mat4)) {
	world := parent.Mul4(Matrix(v.Transform))
	fn(v, world)
	for _, c := range v.Children {
		c.walk(world, fn)
	}
}
