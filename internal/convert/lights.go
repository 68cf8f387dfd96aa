package convert

import (
	"math"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"
)

// placement returns the world transform of the node named name, or
// identity when the scene has no such node.
func placement(sc *scene.Scene, name string) mathutil.Mat4 {
	if n := sc.Root.Find(name); n != nil {
		return n.WorldTransform()
	}
	return mathutil.Mat4Identity()
}

// ConvertLight maps a scene light, placed by the node of the same name.
// Undefined lights return nil.
func (c *Converter) ConvertLight(sc *scene.Scene, l *scene.Light) media3d.Model3D {
	w := placement(sc, l.Name)
	name := media3d.SanitizeName(l.Name)
	pos := w.MulPoint(l.Position)
	dir := w.MulDir(l.Direction)

	switch l.Type {
	case scene.LightAmbient:
		col := l.Ambient
		if col.IsBlack() {
			col = l.Diffuse
		}
		return &media3d.AmbientLight{Name: name, Color: opaque(col)}
	case scene.LightDirectional:
		return &media3d.DirectionalLight{Name: name, Color: opaque(l.Diffuse), Direction: dir}
	case scene.LightPoint:
		p := pointLight(name, l, pos)
		return &p
	case scene.LightSpot:
		return &media3d.SpotLight{
			PointLight:     pointLight(name, l, pos),
			Direction:      dir,
			InnerConeAngle: mathutil.Rad2Deg(l.AngleInnerCone),
			OuterConeAngle: mathutil.Rad2Deg(l.AngleOuterCone),
		}
	}
	return nil
}

func pointLight(name string, l *scene.Light, pos mathutil.Vec3) media3d.PointLight {
	return media3d.PointLight{
		Name:                 name,
		Color:                opaque(l.Diffuse),
		Position:             pos,
		Range:                math.Inf(1),
		ConstantAttenuation:  l.AttenuationConstant,
		LinearAttenuation:    l.AttenuationLinear,
		QuadraticAttenuation: l.AttenuationQuadratic,
	}
}

// ConvertCamera maps a scene camera. The half horizontal angle in
// radians becomes a full field of view in degrees.
func (c *Converter) ConvertCamera(sc *scene.Scene, cam *scene.Camera) *media3d.PerspectiveCamera {
	w := placement(sc, cam.Name)
	return &media3d.PerspectiveCamera{
		Name:              media3d.SanitizeName(cam.Name),
		Position:          w.MulPoint(cam.Position),
		LookDirection:     w.MulDir(cam.LookAt),
		UpDirection:       w.MulDir(cam.Up),
		FieldOfView:       2 * mathutil.Rad2Deg(cam.HorizontalFOV),
		NearPlaneDistance: cam.ClipNear,
		FarPlaneDistance:  cam.ClipFar,
	}
}
