package scene

import "assimp-media3d/internal/mathutil"

// Camera is a viewpoint attached to the node with the same name.
// HorizontalFOV is half the horizontal field of view, in radians.
type Camera struct {
	Name          string
	Position      mathutil.Vec3
	Up            mathutil.Vec3
	LookAt        mathutil.Vec3
	HorizontalFOV float64
	ClipNear      float64
	ClipFar       float64
	Aspect        float64
}

// LightType selects the light model.
type LightType uint8

const (
	LightUndefined LightType = iota
	LightDirectional
	LightPoint
	LightSpot
	LightAmbient
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightAmbient:
		return "ambient"
	}
	return "undefined"
}

// Light is a light source attached to the node with the same name.
// Cone angles are in radians.
type Light struct {
	Name                 string
	Type                 LightType
	Position             mathutil.Vec3
	Direction            mathutil.Vec3
	Up                   mathutil.Vec3
	Diffuse              Color4
	Specular             Color4
	Ambient              Color4
	AttenuationConstant  float64
	AttenuationLinear    float64
	AttenuationQuadratic float64
	AngleInnerCone       float64
	AngleOuterCone       float64
}
