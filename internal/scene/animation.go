package scene

import "assimp-media3d/internal/mathutil"

// VectorKey is a time-stamped position or scale.
type VectorKey struct {
	Time  float64
	Value mathutil.Vec3
}

// QuatKey is a time-stamped rotation.
type QuatKey struct {
	Time  float64
	Value mathutil.Quat
}

// NodeAnim animates one node by name.
type NodeAnim struct {
	NodeName     string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScalingKeys  []VectorKey
}

// Animation is a set of node channels sharing one timeline.
type Animation struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []*NodeAnim
}
