package raster

import "assimp-media3d/internal/mathutil"

// View angles of the default three-quarter preview, in degrees.
const (
	DefaultYaw   = -30
	DefaultPitch = 20
)

// ViewMatrix rotates world space into view space: yaw about Y first,
// then pitch about X, then roll about Z. The viewer looks down -Z.
func ViewMatrix(yaw, pitch, roll float64) mathutil.Mat3 {
	ry := mathutil.RotY(mathutil.Deg2Rad(yaw))
	rx := mathutil.RotX(mathutil.Deg2Rad(pitch))
	rz := mathutil.RotZ(mathutil.Deg2Rad(roll))
	return mathutil.Mat3Mul(rz, mathutil.Mat3Mul(rx, ry))
}

// DefaultView is the view used when Options.View is unset.
func DefaultView() mathutil.Mat3 {
	return ViewMatrix(DefaultYaw, DefaultPitch, 0)
}
