package geom

import (
	"fmt"
	"math"

	"assimp-media3d/internal/mathutil"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// DominantAxis returns the axis with the largest absolute component of
// n. Ties go to x, then y.
func DominantAxis(n r3.Vec) Axis {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return AxisX
	case ay >= az:
		return AxisY
	}
	return AxisZ
}

// FaceNormal returns the unnormalized normal of the plane through the
// first three vertices of face.
func FaceNormal(positions []mathutil.Vec3, face []int) (r3.Vec, error) {
	if len(positions) < 3 || len(face) < 3 {
		return r3.Vec{}, fmt.Errorf("%w: face needs 3 vertices, got %d positions and %d indices",
			ErrInvalidArgument, len(positions), len(face))
	}
	for _, i := range face[:3] {
		if i < 0 || i >= len(positions) {
			return r3.Vec{}, fmt.Errorf("%w: index %d out of range", ErrInvalidArgument, i)
		}
	}
	p0, p1, p2 := toR3(positions[face[0]]), toR3(positions[face[1]]), toR3(positions[face[2]])
	return r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0)), nil
}

// Project maps the vertices of a planar face to 2D by dropping the
// coordinate that dominates the face normal.
func Project(positions []mathutil.Vec3, face []int) ([]mathutil.Vec2, error) {
	n, err := FaceNormal(positions, face)
	if err != nil {
		return nil, err
	}

	var u, v int
	switch DominantAxis(n) {
	case AxisX:
		u, v = 1, 2
	case AxisY:
		u, v = 0, 2
	default:
		u, v = 0, 1
	}

	out := make([]mathutil.Vec2, len(face))
	for k, i := range face {
		if i < 0 || i >= len(positions) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidArgument, i)
		}
		p := positions[i]
		out[k] = mathutil.Vec2{p[u], p[v]}
	}
	return out, nil
}

// TriangulateFace projects a face, triangulates it with tri and returns
// triangle indices into positions.
func TriangulateFace(positions []mathutil.Vec3, face []int, tri Triangulator) ([]int, error) {
	pts, err := Project(positions, face)
	if err != nil {
		return nil, err
	}
	local, err := tri(pts)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(local))
	for k, l := range local {
		if l < 0 || l >= len(face) {
			return nil, fmt.Errorf("%w: triangle index %d outside face of %d", ErrInvalidArgument, l, len(face))
		}
		out[k] = face[l]
	}
	return out, nil
}

func toR3(v mathutil.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
