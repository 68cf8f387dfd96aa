// Package geom turns polygon faces into triangles: fan and ear-clipping
// triangulation of 2D polygons, projection of planar 3D faces to 2D and
// a quad fast path.
package geom

import (
	"errors"
	"fmt"

	"assimp-media3d/internal/mathutil"
)

// ErrInvalidArgument is returned for polygons with too few points or
// out-of-range indices.
var ErrInvalidArgument = errors.New("geom: invalid argument")

// Triangulator splits a simple polygon into triangles and returns
// 3×(n−2) indices into points.
type Triangulator func(points []mathutil.Vec2) ([]int, error)

const earEpsilon = 1e-12

// Fan connects every vertex to vertex 0. Correct for convex polygons only.
func Fan(points []mathutil.Vec2) ([]int, error) {
	n := len(points)
	if n < 3 {
		return nil, fmt.Errorf("%w: polygon needs 3 points, got %d", ErrInvalidArgument, n)
	}
	return fanIndices(n), nil
}

func fanIndices(n int) []int {
	out := make([]int, 0, 3*(n-2))
	for i := 1; i < n-1; i++ {
		out = append(out, 0, i, i+1)
	}
	return out
}

// EarClip triangulates a simple, possibly concave polygon by cutting
// off ears. Triangles keep the winding of the input.
//
// If no ear can be found (self-intersecting or degenerate input) the
// current candidate is cut anyway, so the result always has n−2
// triangles.
func EarClip(points []mathutil.Vec2) ([]int, error) {
	n := len(points)
	if n < 3 {
		return nil, fmt.Errorf("%w: polygon needs 3 points, got %d", ErrInvalidArgument, n)
	}

	orient := 1.0
	if SignedArea(points) < 0 {
		orient = -1
	}

	ring := make([]int, n)
	for i := range ring {
		ring[i] = i
	}

	out := make([]int, 0, 3*(n-2))
	i, stall := 0, 0
	for len(ring) > 3 {
		m := len(ring)
		j := (i + 1) % m
		a, b, c := ring[i], ring[j], ring[(i+2)%m]
		if stall >= m || isEar(points, ring, a, b, c, orient) {
			out = append(out, a, b, c)
			ring = append(ring[:j], ring[j+1:]...)
			if j < i {
				i--
			}
			stall = 0
			continue
		}
		i = j
		stall++
	}
	return append(out, ring[0], ring[1], ring[2]), nil
}

func isEar(points []mathutil.Vec2, ring []int, a, b, c int, orient float64) bool {
	pa, pb, pc := points[a], points[b], points[c]
	if pb.Sub(pa).Cross(pc.Sub(pb))*orient <= earEpsilon {
		return false
	}
	for _, k := range ring {
		if k == a || k == b || k == c {
			continue
		}
		p := points[k]
		if p == pa || p == pb || p == pc {
			continue
		}
		if inTriangle(p, pa, pb, pc, orient) {
			return false
		}
	}
	return true
}

// inTriangle reports whether p lies inside or on the edges of abc.
func inTriangle(p, a, b, c mathutil.Vec2, orient float64) bool {
	d1 := b.Sub(a).Cross(p.Sub(a)) * orient
	d2 := c.Sub(b).Cross(p.Sub(b)) * orient
	d3 := a.Sub(c).Cross(p.Sub(c)) * orient
	return d1 >= -earEpsilon && d2 >= -earEpsilon && d3 >= -earEpsilon
}

// SignedArea returns the shoelace area; positive for counter-clockwise.
func SignedArea(points []mathutil.Vec2) float64 {
	var s float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		s += p[0]*q[1] - q[0]*p[1]
	}
	return s / 2
}
