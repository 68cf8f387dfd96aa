package convert

import (
	"math"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"
)

// Epsilon is the tolerance for treating a matrix term as zero or one.
const Epsilon = 2.22e-15

// ClassifyTransform returns the simplest transform equal to m (row-major,
// translation in the last column). Identity gives nil.
func ClassifyTransform(m mathutil.Mat4) media3d.Transform3D {
	if m.IsIdentity(Epsilon) {
		return nil
	}
	for _, i := range []int{1, 2, 4, 6, 8, 9, 12, 13, 14} {
		if math.Abs(m[i]) > Epsilon {
			return &media3d.MatrixTransform3D{Matrix: media3d.FromMat4(m)}
		}
	}
	if math.Abs(m[15]-1) > Epsilon {
		return &media3d.MatrixTransform3D{Matrix: media3d.FromMat4(m)}
	}

	unitDiag := near(m[0], 1) && near(m[5], 1) && near(m[10], 1)
	if unitDiag {
		return &media3d.TranslateTransform3D{OffsetX: m[3], OffsetY: m[7], OffsetZ: m[11]}
	}
	if near(m[3], 0) && near(m[7], 0) && near(m[11], 0) {
		return &media3d.ScaleTransform3D{ScaleX: m[0], ScaleY: m[5], ScaleZ: m[10]}
	}
	return &media3d.MatrixTransform3D{Matrix: media3d.FromMat4(m)}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}
