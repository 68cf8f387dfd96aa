package media3d

import "image/color"

// Color is a float RGBA colour with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
	Gray  = Color{0.5, 0.5, 0.5, 1}
)

// NRGBA converts c to an 8-bit non-premultiplied colour.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// FromNRGBA converts an 8-bit colour to a float colour.
func FromNRGBA(c color.NRGBA) Color {
	return Color{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// IsBlack reports whether all colour channels are zero.
func (c Color) IsBlack() bool {
	return c.R <= 0 && c.G <= 0 && c.B <= 0
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
