package media3d

import "image"

// Brush fills a surface with a colour or an image.
type Brush interface {
	isBrush()
}

// SolidColorBrush paints a single colour.
type SolidColorBrush struct {
	Color   Color
	Opacity float64
}

// NewSolidColorBrush returns an opaque brush of c.
func NewSolidColorBrush(c Color) *SolidColorBrush {
	return &SolidColorBrush{Color: c, Opacity: 1}
}

// TileMode controls how an image brush repeats outside [0, 1].
type TileMode uint8

const (
	TileNone TileMode = iota
	TileTile
	TileFlipX
	TileFlipY
	TileFlipXY
)

func (m TileMode) String() string {
	switch m {
	case TileTile:
		return "tile"
	case TileFlipX:
		return "flipx"
	case TileFlipY:
		return "flipy"
	case TileFlipXY:
		return "flipxy"
	}
	return "none"
}

// ImageBrush paints a decoded image. Source is the file the image came
// from, if any; exporters write it back as a texture reference.
type ImageBrush struct {
	Image    *image.NRGBA
	Source   string
	TileMode TileMode
	Opacity  float64
}

func (*SolidColorBrush) isBrush() {}
func (*ImageBrush) isBrush()      {}
