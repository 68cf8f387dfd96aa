package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"assimp-media3d/internal/scene"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// SupportedExtensions are raster formats loaded directly, in the order
// the fallback search prefers them.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff"}

// ExtendedExtensions are decodable formats only used when no supported
// sibling file exists.
var ExtendedExtensions = []string{".tga", ".webp"}

// IsSupported reports whether ext (with dot, any case) is directly supported.
func IsSupported(ext string) bool {
	return contains(SupportedExtensions, strings.ToLower(ext))
}

// IsExtended reports whether ext can be decoded through an extended codec.
func IsExtended(ext string) bool {
	return contains(ExtendedExtensions, strings.ToLower(ext))
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// LoadFile reads and decodes an image file.
func LoadFile(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, _, err := Decode(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}

// decoders maps a format name to its codec. image.Decode is not used:
// the tga package registers an empty magic that matches every input.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"png":  png.Decode,
	"jpg":  jpeg.Decode,
	"jpeg": jpeg.Decode,
	"gif":  gif.Decode,
	"bmp":  bmp.Decode,
	"tif":  tiff.Decode,
	"tiff": tiff.Decode,
	"webp": webp.Decode,
	"tga":  tga.Decode,
}

// Decode decodes encoded image bytes. hint is a file extension or format
// name used when the content cannot be sniffed (TGA has no magic).
func Decode(data []byte, hint string) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("texture: empty image data")
	}
	format := strings.TrimPrefix(strings.ToLower(hint), ".")
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		format = kind.Extension
	}

	decode, ok := decoders[format]
	if !ok {
		return nil, format, fmt.Errorf("texture: unknown image format %q", format)
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("texture: %s: %w", format, err)
	}
	return toNRGBA(img), format, nil
}

// DecodeEmbedded converts an embedded scene texture to an image.
func DecodeEmbedded(t *scene.Texture) (*image.NRGBA, error) {
	if t.IsCompressed() {
		img, _, err := Decode(t.Data, t.FormatHint)
		return img, err
	}
	if t.Width <= 0 || t.Height <= 0 || len(t.Texels) < t.Width*t.Height {
		return nil, fmt.Errorf("texture: embedded %dx%d with %d texels", t.Width, t.Height, len(t.Texels))
	}
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, px := range t.Texels[:t.Width*t.Height] {
		img.Pix[i*4] = px.R
		img.Pix[i*4+1] = px.G
		img.Pix[i*4+2] = px.B
		img.Pix[i*4+3] = px.A
	}
	return img, nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
