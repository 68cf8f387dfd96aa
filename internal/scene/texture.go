package scene

import (
	"strconv"
	"strings"
)

// Texel is one uncompressed pixel of an embedded texture.
type Texel struct {
	B, G, R, A uint8
}

// Texture is an image embedded in the asset file.
// Compressed textures keep the file bytes in Data with Height == 0 and
// FormatHint naming the format ("png", "jpg"); uncompressed textures
// store Width×Height texels.
type Texture struct {
	Filename   string
	FormatHint string
	Width      int
	Height     int
	Data       []byte
	Texels     []Texel
}

// IsCompressed reports whether the texture holds encoded file bytes.
func (t *Texture) IsCompressed() bool {
	return t.Height == 0
}

// EmbeddedRef returns the material reference for embedded texture i.
func EmbeddedRef(i int) string {
	return "*" + strconv.Itoa(i)
}

// EmbeddedIndex parses a "*N" texture reference.
func EmbeddedIndex(ref string) (int, bool) {
	if !strings.HasPrefix(ref, "*") {
		return 0, false
	}
	i, err := strconv.Atoi(ref[1:])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
