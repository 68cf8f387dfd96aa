package scene

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Material property keys.
const (
	KeyName              = "?mat.name"
	KeyColorDiffuse      = "$clr.diffuse"
	KeyColorAmbient      = "$clr.ambient"
	KeyColorSpecular     = "$clr.specular"
	KeyColorEmissive     = "$clr.emissive"
	KeyColorTransparent  = "$clr.transparent"
	KeyOpacity           = "$mat.opacity"
	KeyShininess         = "$mat.shininess"
	KeyShininessStrength = "$mat.shinpercent"
	KeyTwoSided          = "$mat.twosided"
	KeyShadingModel      = "$mat.shadingm"
	KeyTextureFile       = "$tex.file"
	KeyTextureMapModeU   = "$tex.mapmodeu"
	KeyTextureMapModeV   = "$tex.mapmodev"
	KeyTextureUVIndex    = "$tex.uvwsrc"
	KeyTextureBlend      = "$tex.blend"
)

// PropertyType is the encoding of a material property's data.
type PropertyType uint8

const (
	PropertyFloat PropertyType = iota + 1
	PropertyDouble
	PropertyString
	PropertyInteger
	PropertyBuffer
)

func (t PropertyType) String() string {
	switch t {
	case PropertyFloat:
		return "float"
	case PropertyDouble:
		return "double"
	case PropertyString:
		return "string"
	case PropertyInteger:
		return "int"
	case PropertyBuffer:
		return "buffer"
	}
	return fmt.Sprintf("PropertyType(%d)", t)
}

// TextureType is the semantic of a texture slot.
type TextureType uint8

const (
	TextureNone TextureType = iota
	TextureDiffuse
	TextureSpecular
	TextureAmbient
	TextureEmissive
	TextureHeight
	TextureNormals
	TextureShininess
	TextureOpacity
	TextureDisplacement
	TextureLightmap
	TextureReflection
	TextureBaseColor
)

var textureTypeNames = [...]string{
	"none", "diffuse", "specular", "ambient", "emissive", "height",
	"normals", "shininess", "opacity", "displacement", "lightmap",
	"reflection", "basecolor",
}

func (t TextureType) String() string {
	if int(t) < len(textureTypeNames) {
		return textureTypeNames[t]
	}
	return fmt.Sprintf("TextureType(%d)", t)
}

// TextureMapMode is the addressing mode outside [0, 1].
type TextureMapMode int32

const (
	MapModeWrap TextureMapMode = iota
	MapModeClamp
	MapModeMirror
	MapModeDecal
)

func (m TextureMapMode) String() string {
	switch m {
	case MapModeWrap:
		return "wrap"
	case MapModeClamp:
		return "clamp"
	case MapModeMirror:
		return "mirror"
	case MapModeDecal:
		return "decal"
	}
	return fmt.Sprintf("TextureMapMode(%d)", int32(m))
}

// MaterialProperty is one entry of a material's sparse property set.
// Numbers are stored little-endian; strings as a uint32 length, the
// bytes and a terminating zero.
type MaterialProperty struct {
	Key      string
	Semantic TextureType
	Index    int
	Type     PropertyType
	Data     []byte
}

// Floats decodes a float or double property.
func (p *MaterialProperty) Floats() []float32 {
	switch p.Type {
	case PropertyFloat:
		out := make([]float32, len(p.Data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p.Data[i*4:]))
		}
		return out
	case PropertyDouble:
		out := make([]float32, len(p.Data)/8)
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(p.Data[i*8:])))
		}
		return out
	case PropertyInteger:
		out := make([]float32, len(p.Data)/4)
		for i := range out {
			out[i] = float32(int32(binary.LittleEndian.Uint32(p.Data[i*4:])))
		}
		return out
	}
	return nil
}

// Ints decodes an integer property.
func (p *MaterialProperty) Ints() []int32 {
	if p.Type != PropertyInteger {
		return nil
	}
	out := make([]int32, len(p.Data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(p.Data[i*4:]))
	}
	return out
}

// Str decodes a string property.
func (p *MaterialProperty) Str() (string, bool) {
	if p.Type != PropertyString || len(p.Data) < 4 {
		return "", false
	}
	n := int(binary.LittleEndian.Uint32(p.Data))
	if 4+n > len(p.Data) {
		return "", false
	}
	return string(p.Data[4 : 4+n]), true
}

// Material is a sparse property set.
type Material struct {
	Properties []*MaterialProperty
}

// Property finds a property by key, semantic and index.
func (m *Material) Property(key string, semantic TextureType, index int) *MaterialProperty {
	for _, p := range m.Properties {
		if p.Key == key && p.Semantic == semantic && p.Index == index {
			return p
		}
	}
	return nil
}

func (m *Material) set(p *MaterialProperty) {
	for i, q := range m.Properties {
		if q.Key == p.Key && q.Semantic == p.Semantic && q.Index == p.Index {
			m.Properties[i] = p
			return
		}
	}
	m.Properties = append(m.Properties, p)
}

// Name returns the material name, or "".
func (m *Material) Name() string {
	s, _ := m.Text(KeyName)
	return s
}

// Color reads a colour property and returns the number of bytes it was
// stored with. A colour stored as three floats leaves A at zero.
func (m *Material) Color(key string) (Color4, int, bool) {
	p := m.Property(key, TextureNone, 0)
	if p == nil {
		return Color4{}, 0, false
	}
	f := p.Floats()
	if len(f) < 3 {
		return Color4{}, len(p.Data), false
	}
	c := Color4{R: f[0], G: f[1], B: f[2]}
	if len(f) > 3 {
		c.A = f[3]
	}
	return c, len(p.Data), true
}

// Float reads the first value of a numeric property.
func (m *Material) Float(key string) (float32, bool) {
	p := m.Property(key, TextureNone, 0)
	if p == nil {
		return 0, false
	}
	f := p.Floats()
	if len(f) == 0 {
		return 0, false
	}
	return f[0], true
}

// Int reads the first value of an integer property.
func (m *Material) Int(key string) (int32, bool) {
	p := m.Property(key, TextureNone, 0)
	if p == nil {
		return 0, false
	}
	v := p.Ints()
	if len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// Text reads a string property.
func (m *Material) Text(key string) (string, bool) {
	p := m.Property(key, TextureNone, 0)
	if p == nil {
		return "", false
	}
	return p.Str()
}

// SetFloats stores a float property.
func (m *Material) SetFloats(key string, v ...float32) {
	m.setFloats(key, TextureNone, 0, v...)
}

func (m *Material) setFloats(key string, semantic TextureType, index int, v ...float32) {
	data := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	m.set(&MaterialProperty{Key: key, Semantic: semantic, Index: index, Type: PropertyFloat, Data: data})
}

// SetColor3 stores an RGB colour as three floats.
func (m *Material) SetColor3(key string, c Color4) {
	m.SetFloats(key, c.R, c.G, c.B)
}

// SetColor4 stores an RGBA colour as four floats.
func (m *Material) SetColor4(key string, c Color4) {
	m.SetFloats(key, c.R, c.G, c.B, c.A)
}

// SetInt stores an integer property.
func (m *Material) SetInt(key string, v int32) {
	m.setInt(key, TextureNone, 0, v)
}

func (m *Material) setInt(key string, semantic TextureType, index int, v int32) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(v))
	m.set(&MaterialProperty{Key: key, Semantic: semantic, Index: index, Type: PropertyInteger, Data: data})
}

// SetString stores a string property.
func (m *Material) SetString(key, s string) {
	m.setString(key, TextureNone, 0, s)
}

func (m *Material) setString(key string, semantic TextureType, index int, s string) {
	data := make([]byte, 4+len(s)+1)
	binary.LittleEndian.PutUint32(data, uint32(len(s)))
	copy(data[4:], s)
	m.set(&MaterialProperty{Key: key, Semantic: semantic, Index: index, Type: PropertyString, Data: data})
}

// TextureSlot describes one texture reference of a material.
type TextureSlot struct {
	Path     string
	MapModeU TextureMapMode
	MapModeV TextureMapMode
	UVIndex  int
	Blend    float32
}

// AddTexture appends a texture slot of type tt and returns its index.
func (m *Material) AddTexture(tt TextureType, slot TextureSlot) int {
	i := m.TextureCount(tt)
	m.setString(KeyTextureFile, tt, i, slot.Path)
	m.setInt(KeyTextureMapModeU, tt, i, int32(slot.MapModeU))
	m.setInt(KeyTextureMapModeV, tt, i, int32(slot.MapModeV))
	if slot.UVIndex != 0 {
		m.setInt(KeyTextureUVIndex, tt, i, int32(slot.UVIndex))
	}
	if slot.Blend != 0 {
		m.setFloats(KeyTextureBlend, tt, i, slot.Blend)
	}
	return i
}

// TextureCount returns the number of texture slots of type tt.
func (m *Material) TextureCount(tt TextureType) int {
	n := 0
	for _, p := range m.Properties {
		if p.Key == KeyTextureFile && p.Semantic == tt && p.Index+1 > n {
			n = p.Index + 1
		}
	}
	return n
}

// Texture returns texture slot i of type tt.
func (m *Material) Texture(tt TextureType, i int) (TextureSlot, bool) {
	p := m.Property(KeyTextureFile, tt, i)
	if p == nil {
		return TextureSlot{}, false
	}
	path, ok := p.Str()
	if !ok {
		return TextureSlot{}, false
	}
	slot := TextureSlot{Path: path}
	if q := m.Property(KeyTextureMapModeU, tt, i); q != nil {
		if v := q.Ints(); len(v) > 0 {
			slot.MapModeU = TextureMapMode(v[0])
		}
	}
	if q := m.Property(KeyTextureMapModeV, tt, i); q != nil {
		if v := q.Ints(); len(v) > 0 {
			slot.MapModeV = TextureMapMode(v[0])
		}
	}
	if q := m.Property(KeyTextureUVIndex, tt, i); q != nil {
		if v := q.Ints(); len(v) > 0 {
			slot.UVIndex = int(v[0])
		}
	}
	if q := m.Property(KeyTextureBlend, tt, i); q != nil {
		if v := q.Floats(); len(v) > 0 {
			slot.Blend = v[0]
		}
	}
	return slot, true
}
