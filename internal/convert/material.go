package convert

import (
	"errors"

	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"
	"assimp-media3d/internal/texture"
)

// ConvertMaterial maps a scene material to a Media3D material.
//
// A non-black emissive colour wins and yields a black diffuse layer
// under an emissive one. Otherwise the diffuse layer comes from the
// first diffuse (or base colour) texture that resolves, else from the
// diffuse colour, with the opacity applied to the brush. A specular
// layer is added when the shininess is positive and the specular colour
// is not black. With neither layer the default material is returned.
func (c *Converter) ConvertMaterial(mat *scene.Material, textures *texture.Cache) media3d.Material {
	if mat == nil {
		return c.opts.DefaultMaterial
	}
	name := mat.Name()

	if e, _, ok := mat.Color(scene.KeyColorEmissive); ok && (e.R > 0 || e.G > 0 || e.B > 0) {
		ec := opaque(e)
		return &media3d.MaterialGroup{Children: []media3d.Material{
			&media3d.DiffuseMaterial{Brush: media3d.NewSolidColorBrush(media3d.Black), Color: media3d.White, AmbientColor: media3d.White},
			&media3d.EmissiveMaterial{Brush: media3d.NewSolidColorBrush(ec), Color: ec},
		}}
	}

	opacity := 1.0
	if v, ok := mat.Float(scene.KeyOpacity); ok {
		opacity = float64(v)
	}

	var diffuse media3d.Material
	if b := c.textureBrush(mat, textures, opacity); b != nil {
		diffuse = media3d.NewDiffuseMaterial(b)
	} else if d, n, ok := mat.Color(scene.KeyColorDiffuse); ok {
		// Three-float colours carry no alpha; the reader leaves it at 0.
		if d.A == 0 && n == 12 {
			d.A = 1
		}
		diffuse = media3d.NewDiffuseMaterial(&media3d.SolidColorBrush{Color: toColor(d), Opacity: opacity})
	}

	var specular media3d.Material
	if shin, ok := mat.Float(scene.KeyShininess); ok && shin > 0 {
		if s, _, ok := mat.Color(scene.KeyColorSpecular); ok && !s.IsBlack() {
			strength := float32(1)
			if v, ok := mat.Float(scene.KeyShininessStrength); ok {
				strength = v
			}
			sc := opaque(s)
			specular = &media3d.SpecularMaterial{
				Brush:         media3d.NewSolidColorBrush(sc),
				Color:         sc,
				SpecularPower: float64(shin * strength),
			}
		}
	}

	switch {
	case diffuse != nil && specular != nil:
		return &media3d.MaterialGroup{Children: []media3d.Material{diffuse, specular}}
	case diffuse != nil:
		return diffuse
	case specular != nil:
		return specular
	}
	c.log.Debug("material has no diffuse or specular component", "material", name)
	return c.opts.DefaultMaterial
}

func (c *Converter) textureBrush(mat *scene.Material, textures *texture.Cache, opacity float64) *media3d.ImageBrush {
	if textures == nil {
		return nil
	}
	for _, tt := range []scene.TextureType{scene.TextureDiffuse, scene.TextureBaseColor} {
		slot, ok := mat.Texture(tt, 0)
		if !ok {
			continue
		}
		img, src, err := textures.Load(slot.Path)
		if err != nil {
			if errors.Is(err, texture.ErrNotFound) {
				c.log.Warn("texture not found", "material", mat.Name(), "ref", slot.Path)
			} else {
				c.log.Warn("texture not loaded", "material", mat.Name(), "ref", slot.Path, "err", err)
			}
			continue
		}
		return &media3d.ImageBrush{
			Image:    img,
			Source:   src.Path,
			TileMode: tileMode(slot.MapModeU, slot.MapModeV),
			Opacity:  opacity,
		}
	}
	return nil
}

func tileMode(u, v scene.TextureMapMode) media3d.TileMode {
	switch {
	case u == scene.MapModeMirror && v == scene.MapModeMirror:
		return media3d.TileFlipXY
	case u == scene.MapModeMirror:
		return media3d.TileFlipX
	case v == scene.MapModeMirror:
		return media3d.TileFlipY
	case u == scene.MapModeWrap || v == scene.MapModeWrap:
		return media3d.TileTile
	}
	return media3d.TileNone
}

func toColor(c scene.Color4) media3d.Color {
	return media3d.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func opaque(c scene.Color4) media3d.Color {
	return media3d.Color{R: c.R, G: c.G, B: c.B, A: 1}
}
