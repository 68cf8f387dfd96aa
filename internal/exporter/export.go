// Package exporter turns a Media3D visual tree back into a scene graph
// and writes scenes to glTF, GLB or STL files.
package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"assimp-media3d/internal/convert"
	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"

	"github.com/HugoSmits86/nativewebp"
)

// Options configures Export.
type Options struct {
	// Camera, when set, is exported as the scene camera.
	Camera *media3d.PerspectiveCamera
	Logger *slog.Logger
}

type exporter struct {
	log       *slog.Logger
	sc        *scene.Scene
	materials map[materialKey]int
	images    map[*image.NRGBA]string
	meshes    map[*media3d.MeshGeometry3D]int
	names     map[string]int
}

type materialKey struct {
	front, back media3d.Material
}

// Export converts the visual tree under root. Visuals and model groups
// become nodes; geometry becomes triangle meshes with the texture V axis
// flipped back; each distinct material becomes one scene material.
// Image brushes without a source file are embedded as WebP.
func Export(root *media3d.ModelVisual3D, opts Options) (*scene.Scene, error) {
	if root == nil {
		return nil, errors.New("exporter: nil visual")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &exporter{
		log:       log,
		materials: make(map[materialKey]int),
		images:    make(map[*image.NRGBA]string),
		meshes:    make(map[*media3d.MeshGeometry3D]int),
		names:     make(map[string]int),
	}
	e.sc = scene.New(e.name(root.Name, "Root"))
	if err := e.visual(e.sc.Root, root, true); err != nil {
		return nil, err
	}
	if opts.Camera != nil {
		e.camera(opts.Camera)
	}
	e.sc.Applied = scene.ProcessTriangulate
	if len(e.sc.Meshes) == 0 {
		e.sc.Flags |= scene.FlagIncomplete
	}
	return e.sc, nil
}

// name returns a unique node name.
func (e *exporter) name(raw, fallback string) string {
	if raw == "" {
		raw = fallback
	}
	n := e.names[raw]
	e.names[raw] = n + 1
	if n == 0 {
		return raw
	}
	return fmt.Sprintf("%s_%d", raw, n+1)
}

func transform(t media3d.Transform3D) mathutil.Mat4 {
	return media3d.ToMat4(media3d.Matrix(t))
}

func (e *exporter) visual(node *scene.Node, v *media3d.ModelVisual3D, isRoot bool) error {
	if !isRoot {
		node = node.AddChild(scene.NewNode(e.name(v.Name, "Visual")))
	}
	node.Transform = transform(v.Transform)
	if v.Content != nil {
		if err := e.model(node, v.Content); err != nil {
			return err
		}
	}
	for _, c := range v.Children {
		if err := e.visual(node, c, false); err != nil {
			return err
		}
	}
	return nil
}

func (e *exporter) model(parent *scene.Node, m media3d.Model3D) error {
	switch m := m.(type) {
	case *media3d.Model3DGroup:
		n := parent.AddChild(scene.NewNode(e.name(m.Name, "Group")))
		n.Transform = transform(m.Transform)
		for _, c := range m.Children {
			if err := e.model(n, c); err != nil {
				return err
			}
		}
	case *media3d.GeometryModel3D:
		if m.Geometry == nil {
			return nil
		}
		idx, err := e.mesh(m)
		if err != nil {
			return err
		}
		n := parent
		if m.Transform != nil {
			n = parent.AddChild(scene.NewNode(e.name(m.Name, "Model")))
			n.Transform = transform(m.Transform)
		}
		n.Meshes = append(n.Meshes, idx)
	case *media3d.AmbientLight:
		e.light(parent, m.Name, m.Transform, &scene.Light{Type: scene.LightAmbient, Ambient: color4(m.Color), Diffuse: color4(m.Color)})
	case *media3d.DirectionalLight:
		e.light(parent, m.Name, m.Transform, &scene.Light{Type: scene.LightDirectional, Diffuse: color4(m.Color), Direction: m.Direction})
	case *media3d.PointLight:
		e.light(parent, m.Name, m.Transform, pointLight(m, scene.LightPoint))
	case *media3d.SpotLight:
		l := pointLight(&m.PointLight, scene.LightSpot)
		l.Direction = m.Direction
		l.AngleInnerCone = mathutil.Deg2Rad(m.InnerConeAngle)
		l.AngleOuterCone = mathutil.Deg2Rad(m.OuterConeAngle)
		e.light(parent, m.Name, m.Transform, l)
	default:
		e.log.Warn("skipping unknown model type", "type", fmt.Sprintf("%T", m))
	}
	return nil
}

func pointLight(p *media3d.PointLight, t scene.LightType) *scene.Light {
	return &scene.Light{
		Type:                 t,
		Diffuse:              color4(p.Color),
		Position:             p.Position,
		AttenuationConstant:  p.ConstantAttenuation,
		AttenuationLinear:    p.LinearAttenuation,
		AttenuationQuadratic: p.QuadraticAttenuation,
	}
}

// light adds l with a node of the same name carrying its placement.
func (e *exporter) light(parent *scene.Node, name string, t media3d.Transform3D, l *scene.Light) {
	n := parent.AddChild(scene.NewNode(e.name(name, "Light")))
	n.Transform = transform(t)
	l.Name = n.Name
	e.sc.Lights = append(e.sc.Lights, l)
}

func (e *exporter) camera(c *media3d.PerspectiveCamera) {
	n := e.sc.Root.AddChild(scene.NewNode(e.name(c.Name, "Camera")))
	e.sc.Cameras = append(e.sc.Cameras, &scene.Camera{
		Name:          n.Name,
		Position:      c.Position,
		LookAt:        c.LookDirection,
		Up:            c.UpDirection,
		HorizontalFOV: mathutil.Deg2Rad(c.FieldOfView) / 2,
		ClipNear:      c.NearPlaneDistance,
		ClipFar:       c.FarPlaneDistance,
	})
}

func (e *exporter) mesh(gm *media3d.GeometryModel3D) (int, error) {
	g := gm.Geometry
	mat, err := e.material(gm.Material, gm.BackMaterial)
	if err != nil {
		return 0, err
	}
	if idx, ok := e.meshes[g]; ok && e.sc.Meshes[idx].MaterialIndex == mat {
		return idx, nil
	}
	if len(g.TriangleIndices)%3 != 0 {
		return 0, fmt.Errorf("exporter: model %q has %d triangle indices", gm.Name, len(g.TriangleIndices))
	}

	m := &scene.Mesh{
		Name:          gm.Name,
		Vertices:      append([]mathutil.Vec3(nil), g.Positions...),
		MaterialIndex: mat,
	}
	if len(g.Normals) == len(g.Positions) {
		m.Normals = append([]mathutil.Vec3(nil), g.Normals...)
	}
	if len(g.TextureCoordinates) == len(g.Positions) && len(g.Positions) > 0 {
		m.TextureCoords[0] = make([]mathutil.Vec3, len(g.TextureCoordinates))
		for i, uv := range g.TextureCoordinates {
			m.TextureCoords[0][i] = mathutil.Vec3{uv[0], convert.FlipV(uv[1]), 0}
		}
		m.UVComponents[0] = 2
	}
	for i := 0; i+2 < len(g.TriangleIndices); i += 3 {
		t := g.TriangleIndices[i : i+3]
		m.Faces = append(m.Faces, scene.Face{Indices: []int{t[0], t[1], t[2]}})
	}
	m.UpdatePrimitiveTypes()

	idx := len(e.sc.Meshes)
	e.sc.Meshes = append(e.sc.Meshes, m)
	e.meshes[g] = idx
	return idx, nil
}

func color4(c media3d.Color) scene.Color4 {
	return scene.Color4{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (e *exporter) material(front, back media3d.Material) (int, error) {
	key := materialKey{front, back}
	if idx, ok := e.materials[key]; ok {
		return idx, nil
	}

	m := &scene.Material{}
	m.SetString(scene.KeyName, fmt.Sprintf("Material_%d", len(e.sc.Materials)))
	if back != nil {
		m.SetInt(scene.KeyTwoSided, 1)
	}

	var err error
	media3d.WalkMaterials(front, func(x media3d.Material) {
		if err != nil {
			return
		}
		switch x := x.(type) {
		case *media3d.DiffuseMaterial:
			err = e.brush(m, x.Brush, scene.KeyColorDiffuse, scene.TextureDiffuse)
		case *media3d.SpecularMaterial:
			err = e.brush(m, x.Brush, scene.KeyColorSpecular, scene.TextureSpecular)
			m.SetFloats(scene.KeyShininess, float32(x.SpecularPower))
		case *media3d.EmissiveMaterial:
			err = e.brush(m, x.Brush, scene.KeyColorEmissive, scene.TextureEmissive)
		}
	})
	if err != nil {
		return 0, err
	}

	idx := len(e.sc.Materials)
	e.sc.Materials = append(e.sc.Materials, m)
	e.materials[key] = idx
	return idx, nil
}

func (e *exporter) brush(m *scene.Material, b media3d.Brush, colorKey string, tt scene.TextureType) error {
	switch b := b.(type) {
	case *media3d.SolidColorBrush:
		m.SetColor4(colorKey, color4(b.Color))
		if tt == scene.TextureDiffuse && b.Opacity != 1 {
			m.SetFloats(scene.KeyOpacity, float32(b.Opacity))
		}
	case *media3d.ImageBrush:
		ref := b.Source
		if ref == "" {
			var err error
			if ref, err = e.embed(b.Image); err != nil {
				return err
			}
		}
		if ref == "" {
			return nil
		}
		mode := mapMode(b.TileMode)
		m.AddTexture(tt, scene.TextureSlot{Path: ref, MapModeU: mode[0], MapModeV: mode[1]})
		if tt == scene.TextureDiffuse && b.Opacity != 1 {
			m.SetFloats(scene.KeyOpacity, float32(b.Opacity))
		}
	}
	return nil
}

func mapMode(t media3d.TileMode) [2]scene.TextureMapMode {
	switch t {
	case media3d.TileTile:
		return [2]scene.TextureMapMode{scene.MapModeWrap, scene.MapModeWrap}
	case media3d.TileFlipX:
		return [2]scene.TextureMapMode{scene.MapModeMirror, scene.MapModeWrap}
	case media3d.TileFlipY:
		return [2]scene.TextureMapMode{scene.MapModeWrap, scene.MapModeMirror}
	case media3d.TileFlipXY:
		return [2]scene.TextureMapMode{scene.MapModeMirror, scene.MapModeMirror}
	}
	return [2]scene.TextureMapMode{scene.MapModeClamp, scene.MapModeClamp}
}

// embed stores img as a WebP embedded texture and returns its reference.
func (e *exporter) embed(img *image.NRGBA) (string, error) {
	if img == nil {
		return "", nil
	}
	if ref, ok := e.images[img]; ok {
		return ref, nil
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return "", fmt.Errorf("exporter: webp encode: %w", err)
	}
	ref := scene.EmbeddedRef(len(e.sc.Textures))
	e.sc.Textures = append(e.sc.Textures, &scene.Texture{FormatHint: "webp", Data: buf.Bytes()})
	e.images[img] = ref
	return ref, nil
}
