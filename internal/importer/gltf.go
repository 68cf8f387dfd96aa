package importer

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"strings"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GLTF imports glTF 2.0 files, both JSON (.gltf) and binary (.glb).
// Each primitive becomes one mesh. Images stored in buffers or data URIs
// become embedded textures; external images stay file references.
type GLTF struct{}

func (*GLTF) Extensions() []string {
	return []string{".gltf", ".glb"}
}

func (*GLTF) Read(r io.Reader, dir string) (*scene.Scene, error) {
	if dir == "" {
		dir = "."
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(r, os.DirFS(dir)).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: decode: %w", err)
	}

	g := &gltfReader{doc: doc, sc: scene.New("")}
	if err := g.images(); err != nil {
		return nil, err
	}
	g.materials()
	if err := g.meshes(); err != nil {
		return nil, err
	}
	g.nodes()
	return g.sc, nil
}

type gltfReader struct {
	doc *gltf.Document
	sc  *scene.Scene

	imageRefs  []string // image index → texture reference
	meshPrims  [][]int  // glTF mesh → scene meshes
	defaultMat int
}

func (g *gltfReader) images() error {
	g.imageRefs = make([]string, len(g.doc.Images))
	for i, img := range g.doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := g.doc.BufferViews[*img.BufferView]
			buf := g.doc.Buffers[bv.Buffer].Data
			end := int(bv.ByteOffset) + int(bv.ByteLength)
			if end > len(buf) {
				return fmt.Errorf("gltf: image %d: buffer view out of range", i)
			}
			data = buf[bv.ByteOffset:end]
		case img.IsEmbeddedResource():
			d, err := img.MarshalData()
			if err != nil {
				return fmt.Errorf("gltf: image %d: %w", i, err)
			}
			data = d
		default:
			uri, err := url.PathUnescape(img.URI)
			if err != nil {
				uri = img.URI
			}
			g.imageRefs[i] = uri
			continue
		}
		g.imageRefs[i] = scene.EmbeddedRef(len(g.sc.Textures))
		g.sc.Textures = append(g.sc.Textures, &scene.Texture{
			Filename:   img.Name,
			FormatHint: formatHint(img.MimeType),
			Data:       data,
		})
	}
	return nil
}

func formatHint(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	}
	return strings.TrimPrefix(mime, "image/")
}

func (g *gltfReader) textureRef(index int) (string, bool) {
	if index < 0 || index >= len(g.doc.Textures) {
		return "", false
	}
	src := g.doc.Textures[index].Source
	if src == nil || int(*src) >= len(g.imageRefs) {
		return "", false
	}
	ref := g.imageRefs[*src]
	return ref, ref != ""
}

func (g *gltfReader) materials() {
	for _, gm := range g.doc.Materials {
		m := &scene.Material{}
		m.SetString(scene.KeyName, gm.Name)
		if gm.DoubleSided {
			m.SetInt(scene.KeyTwoSided, 1)
		}
		e := gm.EmissiveFactor
		m.SetColor3(scene.KeyColorEmissive, scene.Color4{R: float32(e[0]), G: float32(e[1]), B: float32(e[2])})

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			m.SetColor4(scene.KeyColorDiffuse, scene.Color4{R: float32(c[0]), G: float32(c[1]), B: float32(c[2]), A: float32(c[3])})
			m.SetFloats(scene.KeyOpacity, float32(c[3]))
			if ti := pbr.BaseColorTexture; ti != nil {
				if ref, ok := g.textureRef(int(ti.Index)); ok {
					m.AddTexture(scene.TextureDiffuse, scene.TextureSlot{Path: ref, UVIndex: int(ti.TexCoord)})
				}
			}
		} else {
			m.SetColor4(scene.KeyColorDiffuse, scene.Color4{R: 1, G: 1, B: 1, A: 1})
		}
		if ti := gm.EmissiveTexture; ti != nil {
			if ref, ok := g.textureRef(int(ti.Index)); ok {
				m.AddTexture(scene.TextureEmissive, scene.TextureSlot{Path: ref})
			}
		}
		g.sc.Materials = append(g.sc.Materials, m)
	}
	g.defaultMat = -1
}

func (g *gltfReader) materialIndex(p *gltf.Primitive) int {
	if p.Material != nil && int(*p.Material) < len(g.sc.Materials) {
		return int(*p.Material)
	}
	if g.defaultMat < 0 {
		g.defaultMat = len(g.sc.Materials)
		g.sc.Materials = append(g.sc.Materials, defaultMaterial())
	}
	return g.defaultMat
}

func (g *gltfReader) meshes() error {
	g.meshPrims = make([][]int, len(g.doc.Meshes))
	for mi, gm := range g.doc.Meshes {
		for pi, p := range gm.Primitives {
			m, err := g.primitive(p)
			if err != nil {
				return fmt.Errorf("gltf: mesh %d primitive %d: %w", mi, pi, err)
			}
			if m == nil {
				continue
			}
			m.Name = gm.Name
			g.meshPrims[mi] = append(g.meshPrims[mi], len(g.sc.Meshes))
			g.sc.Meshes = append(g.sc.Meshes, m)
		}
	}
	return nil
}

// primitive converts a triangle primitive. Other modes return nil.
func (g *gltfReader) primitive(p *gltf.Primitive) (*scene.Mesh, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	switch p.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, nil
	}

	pos, err := modeler.ReadPosition(g.doc, g.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	m := &scene.Mesh{MaterialIndex: g.materialIndex(p)}
	m.Vertices = make([]mathutil.Vec3, len(pos))
	for i, v := range pos {
		m.Vertices[i] = mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
	}

	if a, ok := p.Attributes[gltf.NORMAL]; ok {
		ns, err := modeler.ReadNormal(g.doc, g.doc.Accessors[a], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		if len(ns) == len(pos) {
			m.Normals = make([]mathutil.Vec3, len(ns))
			for i, n := range ns {
				m.Normals[i] = mathutil.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}
			}
		}
	}
	if a, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(g.doc, g.doc.Accessors[a], nil)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
		if len(uvs) == len(pos) {
			// glTF puts the UV origin top-left; the scene keeps it bottom-left.
			m.TextureCoords[0] = make([]mathutil.Vec3, len(uvs))
			for i, uv := range uvs {
				m.TextureCoords[0][i] = mathutil.Vec3{float64(uv[0]), 1 - float64(uv[1]), 0}
			}
			m.UVComponents[0] = 2
		}
	}

	var idx []uint32
	if p.Indices != nil {
		idx, err = modeler.ReadIndices(g.doc, g.doc.Accessors[*p.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		idx = make([]uint32, len(pos))
		for i := range idx {
			idx[i] = uint32(i)
		}
	}

	face := func(a, b, c uint32) {
		m.Faces = append(m.Faces, scene.Face{Indices: []int{int(a), int(b), int(c)}})
	}
	switch p.Mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 2; i < len(idx); i++ {
			if i%2 == 0 {
				face(idx[i-2], idx[i-1], idx[i])
			} else {
				face(idx[i-1], idx[i-2], idx[i])
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 2; i < len(idx); i++ {
			face(idx[0], idx[i-1], idx[i])
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			face(idx[i], idx[i+1], idx[i+2])
		}
	}
	m.UpdatePrimitiveTypes()
	return m, nil
}

func (g *gltfReader) nodes() {
	var roots []int
	switch {
	case len(g.doc.Scenes) > 0:
		s := 0
		if g.doc.Scene != nil && int(*g.doc.Scene) < len(g.doc.Scenes) {
			s = int(*g.doc.Scene)
		}
		g.sc.Root.Name = g.doc.Scenes[s].Name
		for _, n := range g.doc.Scenes[s].Nodes {
			roots = append(roots, int(n))
		}
	default:
		child := make(map[int]bool)
		for _, n := range g.doc.Nodes {
			for _, c := range n.Children {
				child[int(c)] = true
			}
		}
		for i := range g.doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
	}

	seen := make(map[int]bool)
	for _, i := range roots {
		g.node(g.sc.Root, i, seen)
	}
}

func (g *gltfReader) node(parent *scene.Node, i int, seen map[int]bool) {
	if i < 0 || i >= len(g.doc.Nodes) || seen[i] {
		return
	}
	seen[i] = true
	gn := g.doc.Nodes[i]

	n := parent.AddChild(scene.NewNode(gn.Name))
	if n.Name == "" {
		n.Name = fmt.Sprintf("node_%d", i)
	}
	n.Transform = nodeTransform(gn)
	if gn.Mesh != nil && int(*gn.Mesh) < len(g.meshPrims) {
		n.Meshes = append(n.Meshes, g.meshPrims[*gn.Mesh]...)
	}
	if gn.Camera != nil && int(*gn.Camera) < len(g.doc.Cameras) {
		if cam := camera(g.doc.Cameras[*gn.Camera], n.Name); cam != nil {
			g.sc.Cameras = append(g.sc.Cameras, cam)
		}
	}
	for _, c := range gn.Children {
		g.node(n, int(c), seen)
	}
}

// nodeTransform returns the node matrix in row-major order. glTF stores
// either a column-major matrix or translation, rotation and scale.
func nodeTransform(n *gltf.Node) mathutil.Mat4 {
	mat := n.MatrixOrDefault()
	var cm mathutil.Mat4
	for i := range mat {
		cm[i] = float64(mat[i])
	}
	if !cm.IsIdentity(0) {
		return cm.Transpose()
	}

	t, r, s := n.Translation, n.RotationOrDefault(), n.ScaleOrDefault()
	return mathutil.Compose(
		mathutil.Vec3{float64(t[0]), float64(t[1]), float64(t[2])},
		mathutil.Quat{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])},
		mathutil.Vec3{float64(s[0]), float64(s[1]), float64(s[2])},
	)
}

// camera converts a perspective camera. glTF gives the full vertical
// field of view; the scene keeps half the horizontal one.
func camera(c *gltf.Camera, name string) *scene.Camera {
	p := c.Perspective
	if p == nil {
		return nil
	}
	aspect := 1.0
	if p.AspectRatio != nil {
		aspect = float64(*p.AspectRatio)
	}
	far := 1000.0
	if p.Zfar != nil {
		far = float64(*p.Zfar)
	}
	return &scene.Camera{
		Name:          name,
		Up:            mathutil.Vec3{0, 1, 0},
		LookAt:        mathutil.Vec3{0, 0, -1},
		HorizontalFOV: math.Atan(aspect * math.Tan(float64(p.Yfov)/2)),
		ClipNear:      float64(p.Znear),
		ClipFar:       far,
		Aspect:        aspect,
	}
}
