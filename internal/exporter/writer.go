package exporter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"github.com/flywave/go-stl"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrUnsupportedFormat is returned for output extensions no writer handles.
var ErrUnsupportedFormat = errors.New("exporter: unsupported format")

// Formats lists the output extensions WriteFile accepts.
var Formats = []string{".gltf", ".glb", ".stl"}

// WriteFile writes sc in the format selected by the extension of path.
func WriteFile(path string, sc *scene.Scene) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf":
		doc, err := GLTFDocument(sc)
		if err != nil {
			return err
		}
		if len(doc.Buffers) > 0 {
			doc.Buffers[0].EmbeddedResource()
		}
		if err := gltf.Save(doc, path); err != nil {
			return fmt.Errorf("exporter: save %s: %w", path, err)
		}
	case ".glb":
		doc, err := GLTFDocument(sc)
		if err != nil {
			return err
		}
		if err := gltf.SaveBinary(doc, path); err != nil {
			return fmt.Errorf("exporter: save %s: %w", path, err)
		}
	case ".stl":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("exporter: create %s: %w", path, err)
		}
		w := bufio.NewWriter(f)
		if err := WriteSTL(w, sc); err != nil {
			f.Close()
			return err
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return fmt.Errorf("exporter: write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("exporter: close %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// setMatrix stores a row-major matrix in glTF column-major order.
func setMatrix[T float32 | float64](dst *[16]T, m mathutil.Mat4) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			dst[c*4+r] = T(m[r*4+c])
		}
	}
}

// GLTFDocument builds a glTF document from sc. Node matrices are kept,
// every mesh becomes one primitive and texture V is flipped to the glTF
// top-left origin. Embedded textures are stored in the binary buffer.
func GLTFDocument(sc *scene.Scene) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "assimp-media3d"

	images := make(map[string]uint32)
	for i, m := range sc.Materials {
		gm, err := gltfMaterial(doc, sc, m, images)
		if err != nil {
			return nil, fmt.Errorf("exporter: material %d: %w", i, err)
		}
		doc.Materials = append(doc.Materials, gm)
	}
	if len(doc.Textures) > 0 {
		doc.Samplers = []*gltf.Sampler{{}}
	}

	for _, m := range sc.Meshes {
		doc.Meshes = append(doc.Meshes, gltfMesh(doc, m, len(sc.Materials)))
	}

	var add func(n *scene.Node) uint32
	add = func(n *scene.Node) uint32 {
		gn := &gltf.Node{Name: n.Name}
		if !n.Transform.IsIdentity(0) {
			setMatrix(&gn.Matrix, n.Transform)
		}
		idx := uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, gn)

		// glTF nodes hold one mesh; extra meshes go to child nodes.
		for k, mi := range n.Meshes {
			if k == 0 {
				gn.Mesh = gltf.Index(uint32(mi))
				continue
			}
			child := &gltf.Node{Name: fmt.Sprintf("%s_mesh%d", n.Name, k), Mesh: gltf.Index(uint32(mi))}
			gn.Children = append(gn.Children, uint32(len(doc.Nodes)))
			doc.Nodes = append(doc.Nodes, child)
		}
		for _, c := range n.Children {
			gn.Children = append(gn.Children, add(c))
		}
		return idx
	}
	if sc.Root != nil {
		doc.Scenes[0].Name = sc.Root.Name
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, add(sc.Root))
	}
	return doc, nil
}

func gltfMesh(doc *gltf.Document, m *scene.Mesh, materials int) *gltf.Mesh {
	pos := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		pos[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	attrs := map[string]uint32{gltf.POSITION: uint32(modeler.WritePosition(doc, pos))}

	if m.HasNormals() {
		ns := make([][3]float32, len(m.Normals))
		for i, n := range m.Normals {
			ns[i] = [3]float32{float32(n[0]), float32(n[1]), float32(n[2])}
		}
		attrs[gltf.NORMAL] = uint32(modeler.WriteNormal(doc, ns))
	}
	if m.HasTextureCoords(0) {
		uvs := make([][2]float32, len(m.TextureCoords[0]))
		for i, uv := range m.TextureCoords[0] {
			uvs[i] = [2]float32{float32(uv[0]), float32(1 - uv[1])}
		}
		attrs[gltf.TEXCOORD_0] = uint32(modeler.WriteTextureCoord(doc, uvs))
	}

	var idx []uint32
	for _, f := range m.Faces {
		if len(f.Indices) != 3 {
			continue
		}
		idx = append(idx, uint32(f.Indices[0]), uint32(f.Indices[1]), uint32(f.Indices[2]))
	}
	prim := &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(uint32(modeler.WriteIndices(doc, idx))),
	}
	if m.MaterialIndex >= 0 && m.MaterialIndex < materials {
		prim.Material = gltf.Index(uint32(m.MaterialIndex))
	}
	return &gltf.Mesh{Name: m.Name, Primitives: []*gltf.Primitive{prim}}
}

func gltfMaterial(doc *gltf.Document, sc *scene.Scene, m *scene.Material, images map[string]uint32) (*gltf.Material, error) {
	base := [4]float32{1, 1, 1, 1}
	if c, n, ok := m.Color(scene.KeyColorDiffuse); ok {
		base = [4]float32{c.R, c.G, c.B, c.A}
		if n == 12 {
			base[3] = 1
		}
	}
	if op, ok := m.Float(scene.KeyOpacity); ok && op < base[3] {
		base[3] = op
	}
	metallic, roughness := float32(0), float32(1)
	gm := &gltf.Material{
		Name: m.Name(),
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &base,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	}
	if v, ok := m.Int(scene.KeyTwoSided); ok && v != 0 {
		gm.DoubleSided = true
	}
	if base[3] < 1 {
		gm.AlphaMode = gltf.AlphaBlend
	}
	if e, _, ok := m.Color(scene.KeyColorEmissive); ok {
		gm.EmissiveFactor = [3]float32{e.R, e.G, e.B}
	}

	if slot, ok := m.Texture(scene.TextureDiffuse, 0); ok {
		tex, err := gltfTexture(doc, sc, slot.Path, images)
		if err != nil {
			return nil, err
		}
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
	}
	return gm, nil
}

// gltfTexture adds a texture for ref. Embedded textures are written into
// the buffer; file references keep their path as the image URI.
func gltfTexture(doc *gltf.Document, sc *scene.Scene, ref string, images map[string]uint32) (uint32, error) {
	img, ok := images[ref]
	if !ok {
		if t, embedded := sc.Texture(ref); embedded {
			if !t.IsCompressed() {
				return 0, fmt.Errorf("embedded texture %s is not encoded", ref)
			}
			hint := t.FormatHint
			if hint == "jpg" {
				hint = "jpeg"
			}
			i, err := modeler.WriteImage(doc, t.Filename, "image/"+hint, bytes.NewReader(t.Data))
			if err != nil {
				return 0, err
			}
			img = uint32(i)
		} else {
			img = uint32(len(doc.Images))
			doc.Images = append(doc.Images, &gltf.Image{URI: filepath.ToSlash(ref)})
		}
		images[ref] = img
	}
	doc.Textures = append(doc.Textures, &gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(img)})
	return uint32(len(doc.Textures) - 1), nil
}

// WriteSTL writes the triangles of sc as binary STL, with every mesh
// placed by the world transform of each node referencing it.
func WriteSTL(w io.Writer, sc *scene.Scene) error {
	solid := &stl.Solid{Name: "assimp-media3d"}
	if sc.Root != nil {
		if sc.Root.Name != "" {
			solid.Name = sc.Root.Name
		}
		sc.Root.Walk(func(n *scene.Node, _ int) bool {
			world := n.WorldTransform()
			for _, mi := range n.Meshes {
				if mi < 0 || mi >= len(sc.Meshes) {
					continue
				}
				appendFacets(solid, sc.Meshes[mi], world)
			}
			return true
		})
	}
	if err := solid.WriteAll(w); err != nil {
		return fmt.Errorf("exporter: stl: %w", err)
	}
	return nil
}

func appendFacets(solid *stl.Solid, m *scene.Mesh, world mathutil.Mat4) {
	for _, f := range m.Faces {
		if len(f.Indices) != 3 || !inRange(f.Indices, len(m.Vertices)) {
			continue
		}
		var p [3]mathutil.Vec3
		for k, i := range f.Indices {
			p[k] = world.MulPoint(m.Vertices[i])
		}
		var t stl.Triangle
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()
		for c := 0; c < 3; c++ {
			t.Normal[c] = float32(n[c])
			for k := 0; k < 3; k++ {
				t.Vertices[k][c] = float32(p[k][c])
			}
		}
		solid.AppendTriangle(t)
	}
}

func inRange(idx []int, n int) bool {
	for _, i := range idx {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}
