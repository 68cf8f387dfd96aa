// Package convert turns an imported scene graph into a Media3D model
// tree: node groups with classified transforms, triangle geometry,
// materials, lights and a camera.
package convert

import (
	"errors"
	"fmt"
	"log/slog"

	"assimp-media3d/internal/geom"
	"assimp-media3d/internal/media3d"
	"assimp-media3d/internal/scene"
	"assimp-media3d/internal/texture"
)

// Options configures a Converter.
type Options struct {
	// DefaultMaterial is used for meshes whose material has neither a
	// diffuse nor a specular component. Nil selects a grey diffuse.
	DefaultMaterial media3d.Material

	// TexturesDir is searched first for texture files; ModelDir (the
	// directory of the source file) second.
	TexturesDir string
	ModelDir    string

	// TextureResolver is consulted before any built-in lookup.
	TextureResolver texture.ResolveFunc

	// Triangulator splits polygons with more than four vertices.
	// Nil selects geom.EarClip.
	Triangulator geom.Triangulator

	// UseSimpleTriangulation forces fan triangulation.
	UseSimpleTriangulation bool

	// ReadPolygonIndices also records each mesh's closed polygon loops.
	ReadPolygonIndices bool

	Logger *slog.Logger
}

// Result is the output of one conversion. Tables are indexed by the
// scene's mesh index.
type Result struct {
	Root           *media3d.Model3DGroup
	Lights         []media3d.Model3D
	Camera         *media3d.PerspectiveCamera
	Geometries     []*media3d.MeshGeometry3D
	PolygonIndices [][]int
	Names          *Names
}

// Converter converts scenes. It is not safe for concurrent use; give
// each goroutine its own.
type Converter struct {
	opts Options
	log  *slog.Logger
}

// New creates a Converter.
func New(opts Options) *Converter {
	if opts.DefaultMaterial == nil {
		opts.DefaultMaterial = media3d.NewDiffuseMaterial(media3d.NewSolidColorBrush(media3d.Gray))
	}
	if opts.Triangulator == nil {
		opts.Triangulator = geom.EarClip
	}
	if opts.UseSimpleTriangulation {
		opts.Triangulator = geom.Fan
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Converter{opts: opts, log: log}
}

// Options returns the effective options.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert converts sc. Lights are appended to the root group and also
// listed in Result.Lights.
func (c *Converter) Convert(sc *scene.Scene) (*Result, error) {
	if sc == nil || sc.Root == nil {
		return nil, errors.New("convert: scene has no root node")
	}

	res := &Result{
		Geometries: make([]*media3d.MeshGeometry3D, len(sc.Meshes)),
		Names:      newNames(),
	}
	if c.opts.ReadPolygonIndices {
		res.PolygonIndices = make([][]int, len(sc.Meshes))
	}

	cache := texture.NewCache(&texture.Resolver{
		TexturesDir: c.opts.TexturesDir,
		ModelDir:    c.opts.ModelDir,
		Custom:      c.opts.TextureResolver,
		Embedded:    sc.Textures,
	})
	materials := make([]media3d.Material, len(sc.Materials))
	backs := make([]bool, len(sc.Materials))
	for i, m := range sc.Materials {
		materials[i] = c.ConvertMaterial(m, cache)
		if v, ok := m.Int(scene.KeyTwoSided); ok && v != 0 {
			backs[i] = true
		}
	}
	c.log.Debug("materials converted", "count", len(materials), "textures", cache.Len())
	cache.Clear()

	triangulated := sc.Applied.Has(scene.ProcessTriangulate)
	handle := 0
	var walk func(n *scene.Node) *media3d.Model3DGroup
	walk = func(n *scene.Node) *media3d.Model3DGroup {
		g := &media3d.Model3DGroup{
			Name:      res.Names.node(handle, n.Name),
			Transform: ClassifyTransform(n.Transform),
		}
		handle++
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(sc.Meshes) {
				c.log.Warn("node references missing mesh", "node", n.Name, "mesh", mi)
				continue
			}
			mesh := sc.Meshes[mi]
			if res.Geometries[mi] == nil {
				geo, loops := c.ConvertMesh(mesh, triangulated)
				res.Geometries[mi] = geo
				if res.PolygonIndices != nil {
					res.PolygonIndices[mi] = loops
				}
			}
			gm := &media3d.GeometryModel3D{
				Name:     res.Names.mesh(mi, mesh.Name),
				Geometry: res.Geometries[mi],
				Material: c.opts.DefaultMaterial,
			}
			if k := mesh.MaterialIndex; k >= 0 && k < len(materials) {
				gm.Material = materials[k]
				if backs[k] {
					gm.BackMaterial = materials[k]
				}
			}
			g.Children = append(g.Children, gm)
		}
		for _, child := range n.Children {
			g.Children = append(g.Children, walk(child))
		}
		return g
	}
	res.Root = walk(sc.Root)

	for _, l := range sc.Lights {
		m := c.ConvertLight(sc, l)
		if m == nil {
			c.log.Debug("skipping light", "name", l.Name, "type", l.Type)
			continue
		}
		res.Lights = append(res.Lights, m)
		res.Root.Children = append(res.Root.Children, m)
	}
	if len(sc.Cameras) > 0 {
		res.Camera = c.ConvertCamera(sc, sc.Cameras[0])
	}

	c.log.Debug("scene converted",
		"nodes", handle,
		"meshes", len(sc.Meshes),
		"lights", len(res.Lights),
	)
	return res, nil
}

// Names is the name side table of one conversion. Node names are keyed
// by depth-first node index, mesh names by mesh index. Every name is
// sanitized and unique within the conversion.
type Names struct {
	Nodes  map[int]string
	Meshes map[int]string
	used   map[string]bool
}

func newNames() *Names {
	return &Names{
		Nodes:  make(map[int]string),
		Meshes: make(map[int]string),
		used:   make(map[string]bool),
	}
}

func (n *Names) node(handle int, raw string) string {
	if s, ok := n.Nodes[handle]; ok {
		return s
	}
	if raw == "" {
		raw = fmt.Sprintf("Node_%d", handle)
	}
	s := n.unique(raw)
	n.Nodes[handle] = s
	return s
}

func (n *Names) mesh(index int, raw string) string {
	if s, ok := n.Meshes[index]; ok {
		return s
	}
	if raw == "" {
		raw = fmt.Sprintf("Mesh_%d", index)
	}
	s := n.unique(raw)
	n.Meshes[index] = s
	return s
}

func (n *Names) unique(raw string) string {
	base := media3d.SanitizeName(raw)
	s := base
	for i := 2; n.used[s]; i++ {
		s = fmt.Sprintf("%s_%d", base, i)
	}
	n.used[s] = true
	return s
}
