package importer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"golang.org/x/text/encoding/charmap"
)

// decodeLine returns s unchanged when it is valid UTF-8 and otherwise
// reads it as Windows-1252, the usual encoding of older exporters.
func decodeLine(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	d, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return d
}

// OBJ imports Wavefront OBJ files with their MTL material libraries.
// Polygons are kept; every distinct position/uv/normal triple becomes
// one vertex. Each object or group becomes a child node of the root
// with one mesh per material used in it.
type OBJ struct {
	Logger *slog.Logger
}

func (*OBJ) Extensions() []string {
	return []string{".obj"}
}

type objCorner struct {
	v, vt, vn int // 1-based after resolving; 0 when absent
}

type objMesh struct {
	mesh    *scene.Mesh
	corners map[objCorner]int
	hasUV   bool
	hasN    bool
}

type objReader struct {
	log  *slog.Logger
	dir  string
	sc   *scene.Scene
	pos  []mathutil.Vec3
	uv   []mathutil.Vec3
	uvW  bool
	norm []mathutil.Vec3

	materials map[string]int
	node      *scene.Node
	material  int
	current   *objMesh
	meshes    []*objMesh
}

func (o *OBJ) Read(r io.Reader, dir string) (*scene.Scene, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	rd := &objReader{
		log:       log,
		dir:       dir,
		sc:        scene.New(""),
		materials: make(map[string]int),
		material:  -1,
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	var cont string
	for sc.Scan() {
		line++
		text := cont + decodeLine(sc.Text())
		cont = ""
		if strings.HasSuffix(text, "\\") {
			cont = strings.TrimSuffix(text, "\\") + " "
			continue
		}
		if err := rd.line(text); err != nil {
			return nil, fmt.Errorf("obj: line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: scan: %w", err)
	}
	return rd.finish(), nil
}

func (rd *objReader) line(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]

	switch fields[0] {
	case "v":
		v, err := parseVec(args, 3)
		if err != nil {
			return err
		}
		rd.pos = append(rd.pos, v)
	case "vt":
		v, err := parseVec(args, 1)
		if err != nil {
			return err
		}
		if len(args) > 2 {
			rd.uvW = true
		}
		rd.uv = append(rd.uv, v)
	case "vn":
		v, err := parseVec(args, 3)
		if err != nil {
			return err
		}
		rd.norm = append(rd.norm, v)
	case "f", "l", "p":
		return rd.face(fields[0], args)
	case "o", "g":
		name := strings.Join(args, " ")
		rd.node = rd.sc.Root.AddChild(scene.NewNode(name))
		rd.current = nil
	case "usemtl":
		name := strings.Join(args, " ")
		idx, ok := rd.materials[name]
		if !ok {
			rd.log.Warn("obj: unknown material", "name", name)
			idx = -1
		}
		if idx != rd.material {
			rd.material = idx
			rd.current = nil
		}
	case "mtllib":
		for _, lib := range args {
			rd.loadMTL(lib)
		}
	}
	return nil
}

func parseVec(args []string, min int) (mathutil.Vec3, error) {
	var v mathutil.Vec3
	if len(args) < min {
		return v, fmt.Errorf("want %d components, got %d", min, len(args))
	}
	for i := 0; i < len(args) && i < 3; i++ {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// resolve turns a 1-based or negative OBJ index into a 1-based one.
func resolve(s string, n int) (int, error) {
	if s == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i + 1
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("index %s out of range (%d)", s, n)
	}
	return i, nil
}

// face adds an f, l or p record. Polylines become one 2-index face per
// segment and points one 1-index face each, so only f records are ever
// triangulated.
func (rd *objReader) face(kind string, args []string) error {
	if len(args) == 0 {
		return nil
	}
	m := rd.mesh()
	idx := make([]int, 0, len(args))
	for _, a := range args {
		parts := strings.Split(a, "/")
		var c objCorner
		var err error
		if c.v, err = resolve(parts[0], len(rd.pos)); err != nil {
			return err
		}
		if c.v == 0 {
			return fmt.Errorf("face corner %q has no position", a)
		}
		if len(parts) > 1 {
			if c.vt, err = resolve(parts[1], len(rd.uv)); err != nil {
				return err
			}
		}
		if len(parts) > 2 {
			if c.vn, err = resolve(parts[2], len(rd.norm)); err != nil {
				return err
			}
		}
		idx = append(idx, m.vertex(rd, c))
	}
	switch kind {
	case "l":
		for i := 0; i+1 < len(idx); i++ {
			m.mesh.Faces = append(m.mesh.Faces, scene.Face{Indices: []int{idx[i], idx[i+1]}})
		}
	case "p":
		for _, i := range idx {
			m.mesh.Faces = append(m.mesh.Faces, scene.Face{Indices: []int{i}})
		}
	default:
		m.mesh.Faces = append(m.mesh.Faces, scene.Face{Indices: idx})
	}
	return nil
}

func (m *objMesh) vertex(rd *objReader, c objCorner) int {
	if i, ok := m.corners[c]; ok {
		return i
	}
	i := len(m.mesh.Vertices)
	m.corners[c] = i
	m.mesh.Vertices = append(m.mesh.Vertices, rd.pos[c.v-1])

	var uv, n mathutil.Vec3
	if c.vt > 0 {
		uv = rd.uv[c.vt-1]
		m.hasUV = true
	}
	if c.vn > 0 {
		n = rd.norm[c.vn-1]
		m.hasN = true
	}
	m.mesh.TextureCoords[0] = append(m.mesh.TextureCoords[0], uv)
	m.mesh.Normals = append(m.mesh.Normals, n)
	return i
}

// mesh returns the mesh faces are currently added to.
func (rd *objReader) mesh() *objMesh {
	if rd.current != nil {
		return rd.current
	}
	if rd.node == nil {
		rd.node = rd.sc.Root.AddChild(scene.NewNode("defaultobject"))
	}
	name := rd.node.Name
	m := &objMesh{
		mesh:    &scene.Mesh{Name: name, MaterialIndex: rd.material},
		corners: make(map[objCorner]int),
	}
	rd.node.Meshes = append(rd.node.Meshes, len(rd.sc.Meshes))
	rd.sc.Meshes = append(rd.sc.Meshes, m.mesh)
	rd.meshes = append(rd.meshes, m)
	rd.current = m
	return m
}

func (rd *objReader) finish() *scene.Scene {
	sc := rd.sc
	def := -1
	for _, m := range rd.meshes {
		if !m.hasUV {
			m.mesh.TextureCoords[0] = nil
		} else if rd.uvW {
			m.mesh.UVComponents[0] = 3
		} else {
			m.mesh.UVComponents[0] = 2
		}
		if !m.hasN {
			m.mesh.Normals = nil
		}
		if m.mesh.MaterialIndex < 0 {
			if def < 0 {
				def = len(sc.Materials)
				sc.Materials = append(sc.Materials, defaultMaterial())
			}
			m.mesh.MaterialIndex = def
		}
		m.mesh.UpdatePrimitiveTypes()
	}

	// Drop nodes that never received geometry.
	var kept []*scene.Node
	for _, n := range sc.Root.Children {
		if len(n.Meshes) > 0 {
			kept = append(kept, n)
		}
	}
	sc.Root.Children = kept
	if len(sc.Meshes) == 0 {
		sc.Flags |= scene.FlagIncomplete
	}
	return sc
}

// loadMTL reads a material library next to the OBJ file. A missing
// library is logged and skipped.
func (rd *objReader) loadMTL(name string) {
	path := filepath.Join(rd.dir, filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	f, err := os.Open(path)
	if err != nil {
		rd.log.Warn("obj: material library not loaded", "path", path, "err", err)
		return
	}
	defer f.Close()

	mats, err := ParseMTL(f)
	if err != nil {
		rd.log.Warn("obj: material library not parsed", "path", path, "err", err)
	}
	for _, m := range mats {
		rd.materials[m.Name()] = len(rd.sc.Materials)
		rd.sc.Materials = append(rd.sc.Materials, m)
	}
}

// ParseMTL reads the materials of an MTL library. Colours are stored as
// three floats. Materials parsed before an error are returned with it.
func ParseMTL(r io.Reader) ([]*scene.Material, error) {
	var mats []*scene.Material
	var cur *scene.Material

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := decodeLine(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		key, args := fields[0], fields[1:]
		if key == "newmtl" {
			cur = &scene.Material{}
			cur.SetString(scene.KeyName, strings.Join(args, " "))
			mats = append(mats, cur)
			continue
		}
		if cur == nil {
			continue
		}

		switch strings.ToLower(key) {
		case "kd", "ka", "ks", "ke":
			v, err := parseVec(args, 3)
			if err != nil {
				return mats, fmt.Errorf("mtl: line %d: %w", line, err)
			}
			c := scene.Color4{R: float32(v[0]), G: float32(v[1]), B: float32(v[2])}
			cur.SetColor3(map[string]string{
				"kd": scene.KeyColorDiffuse,
				"ka": scene.KeyColorAmbient,
				"ks": scene.KeyColorSpecular,
				"ke": scene.KeyColorEmissive,
			}[strings.ToLower(key)], c)
		case "ns", "d", "tr":
			v, err := parseVec(args, 1)
			if err != nil {
				return mats, fmt.Errorf("mtl: line %d: %w", line, err)
			}
			switch strings.ToLower(key) {
			case "ns":
				cur.SetFloats(scene.KeyShininess, float32(v[0]))
			case "d":
				cur.SetFloats(scene.KeyOpacity, float32(v[0]))
			case "tr":
				cur.SetFloats(scene.KeyOpacity, float32(1-v[0]))
			}
		case "illum":
			if len(args) > 0 {
				if n, err := strconv.Atoi(args[0]); err == nil {
					cur.SetInt(scene.KeyShadingModel, int32(n))
				}
			}
		case "map_kd":
			addMap(cur, scene.TextureDiffuse, args)
		case "map_ks":
			addMap(cur, scene.TextureSpecular, args)
		case "map_ka":
			addMap(cur, scene.TextureAmbient, args)
		case "map_ke":
			addMap(cur, scene.TextureEmissive, args)
		case "map_d":
			addMap(cur, scene.TextureOpacity, args)
		case "map_bump", "bump":
			addMap(cur, scene.TextureHeight, args)
		case "norm":
			addMap(cur, scene.TextureNormals, args)
		}
	}
	if err := sc.Err(); err != nil {
		return mats, fmt.Errorf("mtl: scan: %w", err)
	}
	return mats, nil
}

// mapArgs is the number of values each texture map option takes.
var mapArgs = map[string]int{
	"-blendu": 1, "-blendv": 1, "-bm": 1, "-boost": 1, "-cc": 1,
	"-clamp": 1, "-imfchan": 1, "-texres": 1, "-type": 1,
	"-mm": 2, "-o": 3, "-s": 3, "-t": 3,
}

func addMap(m *scene.Material, tt scene.TextureType, args []string) {
	slot := scene.TextureSlot{MapModeU: scene.MapModeWrap, MapModeV: scene.MapModeWrap}
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		opt := strings.ToLower(args[i])
		if opt == "-clamp" && i+1 < len(args) && args[i+1] == "on" {
			slot.MapModeU, slot.MapModeV = scene.MapModeClamp, scene.MapModeClamp
		}
		i += 1 + mapArgs[opt]
	}
	if i >= len(args) {
		return
	}
	slot.Path = strings.Join(args[i:], " ")
	m.AddTexture(tt, slot)
}
