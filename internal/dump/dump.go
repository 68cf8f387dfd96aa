// Package dump prints a readable report of an imported scene graph.
package dump

import (
	"fmt"
	"io"
	"strings"

	"assimp-media3d/internal/mathutil"
	"assimp-media3d/internal/scene"

	"github.com/muesli/termenv"
)

// Dumper writes scene reports. Verbose adds node matrices and per-vertex
// and per-face listings.
type Dumper struct {
	Verbose bool

	out *termenv.Output
	err error
}

// New returns a Dumper writing to w. The color profile is detected from
// w unless an option such as termenv.WithProfile overrides it.
func New(w io.Writer, opts ...termenv.OutputOption) *Dumper {
	return &Dumper{out: termenv.NewOutput(w, opts...)}
}

func (d *Dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.out, format, args...)
}

func (d *Dumper) heading(s string) {
	d.printf("\n%s\n", d.out.String(s).Bold().Foreground(d.out.Color("12")))
}

func (d *Dumper) label(s string) string {
	return d.out.String(s).Foreground(d.out.Color("10")).String()
}

func (d *Dumper) faint(s string) string {
	return d.out.String(s).Faint().String()
}

// Dump writes the full report for sc.
func (d *Dumper) Dump(sc *scene.Scene) error {
	d.err = nil
	d.Summary(sc)
	d.Nodes(sc)
	d.Meshes(sc)
	d.Materials(sc)
	d.Textures(sc)
	d.Cameras(sc)
	d.Lights(sc)
	d.Animations(sc)
	return d.err
}

// Summary writes scene counts and state flags.
func (d *Dumper) Summary(sc *scene.Scene) {
	name := ""
	if sc.Root != nil {
		name = sc.Root.Name
	}
	d.printf("%s %q\n", d.out.String("Scene").Bold(), name)
	d.printf("  flags: %s  applied: %s\n", flagString(sc.Flags), sc.Applied)
	d.printf("  meshes %d  materials %d  textures %d  cameras %d  lights %d  animations %d  vertices %d\n",
		len(sc.Meshes), len(sc.Materials), len(sc.Textures),
		len(sc.Cameras), len(sc.Lights), len(sc.Animations), sc.VertexCount())
}

func flagString(f scene.Flags) string {
	var names []string
	if f&scene.FlagIncomplete != 0 {
		names = append(names, "incomplete")
	}
	if f&scene.FlagValidated != 0 {
		names = append(names, "validated")
	}
	if f&scene.FlagNonVerbose != 0 {
		names = append(names, "non-verbose")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Nodes writes the node tree with mesh references and placements.
func (d *Dumper) Nodes(sc *scene.Scene) {
	d.heading("Nodes")
	if sc.Root == nil {
		return
	}
	sc.Root.Walk(func(n *scene.Node, depth int) bool {
		indent := strings.Repeat("  ", depth+1)
		line := indent + n.Name
		if n.Name == "" {
			line = indent + d.faint("(unnamed)")
		}
		if len(n.Meshes) > 0 {
			line += fmt.Sprintf(" %s %v", d.label("meshes"), n.Meshes)
		}
		if !n.Transform.IsIdentity(1e-12) {
			line += fmt.Sprintf(" %s %s", d.label("translate"), vec(n.Transform.Translation()))
		}
		d.printf("%s\n", line)
		if d.Verbose && !n.Transform.IsIdentity(1e-12) {
			for r := 0; r < 4; r++ {
				m := n.Transform[r*4 : r*4+4]
				d.printf("%s  | %9.4f %9.4f %9.4f %9.4f |\n", indent, m[0], m[1], m[2], m[3])
			}
		}
		return true
	})
}

func vec(v mathutil.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// Meshes writes geometry statistics for every mesh.
func (d *Dumper) Meshes(sc *scene.Scene) {
	d.heading("Meshes")
	for i, m := range sc.Meshes {
		d.printf("  [%d] %q  %s %d  %s %d  %s  %s %d\n", i, m.Name,
			d.label("verts"), len(m.Vertices), d.label("faces"), len(m.Faces),
			m.PrimitiveTypes, d.label("material"), m.MaterialIndex)
		d.printf("      normals %t  uv channels %d  colors %t  bones %d\n",
			m.HasNormals(), m.UVChannels(), len(m.Colors) > 0, len(m.Bones))
		if lo, hi, ok := bounds(m.Vertices); ok {
			d.printf("      bounds %s - %s\n", vec(lo), vec(hi))
		}
		if !d.Verbose {
			continue
		}
		for vi, v := range m.Vertices {
			line := fmt.Sprintf("      v%-4d %s", vi, vec(v))
			if m.HasNormals() {
				line += " n" + vec(m.Normals[vi])
			}
			if m.HasTextureCoords(0) {
				uv := m.TextureCoords[0][vi]
				line += fmt.Sprintf(" uv(%g, %g)", uv[0], uv[1])
			}
			d.printf("%s\n", line)
		}
		for fi, f := range m.Faces {
			d.printf("      f%-4d %v\n", fi, f.Indices)
		}
	}
}

func bounds(vs []mathutil.Vec3) (lo, hi mathutil.Vec3, ok bool) {
	if len(vs) == 0 {
		return lo, hi, false
	}
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	return lo, hi, true
}

// Materials writes every property of every material, decoded by type.
func (d *Dumper) Materials(sc *scene.Scene) {
	d.heading("Materials")
	for i, m := range sc.Materials {
		d.printf("  [%d] %q\n", i, m.Name())
		for _, p := range m.Properties {
			key := p.Key
			if p.Semantic != scene.TextureNone {
				key = fmt.Sprintf("%s %s[%d]", p.Key, p.Semantic, p.Index)
			}
			d.printf("      %-28s %s  %s\n", key, d.faint(fmt.Sprintf("%-6s", p.Type)), propertyValue(p))
		}
	}
}

func propertyValue(p *scene.MaterialProperty) string {
	switch p.Type {
	case scene.PropertyString:
		if s, ok := p.Str(); ok {
			return fmt.Sprintf("%q", s)
		}
		return "<malformed>"
	case scene.PropertyInteger:
		return joinNumbers(p.Ints())
	case scene.PropertyFloat, scene.PropertyDouble:
		return joinNumbers(p.Floats())
	}
	return fmt.Sprintf("%d bytes", len(p.Data))
}

func joinNumbers[T int32 | float32](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// Textures writes the embedded textures.
func (d *Dumper) Textures(sc *scene.Scene) {
	d.heading("Textures")
	for i, t := range sc.Textures {
		ref := scene.EmbeddedRef(i)
		if t.IsCompressed() {
			d.printf("  %s %s %d bytes %s\n", ref, t.FormatHint, len(t.Data), t.Filename)
		} else {
			d.printf("  %s %dx%d texels %s\n", ref, t.Width, t.Height, t.Filename)
		}
	}
}

// Cameras writes the cameras; the field of view is shown in degrees.
func (d *Dumper) Cameras(sc *scene.Scene) {
	d.heading("Cameras")
	for _, c := range sc.Cameras {
		d.printf("  %q  %s %s  %s %s  %s %s  %s %.2f°  %s %g..%g\n", c.Name,
			d.label("pos"), vec(c.Position), d.label("look"), vec(c.LookAt), d.label("up"), vec(c.Up),
			d.label("fov"), 2*mathutil.Rad2Deg(c.HorizontalFOV), d.label("clip"), c.ClipNear, c.ClipFar)
	}
}

// Lights writes the lights.
func (d *Dumper) Lights(sc *scene.Scene) {
	d.heading("Lights")
	for _, l := range sc.Lights {
		c := l.Diffuse
		line := fmt.Sprintf("  %q %s  %s (%g, %g, %g)", l.Name, l.Type, d.label("diffuse"), c.R, c.G, c.B)
		switch l.Type {
		case scene.LightDirectional:
			line += fmt.Sprintf("  %s %s", d.label("dir"), vec(l.Direction))
		case scene.LightPoint:
			line += fmt.Sprintf("  %s %s", d.label("pos"), vec(l.Position))
		case scene.LightSpot:
			line += fmt.Sprintf("  %s %s  %s %s  %s %.1f°/%.1f°", d.label("pos"), vec(l.Position),
				d.label("dir"), vec(l.Direction), d.label("cone"),
				mathutil.Rad2Deg(l.AngleInnerCone), mathutil.Rad2Deg(l.AngleOuterCone))
		}
		d.printf("%s\n", line)
	}
}

// Animations writes animation timelines and their channels.
func (d *Dumper) Animations(sc *scene.Scene) {
	d.heading("Animations")
	for _, a := range sc.Animations {
		d.printf("  %q  %s %g  %s %g  %s %d\n", a.Name,
			d.label("duration"), a.Duration, d.label("ticks/s"), a.TicksPerSecond,
			d.label("channels"), len(a.Channels))
		if !d.Verbose {
			continue
		}
		for _, ch := range a.Channels {
			d.printf("      %s  pos %d  rot %d  scale %d\n", ch.NodeName,
				len(ch.PositionKeys), len(ch.RotationKeys), len(ch.ScalingKeys))
		}
	}
}
