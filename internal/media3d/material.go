package media3d

// Material describes how a surface reflects or emits light.
type Material interface {
	isMaterial()
}

// DiffuseMaterial reflects light equally in all directions.
type DiffuseMaterial struct {
	Brush        Brush
	Color        Color
	AmbientColor Color
}

// NewDiffuseMaterial returns a diffuse material painted with b.
func NewDiffuseMaterial(b Brush) *DiffuseMaterial {
	return &DiffuseMaterial{Brush: b, Color: White, AmbientColor: White}
}

// SpecularMaterial adds highlights; higher powers give tighter ones.
type SpecularMaterial struct {
	Brush         Brush
	Color         Color
	SpecularPower float64
}

// EmissiveMaterial emits the brush colour independent of lighting.
type EmissiveMaterial struct {
	Brush Brush
	Color Color
}

// MaterialGroup layers materials in order.
type MaterialGroup struct {
	Children []Material
}

func (*DiffuseMaterial) isMaterial()  {}
func (*SpecularMaterial) isMaterial() {}
func (*EmissiveMaterial) isMaterial() {}
func (*MaterialGroup) isMaterial()    {}

// WalkMaterials calls fn for m and, for groups, every nested material.
func WalkMaterials(m Material, fn func(Material)) {
	if m == nil {
		return
	}
	fn(m)
	if g, ok := m.(*MaterialGroup); ok {
		for _, c := range g.Children {
			WalkMaterials(c, fn)
		}
	}
}

// FirstDiffuse returns the first diffuse layer of m, or nil.
func FirstDiffuse(m Material) *DiffuseMaterial {
	var d *DiffuseMaterial
	WalkMaterials(m, func(x Material) {
		if dm, ok := x.(*DiffuseMaterial); ok && d == nil {
			d = dm
		}
	})
	return d
}
