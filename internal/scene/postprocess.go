package scene

import (
	"fmt"
	"strings"
)

// PostProcess selects the processing steps run after import.
type PostProcess uint32

const (
	ProcessValidateDataStructure PostProcess = 1 << iota
	ProcessTriangulate
	ProcessGenNormals
	ProcessGenSmoothNormals
	ProcessFlipUVs
	ProcessFlipWindingOrder
	ProcessJoinIdenticalVertices
)

var postProcessNames = []struct {
	flag PostProcess
	name string
}{
	{ProcessValidateDataStructure, "validate"},
	{ProcessTriangulate, "triangulate"},
	{ProcessGenNormals, "gen-normals"},
	{ProcessGenSmoothNormals, "gen-smooth-normals"},
	{ProcessFlipUVs, "flip-uvs"},
	{ProcessFlipWindingOrder, "flip-winding"},
	{ProcessJoinIdenticalVertices, "join-vertices"},
}

// Has reports whether all bits of f are set.
func (p PostProcess) Has(f PostProcess) bool {
	return p&f == f
}

func (p PostProcess) String() string {
	var names []string
	for _, e := range postProcessNames {
		if p&e.flag != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParsePostProcess converts step names, as printed by String, to flags.
func ParsePostProcess(names []string) (PostProcess, error) {
	var p PostProcess
	for _, n := range names {
		n = strings.TrimSpace(strings.ToLower(n))
		if n == "" || n == "none" {
			continue
		}
		found := false
		for _, e := range postProcessNames {
			if e.name == n {
				p |= e.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("scene: unknown post-process step %q", n)
		}
	}
	return p, nil
}
