// Package postprocess runs clean-up steps on an imported scene:
// validation, triangulation, normal generation, vertex joining and
// UV/winding flips.
package postprocess

import (
	"log/slog"

	"assimp-media3d/internal/geom"
	"assimp-media3d/internal/scene"
)

// Options configures Apply.
type Options struct {
	// Triangulator splits polygons with more than four vertices.
	// Nil selects geom.EarClip.
	Triangulator geom.Triangulator
	Logger       *slog.Logger
}

// order is the sequence steps run in, whatever order they were requested.
var order = []scene.PostProcess{
	scene.ProcessValidateDataStructure,
	scene.ProcessTriangulate,
	scene.ProcessJoinIdenticalVertices,
	scene.ProcessGenSmoothNormals,
	scene.ProcessGenNormals,
	scene.ProcessFlipWindingOrder,
	scene.ProcessFlipUVs,
}

// Apply runs the requested steps that have not run on sc yet and records
// them in sc.Applied. Only validation can fail.
func Apply(sc *scene.Scene, steps scene.PostProcess, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	tri := opts.Triangulator
	if tri == nil {
		tri = geom.EarClip
	}

	for _, step := range order {
		if !steps.Has(step) || sc.Applied.Has(step) {
			continue
		}
		switch step {
		case scene.ProcessValidateDataStructure:
			if err := Validate(sc); err != nil {
				return err
			}
		case scene.ProcessTriangulate:
			n := Triangulate(sc, tri)
			log.Debug("triangulated", "faces", n)
		case scene.ProcessJoinIdenticalVertices:
			n := JoinIdenticalVertices(sc)
			log.Debug("joined vertices", "removed", n)
		case scene.ProcessGenSmoothNormals:
			GenSmoothNormals(sc)
		case scene.ProcessGenNormals:
			if sc.Applied.Has(scene.ProcessGenSmoothNormals) {
				continue
			}
			GenNormals(sc)
		case scene.ProcessFlipWindingOrder:
			FlipWindingOrder(sc)
		case scene.ProcessFlipUVs:
			FlipUVs(sc)
		}
		sc.Applied |= step
	}
	return nil
}
