package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one converted file in the output manifest.
type ManifestEntry struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Preview   string `json:"preview,omitempty"`
	Meshes    int    `json:"meshes"`
	Triangles int    `json:"triangles"`
}

// Manifest lists the converted files and the ones that failed.
type Manifest struct {
	Files  []ManifestEntry   `json:"files"`
	Failed map[string]string `json:"failed,omitempty"`
}

// NewManifest builds the manifest for a batch run.
func NewManifest(results []Result) Manifest {
	m := Manifest{Files: []ManifestEntry{}}
	for _, r := range results {
		if !r.Success {
			if m.Failed == nil {
				m.Failed = make(map[string]string)
			}
			m.Failed[r.Input] = r.Error
			continue
		}
		m.Files = append(m.Files, ManifestEntry{
			Input:     r.Input,
			Output:    r.Output,
			Preview:   r.Preview,
			Meshes:    r.Meshes,
			Triangles: r.Triangles,
		})
	}
	return m
}

// WriteManifest writes the manifest of results as JSON to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return nil
}
