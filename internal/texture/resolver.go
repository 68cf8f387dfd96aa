package texture

import (
	"os"
	"path/filepath"
	"strings"

	"assimp-media3d/internal/scene"
)

// ResolveFunc is a caller-supplied texture lookup. It returns the
// encoded image bytes for ref, or ok == false to continue with the
// built-in search.
type ResolveFunc func(ref string) (data []byte, ok bool)

// Source is a resolved texture reference.
type Source struct {
	Key      string // cache key: path, "*N" or "custom:" + ref
	Path     string // file path, when the texture lives on disk
	Data     []byte // encoded bytes from a custom resolver
	Embedded *scene.Texture
}

// Resolver finds the image behind a material texture reference.
//
// The order is: Custom; embedded "*N" references; the file itself when
// its extension is directly supported, looked up as given, under
// TexturesDir and under ModelDir; a sibling with the same stem and a
// supported extension; the file itself through an extended codec.
type Resolver struct {
	TexturesDir string
	ModelDir    string
	Custom      ResolveFunc
	Embedded    []*scene.Texture

	indexes map[string]*Index
}

// Resolve returns the source for ref, or ok == false when nothing matches.
func (r *Resolver) Resolve(ref string) (Source, bool) {
	if ref == "" {
		return Source{}, false
	}
	if r.Custom != nil {
		if data, ok := r.Custom(ref); ok {
			return Source{Key: "custom:" + ref, Data: data}, true
		}
	}
	if i, ok := scene.EmbeddedIndex(ref); ok {
		if i < len(r.Embedded) {
			return Source{Key: ref, Embedded: r.Embedded[i]}, true
		}
		return Source{}, false
	}

	candidates := r.candidates(ref)
	for _, c := range candidates {
		if IsSupported(filepath.Ext(c)) && fileExists(c) {
			return Source{Key: c, Path: c}, true
		}
	}
	for _, c := range candidates {
		stem := strings.TrimSuffix(filepath.Base(c), filepath.Ext(c))
		if p, ok := r.index(filepath.Dir(c)).Lookup(stem); ok {
			return Source{Key: p, Path: p}, true
		}
	}
	for _, c := range candidates {
		if IsExtended(filepath.Ext(c)) && fileExists(c) {
			return Source{Key: c, Path: c}, true
		}
	}
	return Source{}, false
}

// candidates lists the paths ref may refer to, most specific first.
func (r *Resolver) candidates(ref string) []string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, "\\", "/"))
	if filepath.IsAbs(ref) {
		return []string{ref}
	}
	base := filepath.Base(ref)

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, dir := range []string{r.TexturesDir, r.ModelDir} {
		if dir == "" {
			continue
		}
		add(filepath.Join(dir, ref))
		add(filepath.Join(dir, base))
	}
	if len(out) == 0 {
		add(ref)
	}
	return out
}

func (r *Resolver) index(dir string) *Index {
	if r.indexes == nil {
		r.indexes = make(map[string]*Index)
	}
	idx, ok := r.indexes[dir]
	if !ok {
		idx = BuildIndex(dir)
		r.indexes[dir] = idx
	}
	return idx
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
