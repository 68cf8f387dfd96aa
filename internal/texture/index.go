package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase file stems in one directory to the raster files
// sharing that stem, in directory order.
type Index struct {
	dir     string
	entries map[string][]string // stem.lower() → full paths
}

// BuildIndex scans dir (not recursively) for files with a supported or
// extended raster extension. A missing directory gives an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{dir: dir, entries: make(map[string][]string)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return idx
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !IsSupported(ext) && !IsExtended(ext) {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		idx.entries[stem] = append(idx.entries[stem], filepath.Join(dir, name))
	}
	return idx
}

// Lookup returns the file for stem whose extension ranks first in the
// supported list, or ("", false).
func (idx *Index) Lookup(stem string) (string, bool) {
	paths := idx.entries[strings.ToLower(stem)]
	best, bestRank := "", len(SupportedExtensions)
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		for rank, s := range SupportedExtensions {
			if ext == s && rank < bestRank {
				best, bestRank = p, rank
			}
		}
	}
	return best, best != ""
}

// Len returns the number of indexed stems.
func (idx *Index) Len() int {
	return len(idx.entries)
}
