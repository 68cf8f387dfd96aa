package texture

import (
	"errors"
	"fmt"
	"image"
)

// ErrNotFound is returned when a reference resolves to nothing.
var ErrNotFound = errors.New("texture: not found")

// Cache decodes resolved textures once per key. It belongs to a single
// conversion and is not safe for concurrent use.
type Cache struct {
	resolver *Resolver
	items    map[string]*cacheEntry
}

type cacheEntry struct {
	img *image.NRGBA
	err error // decode failure, remembered so it is reported once
}

// NewCache creates a cache backed by r.
func NewCache(r *Resolver) *Cache {
	return &Cache{resolver: r, items: make(map[string]*cacheEntry)}
}

// Load resolves ref and returns the decoded image with its source.
// Unresolvable references return ErrNotFound.
func (c *Cache) Load(ref string) (*image.NRGBA, Source, error) {
	src, ok := c.resolver.Resolve(ref)
	if !ok {
		return nil, Source{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	if e, ok := c.items[src.Key]; ok {
		return e.img, src, e.err
	}

	var img *image.NRGBA
	var err error
	switch {
	case src.Embedded != nil:
		img, err = DecodeEmbedded(src.Embedded)
	case src.Data != nil:
		img, _, err = Decode(src.Data, "")
	default:
		img, err = LoadFile(src.Path)
	}
	c.items[src.Key] = &cacheEntry{img: img, err: err}
	return img, src, err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.items)
}

// Clear drops all cached images.
func (c *Cache) Clear() {
	c.items = make(map[string]*cacheEntry)
}
