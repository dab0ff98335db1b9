package raster

// Cache decodes each distinct artifact exactly once and shares the grid
// across every region evaluated against it. A cache belongs to a single
// aggregation worker and lives for one pass; it is not safe for concurrent
// use and is never shared between groups.
type Cache struct {
	decode DecodeFunc
	grids  map[string]*Grid
}

func NewCache(decode DecodeFunc) *Cache {
	return &Cache{decode: decode, grids: make(map[string]*Grid)}
}

// Get returns the decoded grid for path, decoding on first use. Decode
// failures are not cached; a retry within the same pass decodes again.
func (c *Cache) Get(path string) (*Grid, error) {
	if g, ok := c.grids[path]; ok {
		return g, nil
	}
	g, err := c.decode(path)
	if err != nil {
		return nil, err
	}
	c.grids[path] = g
	return g, nil
}

// Len reports how many distinct artifacts have been decoded.
func (c *Cache) Len() int { return len(c.grids) }
