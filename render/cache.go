package render

import "fmt"

// ColorKey identifies one cached escape sequence: the exact RGB value plus
// whether it colors the foreground or the background.
type ColorKey struct {
	R, G, B    uint8
	Background bool
}

// CacheStats carries the hit/miss counters and the combined entry count of
// the palette-index cache and both escape-code caches.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// HitRate returns the hit percentage, or 0 before the first lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// ColorCache memoizes palette quantization and escape-code formatting for the
// active color mode. It is owned by a single player and is not safe for
// concurrent use.
type ColorCache struct {
	mode     Mode
	index256 map[uint32]int
	codes256 map[ColorKey]string
	codes24  map[ColorKey]string
	stats    CacheStats
}

// NewColorCache returns an empty cache bound to the given starting mode.
func NewColorCache(mode Mode) *ColorCache {
	return &ColorCache{
		mode:     mode,
		index256: make(map[uint32]int),
		codes256: make(map[ColorKey]string),
		codes24:  make(map[ColorKey]string),
	}
}

// Mode returns the active color mode.
func (c *ColorCache) Mode() Mode {
	return c.mode
}

// SetMode switches the active color mode. Cached entries encode mode-specific
// escape text, so the caches that are no longer addressable in the new mode
// are dropped; counters survive the switch.
func (c *ColorCache) SetMode(mode Mode) {
	if c.mode == mode {
		return
	}
	c.mode = mode
	if mode != Mode256 {
		c.codes256 = make(map[ColorKey]string)
		c.index256 = make(map[uint32]int)
	}
	if mode != ModeTrueColor {
		c.codes24 = make(map[ColorKey]string)
	}
	c.syncEntries()
}

// Index256Cached quantizes an RGB triple through the memoized palette table.
func (c *ColorCache) Index256Cached(r, g, b int) int {
	key := packRGB(r, g, b)
	if idx, ok := c.index256[key]; ok {
		c.stats.Hits++
		return idx
	}
	c.stats.Misses++
	idx := Index256(r, g, b)
	c.index256[key] = idx
	c.syncEntries()
	return idx
}

// Code returns the escape sequence that sets the given color in the active
// mode, formatting and caching it on first use. Monochrome always yields the
// empty string.
func (c *ColorCache) Code(r, g, b int, background bool) string {
	switch c.mode {
	case Mode256:
		key := ColorKey{R: uint8(r), G: uint8(g), B: uint8(b), Background: background}
		if code, ok := c.codes256[key]; ok {
			c.stats.Hits++
			return code
		}
		c.stats.Misses++
		code := fmt.Sprintf("\x1b[%d;5;%dm", sgrParam(background), c.Index256Cached(r, g, b))
		c.codes256[key] = code
		c.syncEntries()
		return code
	case ModeTrueColor:
		key := ColorKey{R: uint8(r), G: uint8(g), B: uint8(b), Background: background}
		if code, ok := c.codes24[key]; ok {
			c.stats.Hits++
			return code
		}
		c.stats.Misses++
		code := fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", sgrParam(background), r, g, b)
		c.codes24[key] = code
		c.syncEntries()
		return code
	default:
		return ""
	}
}

// ResetSequence returns the attribute reset for the active mode; monochrome
// output carries no escapes at all.
func (c *ColorCache) ResetSequence() string {
	if c.mode == ModeMono {
		return ""
	}
	return "\x1b[0m"
}

// Clear drops every cached entry and zeroes the counters.
func (c *ColorCache) Clear() {
	c.index256 = make(map[uint32]int)
	c.codes256 = make(map[ColorKey]string)
	c.codes24 = make(map[ColorKey]string)
	c.stats = CacheStats{}
}

// Stats returns a snapshot of the counters.
func (c *ColorCache) Stats() CacheStats {
	return c.stats
}

func (c *ColorCache) syncEntries() {
	c.stats.Entries = len(c.index256) + len(c.codes256) + len(c.codes24)
}

func sgrParam(background bool) int {
	if background {
		return 48
	}
	return 38
}

func packRGB(r, g, b int) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
