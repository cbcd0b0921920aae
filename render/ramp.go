package render

import "fmt"

// DefaultRamp orders printable ASCII from visually sparse to dense; indexing
// it by quantized brightness is what turns a pixel into a glyph.
const DefaultRamp = " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

// GlyphRamp maps 8-bit brightness values onto a fixed glyph ramp through a
// table precomputed once at construction.
type GlyphRamp struct {
	glyphs []byte
	table  [256]byte
}

// NewGlyphRamp builds a ramp from the given character set, lightest first.
func NewGlyphRamp(chars string) (*GlyphRamp, error) {
	if len(chars) == 0 {
		return nil, fmt.Errorf("glyph ramp is empty")
	}
	if len(chars) > 256 {
		return nil, fmt.Errorf("glyph ramp too long: %d", len(chars))
	}
	r := &GlyphRamp{glyphs: []byte(chars)}
	n := len(r.glyphs)
	for i := 0; i < 256; i++ {
		r.table[i] = byte(i * (n - 1) / 255)
	}
	return r, nil
}

// Glyph returns the ramp character for a brightness value.
func (r *GlyphRamp) Glyph(brightness byte) byte {
	return r.glyphs[r.table[brightness]]
}

// Index returns the ramp position for a brightness value.
func (r *GlyphRamp) Index(brightness byte) int {
	return int(r.table[brightness])
}

// Len returns the number of glyphs in the ramp.
func (r *GlyphRamp) Len() int {
	return len(r.glyphs)
}

// luma computes perceptual brightness from 8-bit channels, rounded.
func luma(r, g, b int) byte {
	return byte((299*r + 587*g + 114*b + 500) / 1000)
}

// equalize stretches the luminance histogram in place so both dim and bright
// scenes use the full glyph range.
func equalize(lum []byte) {
	if len(lum) == 0 {
		return
	}
	var hist [256]int
	for _, v := range lum {
		hist[v]++
	}
	cdfMin := 0
	for _, h := range hist {
		if h > 0 {
			cdfMin = h
			break
		}
	}
	denom := len(lum) - cdfMin
	if denom <= 0 {
		return
	}
	var lut [256]byte
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		if cum <= cdfMin {
			continue
		}
		lut[i] = byte((cum - cdfMin) * 255 / denom)
	}
	for i, v := range lum {
		lum[i] = lut[v]
	}
}
