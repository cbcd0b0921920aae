package render

import "image"

// CharAspect is the assumed height/width ratio of one terminal cell. Glyphs
// are visually taller than wide, so a faithful picture needs more columns
// than rows for the same source aspect.
const CharAspect = 2.2

// FitBox computes the largest character grid inside boxCols x boxRows that
// keeps the source frame's apparent proportions once the cell aspect is
// accounted for. At least one output dimension lands exactly on its bound,
// and neither exceeds the box.
func FitBox(frameW, frameH, boxCols, boxRows int) (cols, rows int) {
	if frameW < 1 {
		frameW = 1
	}
	if frameH < 1 {
		frameH = 1
	}
	if boxCols < 1 {
		boxCols = 1
	}
	if boxRows < 1 {
		boxRows = 1
	}
	frameAspect := float64(frameW) / float64(frameH)
	if frameAspect > float64(boxCols)/(float64(boxRows)*CharAspect) {
		cols = boxCols
		rows = int(float64(boxCols) / frameAspect / CharAspect)
	} else {
		rows = boxRows
		cols = int(float64(boxRows) * frameAspect * CharAspect)
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// Renderer converts an already-resampled raster into one text buffer per
// frame, one line per raster row. It reuses its output buffer across frames.
type Renderer struct {
	ramp  *GlyphRamp
	cache *ColorCache
	buf   []byte
	lum   []byte
}

// NewRenderer builds a renderer over the given ramp and color cache. The
// cache carries the active color mode; the renderer never mutates it beyond
// populating entries.
func NewRenderer(ramp *GlyphRamp, cache *ColorCache) *Renderer {
	return &Renderer{ramp: ramp, cache: cache}
}

// Render produces the text for one frame in the cache's current color mode.
// Block style falls back to glyphs in monochrome, where background colors
// cannot carry the picture. The returned string is valid until the next call.
func (r *Renderer) Render(img *image.RGBA, style Style) string {
	if img == nil {
		return ""
	}
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return ""
	}
	if r.cache.Mode() == ModeMono {
		return r.renderMono(img, w, h)
	}
	if style == StyleBlock {
		return r.renderColor(img, w, h, true)
	}
	return r.renderColor(img, w, h, false)
}

func (r *Renderer) renderMono(img *image.RGBA, w, h int) string {
	if cap(r.lum) < w*h {
		r.lum = make([]byte, w*h)
	}
	lum := r.lum[:w*h]
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+3]
			lum[y*w+x] = luma(int(px[0]), int(px[1]), int(px[2]))
		}
	}
	equalize(lum)

	r.buf = grow(r.buf, h*(w+2))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.buf = append(r.buf, r.ramp.Glyph(lum[y*w+x]))
		}
		// Raw mode disables output post-processing, so lines need an
		// explicit carriage return.
		r.buf = append(r.buf, '\r', '\n')
	}
	return string(r.buf)
}

func (r *Renderer) renderColor(img *image.RGBA, w, h int, block bool) string {
	// Worst case one truecolor escape per cell plus reset and newline per row.
	const maxEscapeLen = 19
	r.buf = grow(r.buf, h*(w*(maxEscapeLen+1)+5))
	reset := r.cache.ResetSequence()

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		// Row-local accumulators: neither the last pixel nor the last emitted
		// code may leak across the row boundary, because the reset at line end
		// returns the terminal to default attributes.
		var lastPx [3]byte
		lastCode := ""
		havePx := false
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+3]
			if !havePx || px[0] != lastPx[0] || px[1] != lastPx[1] || px[2] != lastPx[2] {
				code := r.cache.Code(int(px[0]), int(px[1]), int(px[2]), block)
				if code != lastCode {
					r.buf = append(r.buf, code...)
					lastCode = code
				}
				lastPx[0], lastPx[1], lastPx[2] = px[0], px[1], px[2]
				havePx = true
			}
			if block {
				r.buf = append(r.buf, ' ')
			} else {
				r.buf = append(r.buf, r.ramp.Glyph(luma(int(px[0]), int(px[1]), int(px[2]))))
			}
		}
		r.buf = append(r.buf, reset...)
		r.buf = append(r.buf, '\r', '\n')
	}
	return string(r.buf)
}

func grow(buf []byte, capacity int) []byte {
	if cap(buf) < capacity {
		return make([]byte, 0, capacity)
	}
	return buf[:0]
}
