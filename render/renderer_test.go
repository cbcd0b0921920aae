package render

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidRGBA(w, h int, r, g, b uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*img.Stride + x*4
			img.Pix[o] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

func newTestRenderer(t *testing.T, mode Mode) (*Renderer, *ColorCache) {
	t.Helper()
	ramp, err := NewGlyphRamp(DefaultRamp)
	require.NoError(t, err)
	cache := NewColorCache(mode)
	return NewRenderer(ramp, cache), cache
}

func TestFitBoxNeverExceedsBox(t *testing.T) {
	frames := [][2]int{{1920, 1080}, {1080, 1920}, {640, 480}, {100, 100}, {1, 1}, {4000, 10}}
	boxes := [][2]int{{120, 40}, {80, 24}, {20, 60}, {1, 1}, {200, 5}}
	for _, f := range frames {
		for _, b := range boxes {
			cols, rows := FitBox(f[0], f[1], b[0], b[1])
			require.LessOrEqual(t, cols, b[0], "frame %v box %v", f, b)
			require.LessOrEqual(t, rows, b[1], "frame %v box %v", f, b)
			require.GreaterOrEqual(t, cols, 1)
			require.GreaterOrEqual(t, rows, 1)
			require.True(t, cols == b[0] || rows == b[1],
				"frame %v box %v: %dx%d fills neither bound", f, b, cols, rows)
		}
	}
}

func TestFitBoxWideFrameFillsColumns(t *testing.T) {
	cols, rows := FitBox(1920, 1080, 120, 40)
	require.Equal(t, 120, cols)
	// 120 / (16/9) / 2.2 rounds down to 30 rows.
	require.Equal(t, 30, rows)
}

func TestFitBoxTallFrameFillsRows(t *testing.T) {
	cols, rows := FitBox(1080, 1920, 120, 40)
	require.Equal(t, 40, rows)
	// 40 * (9/16) * 2.2 rounds down to 49 columns.
	require.Equal(t, 49, cols)
}

func TestFitBoxDegenerateInput(t *testing.T) {
	cols, rows := FitBox(0, 0, 0, 0)
	require.Equal(t, 1, cols)
	require.Equal(t, 1, rows)
}

func TestRenderMonoHasNoEscapes(t *testing.T) {
	r, _ := newTestRenderer(t, ModeMono)
	out := r.Render(solidRGBA(8, 4, 200, 10, 10), StyleGlyph)
	require.NotEmpty(t, out)
	require.NotContains(t, out, "\x1b")

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		require.Len(t, line, 8)
	}
}

func TestRenderMonoIgnoresBlockStyle(t *testing.T) {
	r, _ := newTestRenderer(t, ModeMono)
	glyphs := r.Render(solidRGBA(4, 2, 90, 90, 90), StyleGlyph)
	blocks := r.Render(solidRGBA(4, 2, 90, 90, 90), StyleBlock)
	require.Equal(t, glyphs, blocks)
	require.NotContains(t, blocks, "\x1b")
}

func TestRenderSolidColorOneEscapePerRow(t *testing.T) {
	r, _ := newTestRenderer(t, Mode256)
	const w, h = 6, 3
	out := r.Render(solidRGBA(w, h, 255, 0, 0), StyleGlyph)

	// One color escape at the start of every row, a reset at its end, and
	// no elision across the row boundary.
	require.Equal(t, h, strings.Count(out, "\x1b[38;5;196m"))
	require.Equal(t, h, strings.Count(out, "\x1b[0m"))

	ramp, err := NewGlyphRamp(DefaultRamp)
	require.NoError(t, err)
	glyph := string(ramp.Glyph(luma(255, 0, 0)))
	want := "\x1b[38;5;196m" + strings.Repeat(glyph, w) + "\x1b[0m\r\n"
	require.Equal(t, strings.Repeat(want, h), out)
}

func TestRenderElidesRepeatedColors(t *testing.T) {
	r, _ := newTestRenderer(t, ModeTrueColor)
	img := solidRGBA(6, 1, 50, 60, 70)
	// Change color halfway through the row.
	for x := 3; x < 6; x++ {
		o := x * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2] = 200, 10, 10
	}
	out := r.Render(img, StyleGlyph)
	require.Equal(t, 1, strings.Count(out, "\x1b[38;2;50;60;70m"))
	require.Equal(t, 1, strings.Count(out, "\x1b[38;2;200;10;10m"))
}

func TestRenderBlockStyleUsesBackground(t *testing.T) {
	r, _ := newTestRenderer(t, Mode256)
	out := r.Render(solidRGBA(5, 2, 255, 0, 0), StyleBlock)
	require.Contains(t, out, "\x1b[48;5;196m")
	require.NotContains(t, out, "\x1b[38;")
	require.Contains(t, out, strings.Repeat(" ", 5))
}

func TestRenderTrueColorExactSequence(t *testing.T) {
	r, _ := newTestRenderer(t, ModeTrueColor)
	out := r.Render(solidRGBA(1, 1, 12, 34, 56), StyleBlock)
	require.Equal(t, "\x1b[48;2;12;34;56m \x1b[0m\r\n", out)
}

func TestRenderNilAndEmptyFrames(t *testing.T) {
	r, _ := newTestRenderer(t, Mode256)
	require.Equal(t, "", r.Render(nil, StyleGlyph))
	require.Equal(t, "", r.Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), StyleGlyph))
}

func TestRenderPopulatesCache(t *testing.T) {
	r, cache := newTestRenderer(t, Mode256)
	r.Render(solidRGBA(8, 8, 10, 200, 30), StyleGlyph)
	stats := cache.Stats()
	require.NotZero(t, stats.Entries)

	// A second identical frame is served from the cache.
	misses := stats.Misses
	r.Render(solidRGBA(8, 8, 10, 200, 30), StyleGlyph)
	require.Equal(t, misses, cache.Stats().Misses)
}

func BenchmarkRenderTrueColor(b *testing.B) {
	ramp, err := NewGlyphRamp(DefaultRamp)
	if err != nil {
		b.Fatal(err)
	}
	r := NewRenderer(ramp, NewColorCache(ModeTrueColor))
	img := solidRGBA(120, 40, 120, 80, 40)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if out := r.Render(img, StyleGlyph); out == "" {
			b.Fatal("empty render")
		}
	}
}
