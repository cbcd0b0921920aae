package device

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resample scales src into a w x h raster. Catmull-Rom favors quality over
// speed and preserves the average color of each output cell well enough for
// glyph selection. The source is returned unchanged when it already has the
// requested size.
func Resample(src *image.RGBA, w, h int) *image.RGBA {
	if src == nil {
		return nil
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if src.Rect.Dx() == w && src.Rect.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// rgb24ToRGBA converts packed RGB24 data into an RGBA raster, clamping the
// pixel count to what the buffer actually holds.
func rgb24ToRGBA(data []byte, w, h int) *image.RGBA {
	if w < 1 || h < 1 || len(data) < w*h*3 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	si := 0
	di := 0
	for i := 0; i < w*h; i++ {
		img.Pix[di] = data[si]
		img.Pix[di+1] = data[si+1]
		img.Pix[di+2] = data[si+2]
		img.Pix[di+3] = 0xff
		si += 3
		di += 4
	}
	return img
}
