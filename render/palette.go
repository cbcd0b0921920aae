package render

// Index256 quantizes an 8-bit RGB triple into the xterm 256-color palette.
// Achromatic input maps onto the 24-step grayscale ramp (232-255), with near
// black and near white pinned to the cube corners 16 and 231. Everything else
// is quantized per channel into six levels and combined into the 6x6x6 cube.
// The result is deterministic for identical input.
func Index256(r, g, b int) int {
	if r == g && g == b {
		switch {
		case r < 8:
			return 16
		case r > 248:
			return 231
		default:
			return 232 + int(float64(r-8)/247.0*24)
		}
	}
	ir := r * 5 / 255
	ig := g * 5 / 255
	ib := b * 5 / 255
	return 16 + 36*ir + 6*ig + ib
}
