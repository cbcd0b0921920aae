package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGlyphRampValidation(t *testing.T) {
	_, err := NewGlyphRamp("")
	require.Error(t, err)

	long := make([]byte, 257)
	for i := range long {
		long[i] = 'x'
	}
	_, err = NewGlyphRamp(string(long))
	require.Error(t, err)
}

func TestGlyphRampEndpoints(t *testing.T) {
	ramp, err := NewGlyphRamp(DefaultRamp)
	require.NoError(t, err)

	require.Equal(t, 70, ramp.Len())
	require.Equal(t, byte(' '), ramp.Glyph(0))
	require.Equal(t, byte('$'), ramp.Glyph(255))
	require.Equal(t, 0, ramp.Index(0))
	require.Equal(t, ramp.Len()-1, ramp.Index(255))
}

func TestGlyphRampMonotonic(t *testing.T) {
	ramp, err := NewGlyphRamp(DefaultRamp)
	require.NoError(t, err)

	prev := 0
	for v := 0; v < 256; v++ {
		idx := ramp.Index(byte(v))
		require.GreaterOrEqual(t, idx, prev, "brightness %d", v)
		require.Less(t, idx, ramp.Len())
		prev = idx
	}
}

func TestLuma(t *testing.T) {
	require.Equal(t, byte(0), luma(0, 0, 0))
	require.Equal(t, byte(255), luma(255, 255, 255))
	require.Equal(t, byte(76), luma(255, 0, 0))
	require.Equal(t, byte(150), luma(0, 255, 0))
	require.Equal(t, byte(29), luma(0, 0, 255))
}

func TestEqualizeStretchesRange(t *testing.T) {
	// A dim two-level image must end up spanning the full 0..255 range.
	lum := []byte{10, 10, 10, 10, 40, 40, 40, 40}
	equalize(lum)
	require.Equal(t, byte(0), lum[0])
	require.Equal(t, byte(255), lum[4])
}

func TestEqualizeUniformInputUnchanged(t *testing.T) {
	lum := []byte{90, 90, 90, 90}
	equalize(lum)
	require.Equal(t, []byte{90, 90, 90, 90}, lum)
}
