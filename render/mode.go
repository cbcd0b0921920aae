package render

// Mode selects how much color information ends up in the rendered text.
type Mode int

const (
	ModeMono Mode = iota
	Mode256
	ModeTrueColor
)

// Next returns the following mode in the cyclic order mono, 256, truecolor.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

func (m Mode) String() string {
	switch m {
	case Mode256:
		return "8BIT"
	case ModeTrueColor:
		return "24BIT"
	default:
		return "MONO"
	}
}

// Style selects between brightness glyphs and background-colored blocks.
type Style int

const (
	StyleGlyph Style = iota
	StyleBlock
)
