package console

// Color is an index into the 16-entry text mode palette.
type Color uint8

// The standard EGA palette indices.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

const (
	// BlankChar is written to every cell that has no content.
	BlankChar = byte(' ')

	// PlaceholderChar (CP437 0xFE, a small square) replaces bytes that
	// have no printable glyph.
	PlaceholderChar = byte(0xfe)
)

// Attr packs a background color in the high nibble and a foreground color in
// the low nibble, matching the text mode hardware cell format.
type Attr uint8

// MakeAttr returns the attribute for the fg/bg color pair.
func MakeAttr(fg, bg Color) Attr {
	return Attr((bg&0xf)<<4 | fg&0xf)
}

// Fg returns the foreground color.
func (a Attr) Fg() Color { return Color(a & 0xf) }

// Bg returns the background color.
func (a Attr) Bg() Color { return Color(a >> 4) }

// Inverted returns the attribute with foreground and background swapped.
func (a Attr) Inverted() Attr { return MakeAttr(a.Bg(), a.Fg()) }

// Cell is a single character position in the text frame.
type Cell struct {
	Ch   byte
	Attr Attr
}

// Blank returns an empty cell using attr.
func Blank(attr Attr) Cell {
	return Cell{Ch: BlankChar, Attr: attr}
}

// IsPrintable reports whether ch has a glyph that may be stored verbatim.
func IsPrintable(ch byte) bool {
	return ch >= 0x20 && ch <= 0x7e
}

var colorNames = [...]string{
	Black:      "black",
	Blue:       "blue",
	Green:      "green",
	Cyan:       "cyan",
	Red:        "red",
	Magenta:    "magenta",
	Brown:      "brown",
	LightGray:  "lightgray",
	DarkGray:   "darkgray",
	LightBlue:  "lightblue",
	LightGreen: "lightgreen",
	LightCyan:  "lightcyan",
	LightRed:   "lightred",
	Pink:       "pink",
	Yellow:     "yellow",
	White:      "white",
}

// String returns the lower-case color name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "unknown"
}

// ColorByName looks up a palette color by its lower-case name.
func ColorByName(name string) (Color, bool) {
	for index, colorName := range colorNames {
		if colorName == name {
			return Color(index), true
		}
	}
	return Black, false
}
