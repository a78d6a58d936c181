package main

import (
	"image/color"
	"kfs/device/video/console"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/encoding/charmap"
)

// glyph returns the code page 437 glyph for a text mode character.
func glyph(ch byte) rune {
	if ch == 0 {
		return ' '
	}
	return charmap.CodePage437.DecodeByte(ch)
}

// paletteColor converts a palette entry to a true color tcell value.
func paletteColor(palette color.Palette, c console.Color) tcell.Color {
	if int(c) >= len(palette) {
		return tcell.ColorDefault
	}
	r, g, b, _ := palette[c].RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// render copies the text frame of cons to screen. The frame is drawn at the
// top left corner; cells that do not fit the screen are skipped.
func render(screen tcell.Screen, cons *console.VgaText) {
	palette := cons.Palette()
	cols, rows := cons.Dimensions()
	sw, sh := screen.Size()

	for row := uint32(0); row < rows && int(row) < sh; row++ {
		for col := uint32(0); col < cols && int(col) < sw; col++ {
			cell := cons.ReadCell(row, col)
			style := tcell.StyleDefault.
				Foreground(paletteColor(palette, cell.Attr.Fg())).
				Background(paletteColor(palette, cell.Attr.Bg()))
			screen.SetContent(int(col), int(row), glyph(cell.Ch), nil, style)
		}
	}
	screen.Show()
}
