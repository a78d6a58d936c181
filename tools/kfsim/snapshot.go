package main

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"kfs/device/video/console"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Cell size of the snapshot font.
const (
	cellWidth  = 7
	cellHeight = 13
)

// snapshot draws the text frame of cons into an RGBA image. Characters
// outside the ASCII range of the font are drawn as a centered block.
func snapshot(cons *console.VgaText) *image.RGBA {
	palette := cons.Palette()
	cols, rows := cons.Dimensions()
	img := image.NewRGBA(image.Rect(0, 0, int(cols)*cellWidth, int(rows)*cellHeight))

	face := basicfont.Face7x13
	for row := uint32(0); row < rows; row++ {
		for col := uint32(0); col < cols; col++ {
			cell := cons.ReadCell(row, col)
			x, y := int(col)*cellWidth, int(row)*cellHeight
			bounds := image.Rect(x, y, x+cellWidth, y+cellHeight)

			draw.Draw(img, bounds, image.NewUniform(palette[cell.Attr.Bg()]), image.Point{}, draw.Src)
			fg := image.NewUniform(palette[cell.Attr.Fg()])

			switch {
			case cell.Ch == console.BlankChar || cell.Ch == 0:
			case console.IsPrintable(cell.Ch):
				d := font.Drawer{
					Dst:  img,
					Src:  fg,
					Face: face,
					Dot:  fixed.P(x, y+face.Ascent),
				}
				d.DrawString(string(rune(cell.Ch)))
			default:
				block := image.Rect(x+1, y+3, x+cellWidth-1, y+cellHeight-3)
				draw.Draw(img, block, fg, image.Point{}, draw.Src)
			}
		}
	}
	return img
}

// writeSnapshot encodes the text frame of cons as a PNG image.
func writeSnapshot(w io.Writer, cons *console.VgaText) error {
	return png.Encode(w, snapshot(cons))
}
