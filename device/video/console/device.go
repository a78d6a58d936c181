package console

import "image/color"

// The Device interface is implemented by objects that can function as a
// system text frame. Rows and columns are 0-based; accessing a cell outside
// the frame is a fatal error.
type Device interface {
	// Dimensions returns the frame width and height in characters.
	Dimensions() (cols, rows uint32)

	// DefaultColors returns the default foreground and background colors
	// used by this console.
	DefaultColors() (fg, bg Color)

	// WriteCell stores c at (row, col).
	WriteCell(row, col uint32, c Cell)

	// ReadCell loads the cell at (row, col).
	ReadCell(row, col uint32) Cell

	// FillRow sets every cell of row to c.
	FillRow(row uint32, c Cell)

	// Palette returns the active color palette for this console.
	Palette() color.Palette
}
