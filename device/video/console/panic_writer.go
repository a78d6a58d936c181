package console

// PanicAttr is the attribute used for kernel panic reports.
var PanicAttr = MakeAttr(White, Red)

// PanicWriter draws text straight onto a frame, starting at the top row,
// without going through the terminal. Kernel panics are reported through it
// because the terminal lock may be held by the code that faulted.
type PanicWriter struct {
	cons     Device
	row, col uint32
	fresh    bool
}

// NewPanicWriter returns a writer that draws onto cons.
func NewPanicWriter(cons Device) *PanicWriter {
	return &PanicWriter{cons: cons, fresh: true}
}

// Write implements io.Writer. Lines wider than the frame wrap; output past
// the last row continues at the top.
func (w *PanicWriter) Write(p []byte) (int, error) {
	width, height := w.cons.Dimensions()
	if width == 0 || height == 0 {
		return len(p), nil
	}

	for _, b := range p {
		if w.fresh {
			w.cons.FillRow(w.row, Blank(PanicAttr))
			w.fresh = false
		}

		if b == '\n' {
			w.newline(height)
			continue
		}

		if !IsPrintable(b) {
			b = PlaceholderChar
		}
		w.cons.WriteCell(w.row, w.col, Cell{Ch: b, Attr: PanicAttr})
		if w.col++; w.col == width {
			w.newline(height)
		}
	}

	return len(p), nil
}

func (w *PanicWriter) newline(height uint32) {
	w.col = 0
	w.row = (w.row + 1) % height
	w.fresh = true
}
