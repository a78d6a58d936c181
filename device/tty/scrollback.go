package tty

import (
	"kfs/device/video/console"
	"kfs/kernel"
)

var errScrollbackCorrupted = &kernel.Error{Module: "tty", Message: "scrollback ring indices corrupted"}

// Line is a fixed-width row of cells.
type Line []console.Cell

// Scrollback is a fixed-capacity circular buffer of committed lines. Pushing
// into a full ring evicts the oldest line. Line storage is supplied once when
// the ring is initialized and overwritten in place afterwards.
type Scrollback struct {
	// cells holds capacity line slots followed by a blank line.
	cells    []console.Cell
	width    int
	capacity int

	// oldest indexes the oldest retained line; newest indexes the slot
	// that the next Push will fill.
	oldest, newest int
	size           int
}

// NewScrollback allocates a ring holding up to capacity lines of width cells.
// All slots start out as blank lines.
func NewScrollback(capacity, width int, blank console.Cell) *Scrollback {
	if capacity < 1 {
		capacity = 1
	}

	sb := &Scrollback{}
	sb.init(make([]console.Cell, scrollbackCells(capacity, width)), capacity, width, blank)
	return sb
}

// scrollbackCells returns the number of cells backing a ring.
func scrollbackCells(capacity, width int) int {
	return (capacity + 1) * width
}

// init sets up the ring on top of cells which must hold at least
// scrollbackCells(capacity, width) entries.
func (sb *Scrollback) init(cells []console.Cell, capacity, width int, blank console.Cell) {
	*sb = Scrollback{
		cells:    cells[:scrollbackCells(capacity, width)],
		width:    width,
		capacity: capacity,
	}
	sb.fill(blank)
}

// Len returns the number of lines currently retained.
func (sb *Scrollback) Len() int {
	return sb.size
}

// Cap returns the maximum number of lines the ring can retain.
func (sb *Scrollback) Cap() int {
	return sb.capacity
}

// Push copies line into the ring. If the ring is full, the oldest line is
// evicted first. Cells beyond the ring width are ignored and missing cells
// are left blank.
func (sb *Scrollback) Push(line Line) {
	sb.checkIndices()

	if sb.size == sb.capacity {
		sb.oldest = (sb.oldest + 1) % sb.capacity
		sb.size--
	}

	dst := sb.slot(sb.newest)
	n := copy(dst, line)
	copy(dst[n:], sb.slot(sb.capacity)[n:])

	sb.newest = (sb.newest + 1) % sb.capacity
	sb.size++
}

// MostRecent returns the last pushed line or a blank line if the ring is
// empty. The returned slice aliases ring storage and is only valid until the
// next Push or Clear.
func (sb *Scrollback) MostRecent() Line {
	return sb.Line(0)
}

// Line returns the n-th most recent line (0 being the newest). Lines that
// are not retained are reported as blank.
func (sb *Scrollback) Line(n int) Line {
	sb.checkIndices()

	if n < 0 || n >= sb.size {
		return sb.slot(sb.capacity)
	}

	return sb.slot((sb.newest - 1 - n + sb.capacity) % sb.capacity)
}

// Clear blanks every slot and resets the ring so that it holds a single
// blank line.
func (sb *Scrollback) Clear(blank console.Cell) {
	sb.fill(blank)
	sb.oldest = 0
	sb.newest = 1 % sb.capacity
	sb.size = 1
}

func (sb *Scrollback) slot(index int) Line {
	return Line(sb.cells[index*sb.width : (index+1)*sb.width])
}

func (sb *Scrollback) fill(blank console.Cell) {
	for i := range sb.cells {
		sb.cells[i] = blank
	}
}

// checkIndices panics the kernel if the ring bookkeeping is inconsistent.
func (sb *Scrollback) checkIndices() {
	if sb.size < 0 || sb.size > sb.capacity || sb.oldest < 0 || sb.oldest >= sb.capacity ||
		sb.newest < 0 || sb.newest >= sb.capacity || (sb.oldest+sb.size)%sb.capacity != sb.newest {
		panicFn(errScrollbackCorrupted)
	}
}
