package tty

import (
	"io"
	"kfs/device/video/console"
	"kfs/kernel"
	"kfs/kernel/sync"
)

const (
	promptWidth = uint32(len(PromptMarker))

	// interfaceFill is drawn across the row separating history from the
	// input line.
	interfaceFill = byte('_')

	// tabLabelWidth is the width of a "[n]" label plus a separator.
	tabLabelWidth = 4
)

// tab holds the per-view state of the terminal.
type tab struct {
	history Scrollback
	scroll  int

	// column is the cursor position on the input line, lineEnd the
	// length of its content and promptLen the first editable column.
	column    uint32
	lineEnd   uint32
	promptLen uint32

	// input keeps the tab's input row while another tab is active.
	input Line
}

// Terminal is the console writer. It owns the text frame and splits it into
// three regions:
//   - rows 0..H-3 show the active tab's history (the last H-2 committed
//     lines, offset by the tab's scroll position),
//   - row H-2 is the interface row: a rule plus tab labels,
//   - row H-1 is the live input line.
//
// Bytes written to the terminal are inserted at the cursor of the input line.
// A line feed commits the input line into the tab history. The following
// bytes receive special treatment:
//   - \n (commit line)
//   - \b (delete the character left of the cursor)
//
// All exported methods serialize on a single spinlock.
type Terminal struct {
	lock sync.Spinlock

	cons          console.Device
	width, height uint32
	visibleRows   int
	scrollback    uint32

	// storage, when set, backs the tab histories and saved input lines
	// instead of heap allocations.
	storage []console.Cell

	tabs      [NumTabs]tab
	activeTab int

	attr    console.Attr
	cmdMode bool

	// underCursor holds the cell that the cursor overlay replaced.
	underCursor console.Cell
	cursorShown bool
}

// NewTerminal creates a terminal that retains scrollback lines of history per
// tab. The terminal is unusable until it is attached to a console.
func NewTerminal(scrollback uint32) *Terminal {
	return &Terminal{scrollback: scrollback}
}

// SetScrollback sets the number of lines retained per tab. It has no effect
// once the terminal is attached.
func (t *Terminal) SetScrollback(lines uint32) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		t.scrollback = lines
	}
}

// UseStorage makes the terminal carve its per-tab history and input lines
// out of cells instead of allocating them. The scrollback is reduced to what
// cells can hold. It has no effect once the terminal is attached.
func (t *Terminal) UseStorage(cells []console.Cell) *Terminal {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		t.storage = cells
	}
	return t
}

// AttachTo connects the terminal to a console, sets up the per-tab history
// and renders the initial frame. Consoles with fewer than 3 rows, or whose
// history does not fit the storage supplied via UseStorage, are rejected.
func (t *Terminal) AttachTo(cons console.Device) {
	t.lock.Acquire()
	defer t.lock.Release()

	if cons == nil {
		return
	}

	width, height := cons.Dimensions()
	if width == 0 || height < 3 {
		return
	}

	visibleRows := int(height) - 2
	scrollback := int(t.scrollback)
	if scrollback < visibleRows {
		scrollback = visibleRows
	}

	// Each tab needs its ring plus a saved copy of the input line.
	var cells []console.Cell
	if t.storage != nil {
		maxScrollback := len(t.storage)/NumTabs/int(width) - 2
		if maxScrollback < visibleRows {
			return
		}
		if scrollback > maxScrollback {
			scrollback = maxScrollback
		}
		cells = t.storage
	} else {
		cells = make([]console.Cell, NumTabs*(scrollbackCells(scrollback, int(width))+int(width)))
	}

	t.cons = cons
	t.width, t.height = width, height
	t.visibleRows = visibleRows
	t.scrollback = uint32(scrollback)

	fg, bg := cons.DefaultColors()
	t.attr = console.MakeAttr(fg, bg)
	blank := console.Blank(t.attr)

	for i := range t.tabs {
		tb := &t.tabs[i]
		*tb = tab{}

		ringCells := scrollbackCells(scrollback, int(width))
		tb.history.init(cells, scrollback, int(width), blank)
		tb.input = Line(cells[ringCells : ringCells+int(width)])
		for col := range tb.input {
			tb.input[col] = blank
		}
		cells = cells[ringCells+int(width):]
	}

	t.activeTab = 0
	t.cmdMode = false
	t.cursorShown = false
	t.redraw()
}

// Write implements io.Writer. Bytes without a glyph are rendered using
// console.PlaceholderChar.
func (t *Terminal) Write(data []byte) (int, error) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return 0, io.ErrClosedPipe
	}

	for _, b := range data {
		t.emit(b)
	}

	return len(data), nil
}

// WriteString implements io.StringWriter with the same semantics as Write.
func (t *Terminal) WriteString(s string) (int, error) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return 0, io.ErrClosedPipe
	}

	for i := 0; i < len(s); i++ {
		t.emit(s[i])
	}

	return len(s), nil
}

// WriteByte implements io.ByteWriter. Bytes without a glyph are dropped.
func (t *Terminal) WriteByte(b byte) error {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return io.ErrClosedPipe
	}

	t.writeByte(b)
	return nil
}

// ChangeColor sets the attribute used for subsequent writes. Existing cells
// keep their color.
func (t *Terminal) ChangeColor(fg, bg console.Color) {
	t.lock.Acquire()
	defer t.lock.Release()

	t.attr = console.MakeAttr(fg, bg)
	if t.cons != nil {
		t.renderInterface()
	}
}

// Color returns the attribute used for subsequent writes.
func (t *Terminal) Color() console.Attr {
	t.lock.Acquire()
	defer t.lock.Release()

	return t.attr
}

// ScrollUp moves the history view one line towards older output. The view
// never scrolls past the oldest retained line.
func (t *Terminal) ScrollUp() {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	tb := t.cur()
	if maxScroll := tb.history.Len() - t.visibleRows; tb.scroll < maxScroll {
		tb.scroll++
		t.renderHistory()
	}
}

// ScrollDown moves the history view one line towards the live view.
func (t *Terminal) ScrollDown() {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	if tb := t.cur(); tb.scroll > 0 {
		tb.scroll--
		t.renderHistory()
	}
}

// Scroll returns the scroll offset of the active tab; 0 is the live view.
func (t *Terminal) Scroll() int {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return 0
	}
	return t.cur().scroll
}

// SwitchTab activates another tab. n == 0 cycles to the next tab, wrapping
// after the last one; 1 <= n <= NumTabs jumps to tab n-1. Other values are
// ignored.
func (t *Terminal) SwitchTab(n int) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	var target int
	switch {
	case n == 0:
		target = (t.activeTab + 1) % NumTabs
	case n >= 1 && n <= NumTabs:
		target = n - 1
	default:
		return
	}

	row := t.inputRow()
	t.hideCursor()

	saved := t.cur().input
	for col := uint32(0); col < t.width; col++ {
		saved[col] = t.cons.ReadCell(row, col)
	}

	t.activeTab = target
	t.redraw()
}

// ActiveTab returns the 0-based index of the active tab.
func (t *Terminal) ActiveTab() int {
	t.lock.Acquire()
	defer t.lock.Release()

	return t.activeTab
}

// ToggleCmd enables or disables command mode. While command mode is on,
// every committed line is followed by a fresh prompt. Leaving command mode
// removes a prompt that has no input after it.
func (t *Terminal) ToggleCmd(on bool) {
	t.lock.Acquire()
	defer t.lock.Release()

	t.cmdMode = on
	if t.cons == nil {
		return
	}

	if tb := t.cur(); !on && tb.promptLen != 0 && tb.lineEnd == tb.promptLen {
		t.hideCursor()
		t.cons.FillRow(t.inputRow(), console.Blank(t.attr))
		tb.column, tb.lineEnd, tb.promptLen = 0, 0, 0
		t.showCursor()
	}

	t.renderInterface()
}

// CmdMode reports whether command mode is active.
func (t *Terminal) CmdMode() bool {
	t.lock.Acquire()
	defer t.lock.Release()

	return t.cmdMode
}

// Prompt enables command mode and ensures the input line holds a fresh
// prompt. A non-empty input line is committed first.
func (t *Terminal) Prompt() {
	t.lock.Acquire()
	defer t.lock.Release()

	t.cmdMode = true
	if t.cons == nil {
		return
	}

	switch tb := t.cur(); {
	case tb.promptLen != 0 && tb.lineEnd == tb.promptLen:
	case tb.lineEnd == 0:
		t.hideCursor()
		t.writePrompt()
		t.showCursor()
	default:
		t.commitLine()
	}

	t.renderInterface()
}

// MoveCursor moves the editing cursor by delta columns, clamped to the
// editable part of the input line.
func (t *Terminal) MoveCursor(delta int) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	tb := t.cur()
	target := int(tb.column) + delta
	if target < int(tb.promptLen) {
		target = int(tb.promptLen)
	}
	if target > int(tb.lineEnd) {
		target = int(tb.lineEnd)
	}

	t.hideCursor()
	tb.column = uint32(target)
	t.showCursor()
}

// Column returns the cursor column of the active tab.
func (t *Terminal) Column() uint32 {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return 0
	}
	return t.cur().column
}

// LastLine appends the characters of the most recently committed line of the
// active tab to dst and returns the extended slice.
func (t *Terminal) LastLine(dst []byte) []byte {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return dst
	}

	for _, c := range t.cur().history.MostRecent() {
		dst = append(dst, c.Ch)
	}
	return dst
}

// Clear discards the active tab's history and returns to the live view.
func (t *Terminal) Clear() {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	tb := t.cur()
	tb.history.Clear(console.Blank(t.attr))
	tb.scroll = 0
	t.renderHistory()
}

// Redraw re-renders the whole frame from the terminal state.
func (t *Terminal) Redraw() {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons != nil {
		t.hideCursor()
		t.cur().input = t.snapshotInput(t.cur().input)
		t.redraw()
	}
}

// DriverName returns the name of this driver.
func (t *Terminal) DriverName() string {
	return "tty"
}

// DriverVersion returns the version of this driver.
func (t *Terminal) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver.
func (t *Terminal) DriverInit(_ io.Writer) *kernel.Error { return nil }

func (t *Terminal) cur() *tab {
	return &t.tabs[t.activeTab]
}

func (t *Terminal) inputRow() uint32 {
	return t.height - 1
}

func (t *Terminal) interfaceRow() uint32 {
	return t.height - 2
}

// emit writes b, substituting the placeholder glyph for bytes that have none.
func (t *Terminal) emit(b byte) {
	switch {
	case b == '\n' || b == '\b' || console.IsPrintable(b):
		t.writeByte(b)
	default:
		t.insert(console.PlaceholderChar)
	}
}

func (t *Terminal) writeByte(b byte) {
	switch {
	case b == '\n':
		t.commitLine()
	case b == '\b':
		t.backspace()
	case console.IsPrintable(b):
		t.insert(b)
	}
}

// commitLine archives the input line into the active tab's history, blanks
// the input line and returns to the live view. Cells after the prompt are
// recolored with the active attribute before they are archived.
func (t *Terminal) commitLine() {
	tb := t.cur()
	row := t.inputRow()

	t.hideCursor()

	line := tb.input
	for col := uint32(0); col < t.width; col++ {
		c := t.cons.ReadCell(row, col)
		if col >= tb.promptLen {
			c.Attr = t.attr
		}
		line[col] = c
	}
	tb.history.Push(line)

	t.cons.FillRow(row, console.Blank(t.attr))
	tb.column, tb.lineEnd, tb.promptLen = 0, 0, 0
	tb.scroll = 0

	if t.cmdMode {
		t.writePrompt()
	}

	t.renderHistory()
	t.showCursor()
}

// insert places b at the cursor, shifting the rest of the input line one
// column to the right. Once the line is full, further bytes are dropped.
func (t *Terminal) insert(b byte) {
	tb := t.cur()
	if tb.lineEnd >= t.width {
		return
	}

	row := t.inputRow()
	t.hideCursor()

	for col := tb.lineEnd; col > tb.column; col-- {
		t.cons.WriteCell(row, col, t.cons.ReadCell(row, col-1))
	}
	t.cons.WriteCell(row, tb.column, console.Cell{Ch: b, Attr: t.attr})
	tb.column++
	tb.lineEnd++

	t.showCursor()
}

// backspace removes the character left of the cursor, shifting the rest of
// the input line one column to the left. The prompt cannot be deleted.
func (t *Terminal) backspace() {
	tb := t.cur()
	if tb.column <= tb.promptLen {
		return
	}

	row := t.inputRow()
	t.hideCursor()

	for col := tb.column; col < tb.lineEnd; col++ {
		t.cons.WriteCell(row, col-1, t.cons.ReadCell(row, col))
	}
	t.cons.WriteCell(row, tb.lineEnd-1, console.Blank(t.attr))
	tb.column--
	tb.lineEnd--

	t.showCursor()
}

// writePrompt writes the prompt marker at the start of the (blank) input
// line and reserves it from editing.
func (t *Terminal) writePrompt() {
	tb := t.cur()
	row := t.inputRow()
	attr := console.MakeAttr(console.LightCyan, t.attr.Bg())

	for col := uint32(0); col < promptWidth && col < t.width; col++ {
		t.cons.WriteCell(row, col, console.Cell{Ch: PromptMarker[col], Attr: attr})
	}

	tb.column, tb.lineEnd, tb.promptLen = promptWidth, promptWidth, promptWidth
}

// showCursor overlays the cursor on the input line by inverting the colors of
// the cell under it.
func (t *Terminal) showCursor() {
	tb := t.cur()
	if t.cursorShown || tb.column >= t.width {
		return
	}

	row := t.inputRow()
	t.underCursor = t.cons.ReadCell(row, tb.column)
	t.cons.WriteCell(row, tb.column, console.Cell{Ch: t.underCursor.Ch, Attr: t.underCursor.Attr.Inverted()})
	t.cursorShown = true
}

// hideCursor restores the cell under the cursor overlay.
func (t *Terminal) hideCursor() {
	if !t.cursorShown {
		return
	}

	t.cons.WriteCell(t.inputRow(), t.cur().column, t.underCursor)
	t.cursorShown = false
}

// snapshotInput copies the input row from the frame into dst.
func (t *Terminal) snapshotInput(dst Line) Line {
	row := t.inputRow()
	for col := uint32(0); col < t.width; col++ {
		dst[col] = t.cons.ReadCell(row, col)
	}
	return dst
}

// redraw renders the active tab: history, interface row and input line. The
// cursor must be hidden and the input line of the active tab saved.
func (t *Terminal) redraw() {
	row := t.inputRow()
	for col, c := range t.cur().input {
		t.cons.WriteCell(row, uint32(col), c)
	}

	t.renderHistory()
	t.renderInterface()
	t.showCursor()
}

// renderHistory copies the visible window of the active tab's history into
// the frame; the bottom history row shows the line scroll positions before
// the newest one.
func (t *Terminal) renderHistory() {
	tb := t.cur()
	for row := 0; row < t.visibleRows; row++ {
		line := tb.history.Line(tb.scroll + t.visibleRows - 1 - row)
		for col := uint32(0); col < t.width; col++ {
			t.cons.WriteCell(uint32(row), col, line[col])
		}
	}
}

// renderInterface draws the rule between history and input and the tab
// labels; the active tab label is drawn inverted.
func (t *Terminal) renderInterface() {
	row := t.interfaceRow()
	t.cons.FillRow(row, console.Cell{Ch: interfaceFill, Attr: t.attr})

	labelsWidth := uint32(NumTabs * tabLabelWidth)
	if t.width < labelsWidth {
		return
	}

	start := t.width - labelsWidth
	for i := 0; i < NumTabs; i++ {
		attr := t.attr
		if i == t.activeTab {
			attr = attr.Inverted()
		}

		col := start + uint32(i*tabLabelWidth)
		t.cons.WriteCell(row, col, console.Cell{Ch: '[', Attr: attr})
		t.cons.WriteCell(row, col+1, console.Cell{Ch: byte('1' + i), Attr: attr})
		t.cons.WriteCell(row, col+2, console.Cell{Ch: ']', Attr: attr})
	}
}
