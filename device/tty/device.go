package tty

import (
	"io"
	"kfs/device/video/console"
)

const (
	// DefaultScrollback defines the number of committed lines each tab
	// retains.
	DefaultScrollback = 1000

	// NumTabs is the number of independent terminal views sharing the
	// frame.
	NumTabs = 3

	// PromptMarker is written at the start of every command line.
	PromptMarker = "$>"
)

// Device is implemented by objects that can be used as a terminal device.
type Device interface {
	io.Writer
	io.ByteWriter

	// AttachTo connects a TTY to a console instance.
	AttachTo(console.Device)

	// SetScrollback sets the number of lines retained per tab. It only
	// has an effect before AttachTo is called.
	SetScrollback(lines uint32)

	// ChangeColor sets the attribute used for subsequent writes.
	ChangeColor(fg, bg console.Color)

	// ScrollUp moves the history view one line towards older output.
	ScrollUp()

	// ScrollDown moves the history view one line towards the live view.
	ScrollDown()

	// SwitchTab activates the next tab (n == 0) or tab n (1-based).
	SwitchTab(n int)

	// ToggleCmd enables or disables command mode.
	ToggleCmd(on bool)

	// Prompt enables command mode and makes sure the input line starts
	// with a fresh prompt.
	Prompt()

	// MoveCursor moves the editing cursor by delta columns.
	MoveCursor(delta int)

	// LastLine appends the characters of the most recently committed
	// line to dst.
	LastLine(dst []byte) []byte

	// Clear discards the active tab's history.
	Clear()
}
