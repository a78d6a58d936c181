package main

import (
	"kfs/device/keyboard"

	"github.com/gdamore/tcell/v2"
)

// navCodes maps the tcell cursor keys to their set 1 make codes.
var navCodes = map[tcell.Key]uint8{
	tcell.KeyUp:    keyboard.CodeUp,
	tcell.KeyDown:  keyboard.CodeDown,
	tcell.KeyLeft:  keyboard.CodeLeft,
	tcell.KeyRight: keyboard.CodeRight,
}

// editCodes maps the tcell editing keys to their set 1 make codes.
var editCodes = map[tcell.Key]uint8{
	tcell.KeyEnter:      keyboard.CodeEnter,
	tcell.KeyBackspace:  keyboard.CodeBackspace,
	tcell.KeyBackspace2: keyboard.CodeBackspace,
	tcell.KeyTab:        keyboard.CodeTab,
	tcell.KeyEscape:     keyboard.CodeEscape,
}

// scanCodes appends to dst the make and break codes a PS/2 keyboard would
// send for ev. Keys with no US layout equivalent produce nothing.
func scanCodes(dst []uint8, ev *tcell.EventKey) []uint8 {
	if code, ok := navCodes[ev.Key()]; ok {
		return append(dst, code, code|keyboard.BreakBit)
	}
	if code, ok := editCodes[ev.Key()]; ok {
		return append(dst, code, code|keyboard.BreakBit)
	}
	if ev.Key() != tcell.KeyRune {
		return dst
	}

	r := ev.Rune()
	if r <= 0 || r > 0x7f {
		return dst
	}
	return charCodes(dst, byte(r))
}

// charCodes appends the key strokes that type ch on a US keyboard, wrapping
// them in a left shift press when the shifted table is needed.
func charCodes(dst []uint8, ch byte) []uint8 {
	code, shift, ok := keyboard.ScanCodes(ch)
	if !ok {
		return dst
	}

	if shift {
		dst = append(dst, keyboard.CodeLeftShift)
	}
	dst = append(dst, code, code|keyboard.BreakBit)
	if shift {
		dst = append(dst, keyboard.CodeLeftShift|keyboard.BreakBit)
	}
	return dst
}

// isQuit reports whether ev should terminate the simulator.
func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC
}
