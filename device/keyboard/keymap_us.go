package keyboard

// Scan codes (set 1) with a special meaning for the decoder.
const (
	CodeEscape     = 0x01
	CodeBackspace  = 0x0e
	CodeTab        = 0x0f
	CodeEnter      = 0x1c
	CodeLeftCtrl   = 0x1d
	CodeLeftShift  = 0x2a
	CodeRightShift = 0x36
	CodeLeftAlt    = 0x38
	CodeSpace      = 0x39
	CodeCapsLock   = 0x3a

	CodeUp    = 0x48
	CodeLeft  = 0x4b
	CodeRight = 0x4d
	CodeDown  = 0x50

	// BreakBit is set on the scan code sent when a key is released.
	BreakBit = 0x80
)

// tableSize is the number of scan codes covered by the US layout tables.
const tableSize = 59

// A zero entry means the key produces no character.
var usLayout = [tableSize]byte{
	0, 0x1b, '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=', '\b',
	'\t', 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']', '\n',
	0, 'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`',
	0, '\\', 'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/', 0,
	0, 0, ' ', 0,
}

var usLayoutShifted = [tableSize]byte{
	0, 0x1b, '!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '_', '+', '\b',
	'\t', 'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P', '{', '}', '\n',
	0, 'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L', ':', '"', '~',
	0, '|', 'Z', 'X', 'C', 'V', 'B', 'N', 'M', '<', '>', '?', 0,
	0, 0, ' ', 0,
}

// ScanCodes returns the make code that produces ch and whether shift must be
// held for it. The unshifted table is searched first so that keys present in
// both tables (space, enter, backspace) do not require shift.
func ScanCodes(ch byte) (code uint8, shift bool, ok bool) {
	if ch == 0 {
		return 0, false, false
	}

	for index, c := range usLayout {
		if c == ch {
			return uint8(index), false, true
		}
	}

	for index, c := range usLayoutShifted {
		if c == ch {
			return uint8(index), true, true
		}
	}

	return 0, false, false
}
