// Package keyboard translates PS/2 scan codes (set 1) into key events and
// provides the driver for the PS/2 controller that produces them.
package keyboard

// EventKind identifies the type of a decoded key event.
type EventKind uint8

const (
	// EventNone is returned for scan codes that produce nothing, such as
	// key releases and unmapped keys.
	EventNone EventKind = iota

	// EventChar carries a character from the active layout table.
	EventChar

	// EventModifierPress is returned when shift is pressed or caps lock
	// is toggled.
	EventModifierPress

	// EventModifierRelease is returned when shift is released.
	EventModifierRelease

	// EventNav carries a navigation key.
	EventNav
)

// NavKey identifies a navigation (arrow) key.
type NavKey uint8

// The supported navigation keys.
const (
	NavUp NavKey = iota + 1
	NavDown
	NavLeft
	NavRight
)

// Event is a decoded key event.
type Event struct {
	Kind EventKind

	// Char is set for EventChar events.
	Char byte

	// Nav is set for EventNav events.
	Nav NavKey
}

// Modifiers holds the modifier key state that the decoder threads through
// successive calls.
type Modifiers struct {
	// Shift counts the shift keys currently held down.
	Shift uint8

	// CapsLock is toggled on every caps lock press.
	CapsLock bool
}

// Shifted reports whether the shifted layout table is active. Shift and caps
// lock do not cancel each other out: the shifted table is used whenever
// either of them is active.
func (m *Modifiers) Shifted() bool {
	return m.Shift > 0 || m.CapsLock
}

// Decode converts a scan code into an event, updating mods for modifier
// keys. A shift release without a matching press leaves the counter at zero.
func Decode(mods *Modifiers, code uint8) Event {
	switch code {
	case CodeUp:
		return Event{Kind: EventNav, Nav: NavUp}
	case CodeDown:
		return Event{Kind: EventNav, Nav: NavDown}
	case CodeLeft:
		return Event{Kind: EventNav, Nav: NavLeft}
	case CodeRight:
		return Event{Kind: EventNav, Nav: NavRight}
	case CodeLeftShift, CodeRightShift:
		mods.Shift++
		return Event{Kind: EventModifierPress}
	case CodeLeftShift | BreakBit, CodeRightShift | BreakBit:
		if mods.Shift > 0 {
			mods.Shift--
		}
		return Event{Kind: EventModifierRelease}
	case CodeCapsLock:
		mods.CapsLock = !mods.CapsLock
		return Event{Kind: EventModifierPress}
	}

	if code == 0 || code >= tableSize {
		return Event{}
	}

	ch := usLayout[code]
	if mods.Shifted() {
		ch = usLayoutShifted[code]
	}

	if ch == 0 {
		return Event{}
	}

	return Event{Kind: EventChar, Char: ch}
}

// Decoder decodes a stream of scan codes from a single keyboard.
type Decoder struct {
	mods Modifiers
}

// Decode converts the next scan code of the stream into an event.
func (d *Decoder) Decode(code uint8) Event {
	return Decode(&d.mods, code)
}

// Modifiers returns the current modifier state.
func (d *Decoder) Modifiers() Modifiers {
	return d.mods
}
