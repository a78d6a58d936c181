// Package cpu exposes the handful of privileged instructions the console
// needs: port I/O and stopping the processor.
package cpu

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// Stop masks interrupts and halts the processor in a loop so that a stray
// NMI cannot resume execution. Stop never returns on real hardware.
func Stop() {
	disableInterruptsFn()
	for {
		haltFn()
		if stopReturnsFn() {
			return
		}
	}
}

var (
	disableInterruptsFn = DisableInterrupts
	haltFn              = Halt

	// stopReturnsFn lets tests break out of the Stop loop.
	stopReturnsFn = func() bool { return false }
)
