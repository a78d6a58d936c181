package keyboard

import (
	"io"
	"kfs/kernel"
	"kfs/kernel/cpu"
	"kfs/kernel/kfmt"
)

const (
	ps2DataPort    = 0x60
	ps2StatusPort  = 0x64
	ps2CommandPort = 0x64

	// ps2OutputFull is set in the status register when a byte is waiting
	// in the data port.
	ps2OutputFull = 1 << 0

	// ps2CmdPulseReset pulses the CPU reset line.
	ps2CmdPulseReset = 0xfe

	// maxStaleBytes bounds the number of bytes drained during init.
	maxStaleBytes = 16
)

var (
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte
)

// Device is implemented by scan code sources.
type Device interface {
	// ReadScanCode blocks until a scan code is available.
	ReadScanCode() uint8

	// TryReadScanCode returns the next scan code if one is available.
	TryReadScanCode() (uint8, bool)
}

// PS2Controller reads scan codes from the first port of an 8042 compatible
// PS/2 controller by polling its status register.
type PS2Controller struct{}

// ReadScanCode busy-waits until the controller has a byte and returns it.
func (ctrl *PS2Controller) ReadScanCode() uint8 {
	for portReadByteFn(ps2StatusPort)&ps2OutputFull == 0 {
	}

	return portReadByteFn(ps2DataPort)
}

// TryReadScanCode returns the pending byte, if any, without blocking.
func (ctrl *PS2Controller) TryReadScanCode() (uint8, bool) {
	if portReadByteFn(ps2StatusPort)&ps2OutputFull == 0 {
		return 0, false
	}

	return portReadByteFn(ps2DataPort), true
}

// Reboot asks the controller to pulse the CPU reset line.
func (ctrl *PS2Controller) Reboot() {
	portWriteByteFn(ps2CommandPort, ps2CmdPulseReset)
}

// DriverName returns the name of this driver.
func (ctrl *PS2Controller) DriverName() string {
	return "ps2_keyboard"
}

// DriverVersion returns the version of this driver.
func (ctrl *PS2Controller) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit drains any bytes left in the controller output buffer by the
// firmware so that the first key press is decoded from a clean state.
func (ctrl *PS2Controller) DriverInit(w io.Writer) *kernel.Error {
	var drained int
	for ; drained < maxStaleBytes; drained++ {
		if _, ok := ctrl.TryReadScanCode(); !ok {
			break
		}
	}

	if drained != 0 {
		kfmt.Fprintf(w, "discarded %d stale bytes\n", drained)
	}

	return nil
}
