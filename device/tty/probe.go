package tty

import (
	"kfs/device"
	"kfs/device/video/console"
	"kfs/kernel/kfmt"
)

// bootStorageWidth is the frame width for which bootStorage holds a full
// DefaultScrollback history on every tab. Wider frames get a shorter history.
const bootStorageWidth = 80

var (
	panicFn = kfmt.Panic

	// bootStorage backs the terminal created by the driver probe. It
	// lives in the kernel image so the console works before any heap is
	// available.
	bootStorage [NumTabs * (DefaultScrollback + 2) * bootStorageWidth]console.Cell
)

func probeForTerminal() device.Driver {
	return NewTerminal(DefaultScrollback).UseStorage(bootStorage[:])
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeForTerminal,
	})
}
