// Package hal probes the registered device drivers and wires the detected
// devices together into a working console.
package hal

import (
	"bytes"
	"kfs/device"
	"kfs/device/keyboard"
	"kfs/device/rtc"
	"kfs/device/tty"
	"kfs/device/video/console"
	"kfs/kernel/kfmt"
	"sort"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole  console.Device
	activeTTY      tty.Device
	activeKeyboard keyboard.Device
	activeClock    rtc.Clock

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices managedDevices
	strBuf  bytes.Buffer
)

// ActiveTTY returns the currently active TTY.
func ActiveTTY() tty.Device {
	return devices.activeTTY
}

// ActiveKeyboard returns the currently active keyboard.
func ActiveKeyboard() keyboard.Device {
	return devices.activeKeyboard
}

// ActiveClock returns the currently active real-time clock.
func ActiveClock() rtc.Clock {
	return devices.activeClock
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers.
func DetectHardware(cfg Config) {
	// Drivers with the same priority are probed in registration order.
	drivers := device.DriverList()
	sort.Stable(drivers)

	probe(drivers, cfg)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList, cfg Config) {
	var w = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv, cfg)
		devices.activeDrivers = append(devices.activeDrivers, drv)

		// Once the terminal takes over, the remaining init output goes
		// to the screen.
		w.Sink = kfmt.GetOutputSink()
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized. The first device of each kind becomes the
// active one.
func onDriverInit(drv device.Driver, cfg Config) {
	switch drvImpl := drv.(type) {
	case console.Device:
		if devices.activeConsole != nil {
			return
		}

		devices.activeConsole = drvImpl
		if devices.activeTTY != nil {
			linkTTYToConsole(cfg)
		}
	case tty.Device:
		if devices.activeTTY != nil {
			return
		}

		drvImpl.SetScrollback(cfg.Scrollback)
		devices.activeTTY = drvImpl
		if devices.activeConsole != nil {
			linkTTYToConsole(cfg)
		}
	case keyboard.Device:
		if devices.activeKeyboard == nil {
			devices.activeKeyboard = drvImpl
		}
	case rtc.Clock:
		if devices.activeClock == nil {
			devices.activeClock = drvImpl
		}
	}
}

// linkTTYToConsole connects the active TTY device to the active console device
// and redirects kfmt output to it. Panic reports bypass the terminal and are
// drawn directly onto the console.
func linkTTYToConsole(cfg Config) {
	devices.activeTTY.AttachTo(devices.activeConsole)

	_, bg := devices.activeConsole.DefaultColors()
	devices.activeTTY.ChangeColor(cfg.Color, bg)

	kfmt.SetOutputSink(devices.activeTTY)
	kfmt.SetPanicSink(console.NewPanicWriter(devices.activeConsole))
}
