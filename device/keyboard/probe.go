package keyboard

import "kfs/device"

func probeForPS2Controller() device.Driver {
	return &PS2Controller{}
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderLast,
		Probe: probeForPS2Controller,
	})
}
