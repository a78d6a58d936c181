package console

import (
	"kfs/device"
	"kfs/kernel/cpu"
	"kfs/kernel/hal/multiboot"
	"kfs/kernel/kfmt"
)

const (
	// The legacy text frame used when the bootloader provides no
	// framebuffer description.
	fallbackFbPhysAddr = uintptr(0xB8000)
	fallbackCols       = 80
	fallbackRows       = 25
)

var (
	portWriteByteFn      = cpu.PortWriteByte
	getFramebufferInfoFn = multiboot.GetFramebufferInfo
	panicFn              = kfmt.Panic
)

// probeForVgaTextConsole checks for the presence of a vga text console. When
// the bootloader reports no framebuffer at all, the legacy 80x25 frame is
// assumed; a graphical framebuffer yields no driver.
func probeForVgaTextConsole() device.Driver {
	fbInfo := getFramebufferInfoFn()
	switch {
	case fbInfo == nil:
		return NewVgaText(fallbackCols, fallbackRows, fallbackFbPhysAddr)
	case fbInfo.Type == multiboot.FramebufferTypeEGA:
		return NewVgaText(fbInfo.Width, fbInfo.Height, uintptr(fbInfo.PhysAddr))
	default:
		return nil
	}
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForVgaTextConsole,
	})
}
