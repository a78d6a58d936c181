// Package kmain contains the kernel entrypoint invoked by the rt0 code.
package kmain

import (
	"kfs/device/keyboard"
	"kfs/kernel"
	"kfs/kernel/hal"
	"kfs/kernel/hal/multiboot"
	"kfs/kernel/kfmt"
	"kfs/kernel/shell"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
	errNoConsole     = &kernel.Error{Module: "kmain", Message: "no terminal or keyboard detected"}

	getBootCmdLineFn = multiboot.GetBootCmdLine
	detectHardwareFn = hal.DetectHardware
	activeTTYFn      = hal.ActiveTTY
	activeKeyboardFn = hal.ActiveKeyboard
	runShellFn       = (*shell.Shell).Run
	panicFn          = kfmt.Panic
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. The rt0 code passes the address of the multiboot info
// payload provided by the bootloader and the bounds of the kernel stack it
// set up.
//
// Kmain is not expected to return. If it does, the kernel panics.
//
//go:noinline
func Kmain(multibootInfoPtr, stackBottom, stackTop uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	cfg := hal.ParseConfig(getBootCmdLineFn())
	detectHardwareFn(cfg)

	term, kbd := activeTTYFn(), activeKeyboardFn()
	if term == nil || kbd == nil {
		panicFn(errNoConsole)
		return
	}

	sh := shell.New(term, shellConfig(cfg, kbd, stackBottom, stackTop))
	sh.Welcome()
	runShellFn(sh, kbd)

	// Use panicFn instead of panic to prevent the compiler from treating
	// kfmt.Panic as dead-code and eliminating it.
	panicFn(errKmainReturned)
}

func shellConfig(cfg hal.Config, kbd keyboard.Device, stackBottom, stackTop uintptr) shell.Config {
	shCfg := shell.Config{
		Clock:    hal.ActiveClock(),
		NoBanner: !cfg.Banner,
	}

	if stackTop > stackBottom {
		shCfg.Stack = shell.Region{Base: stackBottom, Size: stackTop - stackBottom}
	}

	if r, ok := kbd.(interface{ Reboot() }); ok {
		shCfg.Reboot = r.Reboot
	}

	return shCfg
}
