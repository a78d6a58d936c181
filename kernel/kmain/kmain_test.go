package kmain

import (
	"kfs/device/keyboard"
	"kfs/device/tty"
	"kfs/device/video/console"
	"kfs/kernel/hal"
	"kfs/kernel/hal/multiboot"
	"kfs/kernel/kfmt"
	"kfs/kernel/shell"
	"strings"
	"testing"
)

func TestKmain(t *testing.T) {
	defer func() {
		getBootCmdLineFn = multiboot.GetBootCmdLine
		detectHardwareFn = hal.DetectHardware
		activeTTYFn = hal.ActiveTTY
		activeKeyboardFn = hal.ActiveKeyboard
		runShellFn = (*shell.Shell).Run
		panicFn = kfmt.Panic
	}()

	cons := console.NewVgaTextBuffer(80, 25, make([]uint16, 80*25))
	term := tty.NewTerminal(50)
	term.AttachTo(cons)
	kbd := &mockKeyboard{}

	var (
		gotCfg   hal.Config
		ranShell bool
		gotPanic interface{}
	)

	getBootCmdLineFn = func() map[string]string {
		return map[string]string{"kfs.banner": "off", "kfs.scrollback": "64"}
	}
	detectHardwareFn = func(cfg hal.Config) { gotCfg = cfg }
	activeTTYFn = func() tty.Device { return term }
	activeKeyboardFn = func() keyboard.Device { return kbd }
	runShellFn = func(sh *shell.Shell, src keyboard.Device) {
		ranShell = true
		if src != kbd {
			t.Error("expected the shell to read from the active keyboard")
		}

		// Type a command to check the reboot wiring.
		sh.Dispatch([]byte("$>reboot"))
	}
	panicFn = func(e interface{}) { gotPanic = e }

	Kmain(0, 0x1000, 0x5000)

	if gotCfg.Scrollback != 64 || gotCfg.Banner {
		t.Fatalf("expected boot command line to be parsed into the config; got %+v", gotCfg)
	}

	if !ranShell {
		t.Fatal("expected Kmain to run the shell")
	}

	if kbd.reboots != 1 {
		t.Fatalf("expected reboot command to reach the keyboard controller; got %d calls", kbd.reboots)
	}

	if gotPanic != errKmainReturned {
		t.Fatalf("expected Kmain to panic with errKmainReturned when the shell returns; got %v", gotPanic)
	}

	if got := string(term.LastLine(nil)); !strings.HasPrefix(got, "rebooting ...") {
		t.Fatalf("expected reboot output; got %q", got)
	}
}

func TestKmainWithoutConsole(t *testing.T) {
	defer func() {
		getBootCmdLineFn = multiboot.GetBootCmdLine
		detectHardwareFn = hal.DetectHardware
		activeTTYFn = hal.ActiveTTY
		runShellFn = (*shell.Shell).Run
		panicFn = kfmt.Panic
	}()

	var gotPanic interface{}
	getBootCmdLineFn = func() map[string]string { return nil }
	detectHardwareFn = func(hal.Config) {}
	activeTTYFn = func() tty.Device { return nil }
	runShellFn = func(*shell.Shell, keyboard.Device) { t.Fatal("unexpected call to the shell") }
	panicFn = func(e interface{}) { gotPanic = e }

	Kmain(0, 0, 0)

	if gotPanic != errNoConsole {
		t.Fatalf("expected Kmain to panic with errNoConsole; got %v", gotPanic)
	}
}

func TestShellConfig(t *testing.T) {
	cfg := shellConfig(hal.DefaultConfig(), &mockKeyboard{}, 0x2000, 0x1000)
	if cfg.Stack.Size != 0 {
		t.Fatalf("expected an inverted stack range to be ignored; got %+v", cfg.Stack)
	}

	cfg = shellConfig(hal.DefaultConfig(), &keyboard.PS2Controller{}, 0x1000, 0x5000)
	if cfg.Stack != (shell.Region{Base: 0x1000, Size: 0x4000}) {
		t.Fatalf("unexpected stack region %+v", cfg.Stack)
	}

	if cfg.Reboot == nil || cfg.NoBanner {
		t.Fatalf("unexpected shell config %+v", cfg)
	}
}

type mockKeyboard struct {
	reboots int
}

func (m *mockKeyboard) ReadScanCode() uint8            { return 0 }
func (m *mockKeyboard) TryReadScanCode() (uint8, bool) { return 0, false }
func (m *mockKeyboard) Reboot()                        { m.reboots++ }
