// Command kfsim runs the kfs console and shell in a host terminal. Key presses
// are translated to PS/2 scan codes and the text frame is mirrored to the
// screen, so the kernel's terminal and command code can be exercised without
// booting a machine.
package main

import (
	"flag"
	"fmt"
	"kfs/kernel/hal"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	scrollbackFlag = flag.String("scrollback", "", "lines of history kept per tab")
	colorFlag      = flag.String("color", "", "initial foreground color")
	bannerFlag     = flag.Bool("banner", true, "print the welcome banner")
	colsFlag       = flag.Uint("cols", 80, "text frame width")
	rowsFlag       = flag.Uint("rows", 25, "text frame height")
	beepFlag       = flag.Bool("beep", true, "play the POST beep on boot")
	snapshotFlag   = flag.String("snapshot", "", "write the final text frame to this PNG file")
	scriptFlag     = flag.String("script", "", "drive the machine from a Lua script instead of the keyboard")
)

// bootCmdLine builds the kernel command line the flags describe so that the
// simulator goes through the same parsing as a real boot.
func bootCmdLine(scrollback, color string, banner bool) map[string]string {
	cmdLine := make(map[string]string)
	if scrollback != "" {
		cmdLine["kfs.scrollback"] = scrollback
	}
	if color != "" {
		cmdLine["kfs.color"] = color
	}
	if !banner {
		cmdLine["kfs.banner"] = "off"
	}
	return cmdLine
}

// run pumps events from screen into m until the user quits or the machine
// halts. Returns the number of boots performed.
func run(screen tcell.Screen, m *machine) int {
	var codes []uint8

	render(screen, m.cons)
	for !m.halted {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return m.boots
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if isQuit(ev) {
				return m.boots
			}
			codes = scanCodes(codes[:0], ev)
			m.feed(codes)
		}
		render(screen, m.cons)
	}
	return m.boots
}

func main() {
	flag.Parse()

	if *colsFlag == 0 || *rowsFlag < 3 {
		fmt.Fprintln(os.Stderr, "kfsim: the text frame needs at least 1 column and 3 rows")
		os.Exit(2)
	}

	cfg := hal.ParseConfig(bootCmdLine(*scrollbackFlag, *colorFlag, *bannerFlag))
	m := newMachine(uint32(*colsFlag), uint32(*rowsFlag), cfg)

	var err error
	if *scriptFlag != "" {
		err = runScriptFile(*scriptFlag, m)
	} else {
		err = runInteractive(m)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kfsim: %v\n", err)
		os.Exit(1)
	}

	if *snapshotFlag != "" {
		if err := saveSnapshot(*snapshotFlag, m); err != nil {
			fmt.Fprintf(os.Stderr, "kfsim: snapshot: %v\n", err)
			os.Exit(1)
		}
	}
}

func runScriptFile(path string, m *machine) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading script")
	}

	m.boot()
	return errors.Wrapf(runScript(m, string(src)), "script %s", path)
}

func runInteractive(m *machine) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal")
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < int(m.cols) || h < int(m.rows)) {
		fmt.Fprintf(os.Stderr, "kfsim: terminal is %dx%d, frame is %dx%d; output will be clipped\n", w, h, m.cols, m.rows)
	}

	if *beepFlag {
		beeper := newSpeakerBeeper()
		defer beeper.Close()
		m.onReset = beeper.Beep
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "opening screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "initializing screen")
	}
	screen.HideCursor()

	m.boot()
	boots := run(screen, m)
	screen.Fini()

	fmt.Printf("kfsim: machine stopped after %d boot(s)\n", boots)
	return nil
}

func saveSnapshot(path string, m *machine) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating snapshot file")
	}

	if err := writeSnapshot(f, m.cons); err != nil {
		f.Close()
		return errors.Wrap(err, "encoding snapshot")
	}
	return f.Close()
}
