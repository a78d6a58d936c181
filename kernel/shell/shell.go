// Package shell implements the line oriented command interpreter that runs on
// top of the terminal. Key presses are decoded and echoed to the terminal;
// when a line is committed, a line starting with the prompt marker is parsed
// and the first word selects a command.
package shell

import (
	"bytes"
	"kfs/device/keyboard"
	"kfs/device/rtc"
	"kfs/device/tty"
	"kfs/kernel"
	"kfs/kernel/cpu"
	"kfs/kernel/kfmt"
	"unicode/utf8"
	"unsafe"
)

const (
	// lineBufSize covers the widest frame the boot storage is sized for
	// without touching the heap.
	lineBufSize = 256

	defaultGDTBase = 0x800
	defaultGDTSize = 7 * 8
)

var promptMarker = []byte(tty.PromptMarker)

// Region describes a span of memory that can be dumped by the shell.
type Region struct {
	Base uintptr
	Size uintptr
}

// Config holds the machine facilities available to shell commands. Zero
// fields are replaced by defaults in New.
type Config struct {
	// Clock backs the date command.
	Clock rtc.Clock

	// Reboot resets the machine; the reboot command reports an error if
	// it is not set.
	Reboot func()

	// Halt stops the CPU. Defaults to cpu.Stop.
	Halt func()

	// Stack is the kernel stack region dumped by the stack command.
	Stack Region

	// GDT is the descriptor table region dumped by the gdt command.
	// Defaults to the 7 descriptors loaded at 0x800 by the boot code.
	GDT Region

	// ReadMem copies len(dst) bytes starting at addr into dst. Defaults
	// to a direct read of identity-mapped memory.
	ReadMem func(addr uintptr, dst []byte)

	// NoBanner skips the boot banner.
	NoBanner bool
}

// Command is an entry in the shell command table.
type Command struct {
	Name string

	// Usage and Help are listed by the help command; commands with an
	// empty Help are not listed.
	Usage string
	Help  string

	// Handler runs the command. args holds the rest of the line after the
	// command name, without surrounding blanks. Handlers are invoked with
	// command mode disabled and must re-enable it before printing their
	// last line of output.
	Handler func(sh *Shell, args []byte)
}

// Shell reads scan codes, echoes the decoded characters to a terminal and
// runs the commands entered at the prompt.
type Shell struct {
	term     tty.Device
	cfg      Config
	decoder  keyboard.Decoder
	commands []Command

	lineBuf [lineBufSize]byte
}

// New creates a shell that runs commands against term.
func New(term tty.Device, cfg Config) *Shell {
	if cfg.Halt == nil {
		cfg.Halt = cpu.Stop
	}
	if cfg.GDT.Size == 0 {
		cfg.GDT = Region{Base: defaultGDTBase, Size: defaultGDTSize}
	}
	if cfg.ReadMem == nil {
		cfg.ReadMem = readMem
	}

	return &Shell{
		term:     term,
		cfg:      cfg,
		commands: builtinCommands,
	}
}

// Welcome prints the boot banner (unless disabled) and shows the first
// prompt.
func (sh *Shell) Welcome() {
	if !sh.cfg.NoBanner {
		sh.printf("%s", banner)
		sh.printf("Type help to list the available commands.\n")
	}
	sh.term.Prompt()
}

// Run feeds scan codes from src to the shell forever.
func (sh *Shell) Run(src keyboard.Device) {
	for {
		sh.HandleScanCode(src.ReadScanCode())
	}
}

// HandleScanCode decodes a single scan code. Characters are echoed to the
// terminal, arrow keys scroll the history or move the cursor and Enter
// dispatches the committed line.
func (sh *Shell) HandleScanCode(code uint8) {
	ev := sh.decoder.Decode(code)
	switch ev.Kind {
	case keyboard.EventNav:
		switch ev.Nav {
		case keyboard.NavUp:
			sh.term.ScrollUp()
		case keyboard.NavDown:
			sh.term.ScrollDown()
		case keyboard.NavLeft:
			sh.term.MoveCursor(-1)
		case keyboard.NavRight:
			sh.term.MoveCursor(1)
		}
	case keyboard.EventChar:
		sh.term.WriteByte(ev.Char)
		if ev.Char == '\n' {
			sh.Dispatch(sh.term.LastLine(sh.lineBuf[:0]))
		}
	}
}

// Dispatch parses a committed line and runs the selected command. Lines that
// do not start with the prompt marker are ignored.
func (sh *Shell) Dispatch(line []byte) {
	if !utf8.Valid(line) {
		sh.term.ToggleCmd(false)
		sh.done("Unprintable characters spotted\n")
		return
	}

	if !bytes.HasPrefix(line, promptMarker) {
		return
	}

	input := bytes.TrimSpace(line[len(promptMarker):])
	if len(input) == 0 {
		sh.term.Prompt()
		return
	}

	name, args := nextField(input)
	sh.term.ToggleCmd(false)

	if cmd := sh.lookup(name); cmd != nil {
		cmd.Handler(sh, args)
		return
	}

	sh.done("kfs: %s: command not found\n", name)
}

func (sh *Shell) lookup(name []byte) *Command {
	for i := range sh.commands {
		if string(name) == sh.commands[i].Name {
			return &sh.commands[i]
		}
	}
	return nil
}

func (sh *Shell) printf(format string, args ...interface{}) {
	kfmt.Fprintf(sh.term, format, args...)
}

// done re-enables command mode and prints the last line of a command's
// output; the line feed that ends it brings up a fresh prompt.
func (sh *Shell) done(format string, args ...interface{}) {
	sh.term.ToggleCmd(true)
	kfmt.Fprintf(sh.term, format, args...)
}

// nextField splits the first blank-separated word off b.
func nextField(b []byte) (field, rest []byte) {
	b = bytes.TrimLeft(b, " ")
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		return b[:i], bytes.TrimLeft(b[i:], " ")
	}
	return b, nil
}

func readMem(addr uintptr, dst []byte) {
	if len(dst) == 0 {
		return
	}
	kernel.Memcopy(addr, uintptr(unsafe.Pointer(&dst[0])), uintptr(len(dst)))
}
