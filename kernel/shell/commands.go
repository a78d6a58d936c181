package shell

import (
	"kfs/device/rtc"
	"kfs/device/video/console"
)

const (
	bytesPerLine = 16
	usageWidth   = 14
)

const banner = `  _    __
 | |  / _|___
 | | | |_/ __|
 | |/|  _\__ \
 |___|_| |___/  kernel from scratch

`

var builtinCommands = []Command{
	{Name: "help", Usage: "help", Help: "Lists the available commands", Handler: cmdHelp},
	{Name: "echo", Usage: "echo <text>", Help: "Prints its arguments", Handler: cmdEcho},
	{Name: "clear", Usage: "clear", Help: "Clears the current tab", Handler: cmdClear},
	{Name: "color", Usage: "color <name>", Help: "Changes the writing color", Handler: cmdColor},
	{Name: "stack", Usage: "stack <bytes>", Help: "Dumps the bottom of the kernel stack", Handler: cmdStack},
	{Name: "gdt", Usage: "gdt", Help: "Dumps the global descriptor table", Handler: cmdGDT},
	{Name: "date", Usage: "date", Help: "Prints the date and time", Handler: cmdDate},
	{Name: "reboot", Usage: "reboot", Help: "Reboots the machine", Handler: cmdReboot},
	{Name: "halt", Usage: "halt", Help: "Halts the CPU", Handler: cmdHalt},
	{Name: "s", Usage: "s/1/2/3", Help: "Switches to the next tab or to tab 1-3", Handler: switchTabCmd(0)},
	{Name: "1", Handler: switchTabCmd(1)},
	{Name: "2", Handler: switchTabCmd(2)},
	{Name: "3", Handler: switchTabCmd(3)},
	{Name: "42", Handler: cmd42},
}

func cmdHelp(sh *Shell, _ []byte) {
	sh.printf("Available commands:\n")
	for i := range sh.commands {
		cmd := &sh.commands[i]
		if cmd.Help == "" {
			continue
		}

		sh.printf("  %s", cmd.Usage)
		for pad := len(cmd.Usage); pad < usageWidth; pad++ {
			sh.printf(" ")
		}
		sh.printf(": %s\n", cmd.Help)
	}
	sh.done("There might be other hidden features...\n")
}

func cmdEcho(sh *Shell, args []byte) {
	sh.done("%s\n", args)
}

func cmdClear(sh *Shell, _ []byte) {
	sh.term.Clear()
	sh.term.Prompt()
}

func cmdColor(sh *Shell, args []byte) {
	name, _ := nextField(args)
	if len(name) == 0 {
		sh.printf("Please provide a color among:\n")
		for c := console.Blue; c < console.White; c++ {
			sh.printf(" %s", c.String())
			if c == console.LightGray {
				sh.printf("\n")
			}
		}
		sh.done(" %s\n", console.White.String())
		return
	}

	c, ok := console.ColorByName(string(name))
	if !ok || c == console.Black {
		sh.done("Invalid color: %s\n", name)
		return
	}

	sh.term.ChangeColor(c, console.Black)
	sh.done("Now writing in %s\n", name)
}

func cmdStack(sh *Shell, args []byte) {
	word, _ := nextField(args)
	size, ok := parseSize(word)
	if !ok {
		sh.done("Please provide a numeric value corresponding to the size you want to read.\n")
		return
	}

	stack := sh.cfg.Stack
	if size > stack.Size {
		sh.done("Value given bigger than kernel stack...\n")
		return
	}

	sh.printf("Stack from 0x%x to 0x%x\n", stack.Base, stack.Base+size)
	sh.dumpMemory(stack.Base, size)
	sh.done("-----end of stack segment------\n")
}

func cmdGDT(sh *Shell, _ []byte) {
	gdt := sh.cfg.GDT
	sh.printf("Global Descriptor Table (located at 0x%x)\n", gdt.Base)
	sh.dumpMemory(gdt.Base, gdt.Size)
	sh.done("-----end of gdt at 0x%x------\n", gdt.Base+gdt.Size)
}

func cmdDate(sh *Shell, _ []byte) {
	if sh.cfg.Clock == nil {
		sh.done("date: no real-time clock available\n")
		return
	}

	d, t := sh.cfg.Clock.ReadDate(), sh.cfg.Clock.ReadTime()
	sh.term.ToggleCmd(true)
	rtc.Format(sh.term, d, t)
	sh.printf("\n")
}

func cmdReboot(sh *Shell, _ []byte) {
	if sh.cfg.Reboot == nil {
		sh.done("reboot: no reset line available\n")
		return
	}

	sh.printf("rebooting ...\n")
	sh.cfg.Reboot()
}

func cmdHalt(sh *Shell, _ []byte) {
	sh.cfg.Halt()
}

func switchTabCmd(n int) func(*Shell, []byte) {
	return func(sh *Shell, _ []byte) {
		sh.term.SwitchTab(n)
		sh.term.Prompt()
	}
}

func cmd42(sh *Shell, _ []byte) {
	sh.done("Outstanding kfs1 project: 42\n")
}

// dumpMemory prints size bytes starting at base as rows of hex bytes followed
// by their printable characters.
func (sh *Shell) dumpMemory(base, size uintptr) {
	var buf [bytesPerLine]byte

	for addr, end := base, base+size; addr < end; addr += bytesPerLine {
		line := buf[:]
		if end-addr < bytesPerLine {
			line = buf[:end-addr]
		}
		sh.cfg.ReadMem(addr, line)

		sh.printf("0x%8x:", addr)
		for i := 0; i < bytesPerLine; i++ {
			if i < len(line) {
				sh.printf(" %2x", line[i])
			} else {
				sh.printf("   ")
			}
		}

		sh.printf("  ")
		for i, b := range line {
			if !console.IsPrintable(b) {
				line[i] = '.'
			}
		}
		sh.printf("%s\n", line)
	}
}

// parseSize parses an unsigned decimal number, rejecting signs and values
// that overflow uintptr.
func parseSize(word []byte) (uintptr, bool) {
	if len(word) == 0 {
		return 0, false
	}

	var v uintptr
	for _, ch := range word {
		if ch < '0' || ch > '9' {
			return 0, false
		}

		digit := uintptr(ch - '0')
		if v > (^uintptr(0)-digit)/10 {
			return 0, false
		}
		v = v*10 + digit
	}
	return v, true
}
