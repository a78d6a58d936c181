package main

import (
	"encoding/binary"
	"kfs/device/rtc"
	"kfs/device/tty"
	"kfs/device/video/console"
	"kfs/kernel/hal"
	"kfs/kernel/kfmt"
	"kfs/kernel/shell"
	"time"
)

const (
	gdtBase      = 0x800
	gdtEntries   = 7
	stackSize    = 0x1000
	stackTopAddr = 0x00110000
)

// Descriptors installed by the boot code: null, kernel code/data/stack and
// user code/data/stack. Limits are page granular.
var gdtDescriptors = [gdtEntries]uint64{
	0,
	descriptor(0xfffff, 0x9b, 0xc),
	descriptor(0xfffff, 0x93, 0xc),
	descriptor(0x00000, 0x97, 0xc),
	descriptor(0xfffff, 0xff, 0xc),
	descriptor(0xfffff, 0xf3, 0xc),
	descriptor(0x00000, 0xf7, 0xc),
}

// descriptor encodes a zero-based segment descriptor.
func descriptor(limit uint32, access, flags uint8) uint64 {
	return uint64(limit&0xffff) |
		uint64(access)<<40 |
		uint64((limit>>16)&0xf)<<48 |
		uint64(flags&0xf)<<52
}

// memory is the part of the physical address space the shell can dump.
type memory struct {
	gdt   [gdtEntries * 8]byte
	stack [stackSize]byte
}

func newMemory() *memory {
	mem := &memory{}
	for i, d := range gdtDescriptors {
		binary.LittleEndian.PutUint64(mem.gdt[i*8:], d)
	}

	// Leave a few recognizable frames at the top of the stack.
	copy(mem.stack[stackSize-32:], "kmain\x00\x00\x00shell.Run\x00\x00\x00kfsim\x00")
	return mem
}

// read copies memory at addr into dst. Unmapped bytes read as 0xff, like an
// open bus.
func (mem *memory) read(addr uintptr, dst []byte) {
	for i := range dst {
		dst[i] = mem.byteAt(addr + uintptr(i))
	}
}

func (mem *memory) byteAt(addr uintptr) byte {
	switch {
	case addr >= gdtBase && addr < gdtBase+uintptr(len(mem.gdt)):
		return mem.gdt[addr-gdtBase]
	case addr >= stackTopAddr-stackSize && addr < stackTopAddr:
		return mem.stack[addr-(stackTopAddr-stackSize)]
	}
	return 0xff
}

// hostClock exposes the host wall clock through the rtc.Clock interface.
type hostClock struct {
	now func() time.Time
}

func (c hostClock) ReadTime() rtc.Time {
	t := c.now()
	return rtc.Time{Hour: uint8(t.Hour()), Minute: uint8(t.Minute()), Second: uint8(t.Second())}
}

func (c hostClock) ReadDate() rtc.Date {
	t := c.now()
	return rtc.Date{Year: uint16(t.Year()), Month: uint8(t.Month()), Day: uint8(t.Day())}
}

// machine wires a text frame, a terminal and a shell together the same way
// the kernel does after hardware detection.
type machine struct {
	cols, rows uint32
	cfg        hal.Config

	fb   []uint16
	cons *console.VgaText
	term *tty.Terminal
	sh   *shell.Shell
	mem  *memory
	now  func() time.Time

	// onReset is invoked after every (re)boot; the simulator uses it to
	// play the POST beep.
	onReset func()

	resetPending bool
	halted       bool
	boots        int
}

func newMachine(cols, rows uint32, cfg hal.Config) *machine {
	return &machine{
		cols: cols,
		rows: rows,
		cfg:  cfg,
		mem:  newMemory(),
		now:  time.Now,
	}
}

// boot resets the frame and the terminal and prints the welcome screen.
func (m *machine) boot() {
	m.fb = make([]uint16, m.cols*m.rows)
	m.cons = console.NewVgaTextBuffer(m.cols, m.rows, m.fb)
	m.term = tty.NewTerminal(m.cfg.Scrollback)
	m.term.AttachTo(m.cons)

	_, bg := m.cons.DefaultColors()
	m.term.ChangeColor(m.cfg.Color, bg)
	kfmt.SetOutputSink(m.term)
	kfmt.SetPanicSink(console.NewPanicWriter(m.cons))

	m.sh = shell.New(m.term, shell.Config{
		Clock:    hostClock{now: m.now},
		Reboot:   m.reboot,
		Halt:     m.halt,
		Stack:    shell.Region{Base: stackTopAddr - stackSize, Size: stackSize},
		GDT:      shell.Region{Base: gdtBase, Size: uintptr(len(m.mem.gdt))},
		ReadMem:  m.mem.read,
		NoBanner: !m.cfg.Banner,
	})
	m.sh.Welcome()

	m.boots++
	m.resetPending = false
	m.halted = false
	if m.onReset != nil {
		m.onReset()
	}
}

// reboot is called from inside a shell command, so the reset is deferred
// until the command returns.
func (m *machine) reboot() {
	m.resetPending = true
}

func (m *machine) halt() {
	m.halted = true
}

// feed delivers scan codes to the shell. Codes arriving after a halt are
// dropped.
func (m *machine) feed(codes []uint8) {
	for _, code := range codes {
		if m.halted {
			return
		}

		m.sh.HandleScanCode(code)
		if m.resetPending {
			m.boot()
		}
	}
}
