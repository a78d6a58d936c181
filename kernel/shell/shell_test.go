package shell

import (
	"kfs/device/keyboard"
	"kfs/device/rtc"
	"kfs/device/tty"
	"kfs/device/video/console"
	"strings"
	"testing"
	"unsafe"
)

const (
	testWidth  = 80
	testHeight = 25
)

type testRig struct {
	sh   *Shell
	term *tty.Terminal
	cons *console.VgaText
}

func newTestRig(cfg Config) *testRig {
	cons := console.NewVgaTextBuffer(testWidth, testHeight, make([]uint16, testWidth*testHeight))
	term := tty.NewTerminal(100)
	term.AttachTo(cons)

	cfg.NoBanner = true
	return &testRig{sh: New(term, cfg), term: term, cons: cons}
}

// typeString feeds the make and break codes that produce s.
func (r *testRig) typeString(t *testing.T, s string) {
	for i := 0; i < len(s); i++ {
		code, shift, ok := keyboard.ScanCodes(s[i])
		if !ok {
			t.Fatalf("no scan code for %q", s[i])
		}

		if shift {
			r.sh.HandleScanCode(keyboard.CodeLeftShift)
		}
		r.sh.HandleScanCode(code)
		r.sh.HandleScanCode(code | keyboard.BreakBit)
		if shift {
			r.sh.HandleScanCode(keyboard.CodeLeftShift | keyboard.BreakBit)
		}
	}
}

func (r *testRig) row(row uint32) string {
	buf := make([]byte, testWidth)
	for col := range buf {
		buf[col] = r.cons.ReadCell(row, uint32(col)).Ch
	}
	return strings.TrimRight(string(buf), " ")
}

// history returns the history rows of the frame, skipping the blank rows
// above the oldest line.
func (r *testRig) history() []string {
	var lines []string
	for row := uint32(0); row < testHeight-2; row++ {
		line := r.row(row)
		if len(lines) == 0 && line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func (r *testRig) input() string {
	return r.row(testHeight - 1)
}

func TestHelpScanCodeScenario(t *testing.T) {
	r := newTestRig(Config{})

	calls := map[string]int{}
	record := func(name string) func(*Shell, []byte) {
		return func(_ *Shell, args []byte) {
			calls[name]++
			if len(args) != 0 {
				t.Errorf("expected %s to be invoked without arguments; got %q", name, args)
			}
		}
	}

	r.sh.commands = []Command{
		{Name: "help", Handler: record("help")},
		{Name: "echo", Handler: record("echo")},
		{Name: "he", Handler: record("he")},
		{Name: "$>help", Handler: record("$>help")},
	}

	r.typeString(t, "$>help")
	r.sh.HandleScanCode(keyboard.CodeEnter)

	if calls["help"] != 1 {
		t.Fatalf("expected help to be invoked exactly once; got %d", calls["help"])
	}

	if len(calls) != 1 {
		t.Fatalf("expected no other command to be invoked; got %v", calls)
	}
}

func TestDispatch(t *testing.T) {
	stack := Region{Base: 0x1000, Size: 32}
	lowBytes := func(addr uintptr, dst []byte) {
		for i := range dst {
			dst[i] = byte(addr + uintptr(i))
		}
	}
	letters := func(addr uintptr, dst []byte) {
		for i := range dst {
			dst[i] = 'A' + byte(addr+uintptr(i)-defaultGDTBase)%26
		}
	}

	specs := []struct {
		input      string
		cfg        Config
		expHistory []string
		expInput   string
	}{
		{
			"echo  hi  there",
			Config{},
			[]string{"$>echo  hi  there", "hi  there"},
			"$>",
		},
		{
			"echo",
			Config{},
			[]string{"$>echo", ""},
			"$>",
		},
		{
			"   ",
			Config{},
			[]string{"$>"},
			"$>",
		},
		{
			"  foo bar",
			Config{},
			[]string{"$>  foo bar", "kfs: foo: command not found"},
			"$>",
		},
		{
			"42",
			Config{},
			[]string{"$>42", "Outstanding kfs1 project: 42"},
			"$>",
		},
		{
			"color",
			Config{},
			[]string{
				"$>color",
				"Please provide a color among:",
				" blue green cyan red magenta brown lightgray",
				" darkgray lightblue lightgreen lightcyan lightred pink yellow white",
			},
			"$>",
		},
		{
			"color black",
			Config{},
			[]string{"$>color black", "Invalid color: black"},
			"$>",
		},
		{
			"color purple",
			Config{},
			[]string{"$>color purple", "Invalid color: purple"},
			"$>",
		},
		{
			"stack 20",
			Config{Stack: stack, ReadMem: lowBytes},
			[]string{
				"$>stack 20",
				"Stack from 0x1000 to 0x1014",
				"0x00001000: 00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f  ................",
				"0x00001010: 10 11 12 13" + strings.Repeat("   ", 12) + "  ....",
				"-----end of stack segment------",
			},
			"$>",
		},
		{
			"stack 33",
			Config{Stack: stack, ReadMem: lowBytes},
			[]string{"$>stack 33", "Value given bigger than kernel stack..."},
			"$>",
		},
		{
			"stack -1",
			Config{Stack: stack, ReadMem: lowBytes},
			[]string{"$>stack -1", "Please provide a numeric value corresponding to the size you want to read."},
			"$>",
		},
		{
			"stack",
			Config{Stack: stack, ReadMem: lowBytes},
			[]string{"$>stack", "Please provide a numeric value corresponding to the size you want to read."},
			"$>",
		},
		{
			"gdt",
			Config{ReadMem: letters},
			[]string{
				"$>gdt",
				"Global Descriptor Table (located at 0x800)",
				"0x00000800: 41 42 43 44 45 46 47 48 49 4a 4b 4c 4d 4e 4f 50  ABCDEFGHIJKLMNOP",
				"0x00000810: 51 52 53 54 55 56 57 58 59 5a 41 42 43 44 45 46  QRSTUVWXYZABCDEF",
				"0x00000820: 47 48 49 4a 4b 4c 4d 4e 4f 50 51 52 53 54 55 56  GHIJKLMNOPQRSTUV",
				"0x00000830: 57 58 59 5a 41 42 43 44" + strings.Repeat("   ", 8) + "  WXYZABCD",
				"-----end of gdt at 0x838------",
			},
			"$>",
		},
		{
			"date",
			Config{Clock: mockClock{rtc.Date{Year: 2026, Month: 10, Day: 18}, rtc.Time{Hour: 7, Minute: 5, Second: 9}}},
			[]string{"$>date", "2026-10-18 07:05:09"},
			"$>",
		},
		{
			"date",
			Config{},
			[]string{"$>date", "date: no real-time clock available"},
			"$>",
		},
		{
			"reboot",
			Config{},
			[]string{"$>reboot", "reboot: no reset line available"},
			"$>",
		},
		{
			"clear",
			Config{},
			nil,
			"$>",
		},
	}

	for specIndex, spec := range specs {
		r := newTestRig(spec.cfg)
		r.sh.Welcome()
		r.typeString(t, spec.input+"\n")

		if got := r.history(); strings.Join(got, "\n") != strings.Join(spec.expHistory, "\n") {
			t.Errorf("[spec %d] expected history:\n%s\ngot:\n%s", specIndex, strings.Join(spec.expHistory, "\n"), strings.Join(got, "\n"))
		}

		if got := r.input(); got != spec.expInput {
			t.Errorf("[spec %d] expected input line %q; got %q", specIndex, spec.expInput, got)
		}

		if !r.term.CmdMode() {
			t.Errorf("[spec %d] expected command mode to be enabled after the command", specIndex)
		}
	}
}

func TestHelp(t *testing.T) {
	r := newTestRig(Config{})
	r.sh.Welcome()
	r.typeString(t, "help\n")

	history := r.history()
	if len(history) != 13 {
		t.Fatalf("expected 13 history lines; got %d:\n%s", len(history), strings.Join(history, "\n"))
	}

	if history[1] != "Available commands:" || history[12] != "There might be other hidden features..." {
		t.Fatalf("unexpected help output:\n%s", strings.Join(history, "\n"))
	}

	if exp := "  echo <text>   : Prints its arguments"; history[3] != exp {
		t.Fatalf("expected line %q; got %q", exp, history[3])
	}

	for _, line := range history {
		if strings.Contains(line, "42") {
			t.Fatalf("expected hidden commands not to be listed; got %q", line)
		}
	}
}

func TestColorCommand(t *testing.T) {
	r := newTestRig(Config{})
	r.sh.Welcome()
	r.typeString(t, "color pink\n")

	if exp, got := console.MakeAttr(console.Pink, console.Black), r.term.Color(); got != exp {
		t.Fatalf("expected active color 0x%x; got 0x%x", exp, got)
	}

	history := r.history()
	if got := history[len(history)-1]; got != "Now writing in pink" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTabCommands(t *testing.T) {
	r := newTestRig(Config{})
	r.sh.Welcome()

	specs := []struct {
		input  string
		expTab int
	}{
		{"s", 1},
		{"s", 2},
		{"s", 0},
		{"3", 2},
		{"1", 0},
		{"2", 1},
	}

	for specIndex, spec := range specs {
		r.typeString(t, spec.input+"\n")

		if got := r.term.ActiveTab(); got != spec.expTab {
			t.Fatalf("[spec %d] expected active tab %d; got %d", specIndex, spec.expTab, got)
		}

		if got := r.input(); got != "$>" {
			t.Fatalf("[spec %d] expected a prompt on the new tab; got %q", specIndex, got)
		}
	}
}

func TestMachineCommands(t *testing.T) {
	var reboots, halts int
	r := newTestRig(Config{
		Reboot: func() { reboots++ },
		Halt:   func() { halts++ },
	})
	r.sh.Welcome()

	r.typeString(t, "reboot\n")
	if reboots != 1 {
		t.Fatalf("expected reboot to be triggered once; got %d", reboots)
	}

	history := r.history()
	if got := history[len(history)-1]; got != "rebooting ..." {
		t.Fatalf("unexpected reboot output %q", got)
	}

	r.term.Prompt()
	r.typeString(t, "halt\n")
	if halts != 1 {
		t.Fatalf("expected halt to be triggered once; got %d", halts)
	}
}

func TestDispatchIgnoresLinesWithoutPrompt(t *testing.T) {
	r := newTestRig(Config{})

	called := false
	r.sh.commands = []Command{{Name: "help", Handler: func(*Shell, []byte) { called = true }}}

	r.typeString(t, "help\n")
	r.typeString(t, " $>help\n")

	if called {
		t.Fatal("expected lines without a leading prompt to be ignored")
	}

	if got := r.history(); strings.Join(got, "|") != "help| $>help" {
		t.Fatalf("unexpected history %q", got)
	}
}

func TestDispatchUnprintable(t *testing.T) {
	r := newTestRig(Config{})
	r.sh.Welcome()

	r.term.Write([]byte{'e', 0x01})
	r.sh.HandleScanCode(keyboard.CodeEnter)

	exp := []string{"$>e\xfe", "Unprintable characters spotted"}
	if got := r.history(); strings.Join(got, "\n") != strings.Join(exp, "\n") {
		t.Fatalf("expected history %q; got %q", exp, got)
	}

	if got := r.input(); got != "$>" {
		t.Fatalf("expected a fresh prompt; got %q", got)
	}
}

func TestHandleScanCodeNavigation(t *testing.T) {
	r := newTestRig(Config{})

	for i := 0; i < 30; i++ {
		r.typeString(t, "line\n")
	}

	r.sh.HandleScanCode(keyboard.CodeUp)
	r.sh.HandleScanCode(keyboard.CodeUp)
	r.sh.HandleScanCode(keyboard.CodeDown)
	if got := r.term.Scroll(); got != 1 {
		t.Fatalf("expected scroll offset 1; got %d", got)
	}

	r.typeString(t, "abc")
	r.sh.HandleScanCode(keyboard.CodeLeft)
	r.sh.HandleScanCode(keyboard.CodeLeft)
	r.sh.HandleScanCode(keyboard.CodeRight)
	if got := r.term.Column(); got != 2 {
		t.Fatalf("expected cursor column 2; got %d", got)
	}

	r.typeString(t, "\b")
	if got := r.input(); got != "ac" {
		t.Fatalf("expected backspace to delete at the cursor; got %q", got)
	}
}

func TestWelcome(t *testing.T) {
	r := newTestRig(Config{})
	r.sh.cfg.NoBanner = false
	r.sh.Welcome()

	history := r.history()
	if got := history[len(history)-1]; got != "Type help to list the available commands." {
		t.Fatalf("unexpected last banner line %q", got)
	}

	if !strings.Contains(strings.Join(history, "\n"), "kernel from scratch") {
		t.Fatalf("expected banner in history; got:\n%s", strings.Join(history, "\n"))
	}

	if got := r.input(); got != "$>" || !r.term.CmdMode() {
		t.Fatalf("expected Welcome to show a prompt; got %q", got)
	}
}

func TestNewDefaults(t *testing.T) {
	sh := New(tty.NewTerminal(10), Config{})

	if sh.cfg.GDT != (Region{Base: 0x800, Size: 56}) {
		t.Fatalf("unexpected default GDT region %+v", sh.cfg.GDT)
	}

	if sh.cfg.Halt == nil || sh.cfg.ReadMem == nil {
		t.Fatal("expected Halt and ReadMem to be set to their defaults")
	}

	var buf [4]byte
	src := [4]byte{1, 2, 3, 4}
	readMem(uintptr(unsafe.Pointer(&src)), buf[:])
	if buf != src {
		t.Fatalf("expected readMem to copy memory; got %v", buf)
	}
}

func TestParseSize(t *testing.T) {
	specs := []struct {
		in    string
		exp   uintptr
		expOK bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"007", 7, true},
		{"", 0, false},
		{"+1", 0, false},
		{"-1", 0, false},
		{"1x", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for specIndex, spec := range specs {
		got, ok := parseSize([]byte(spec.in))
		if got != spec.exp || ok != spec.expOK {
			t.Errorf("[spec %d] expected parseSize(%q) to return (%d, %t); got (%d, %t)", specIndex, spec.in, spec.exp, spec.expOK, got, ok)
		}
	}
}

type mockClock struct {
	date rtc.Date
	time rtc.Time
}

func (c mockClock) ReadDate() rtc.Date { return c.date }
func (c mockClock) ReadTime() rtc.Time { return c.time }
