package tty

import (
	"kfs/device/video/console"
	"kfs/kernel"
	"testing"
)

func lineOf(width int, s string, attr console.Attr) Line {
	line := make(Line, width)
	for i := range line {
		line[i] = console.Blank(attr)
	}
	for i := 0; i < len(s) && i < width; i++ {
		line[i] = console.Cell{Ch: s[i], Attr: attr}
	}
	return line
}

func lineText(line Line) string {
	buf := make([]byte, 0, len(line))
	for _, c := range line {
		buf = append(buf, c.Ch)
	}
	return string(buf)
}

func TestScrollbackPush(t *testing.T) {
	attr := console.MakeAttr(console.White, console.Black)
	sb := NewScrollback(4, 3, console.Blank(attr))

	if sb.Len() != 0 || sb.Cap() != 4 {
		t.Fatalf("expected empty ring with capacity 4; got len %d, cap %d", sb.Len(), sb.Cap())
	}

	if got := lineText(sb.MostRecent()); got != "   " {
		t.Fatalf("expected MostRecent on an empty ring to return a blank line; got %q", got)
	}

	for _, s := range []string{"aaa", "bbb", "ccc", "ddd", "eee", "fff"} {
		sb.Push(lineOf(3, s, attr))
	}

	if sb.Len() != 4 {
		t.Fatalf("expected ring size to be bounded by its capacity; got %d", sb.Len())
	}

	for n, exp := range []string{"fff", "eee", "ddd", "ccc", "   ", "   "} {
		if got := lineText(sb.Line(n)); got != exp {
			t.Errorf("expected line %d to be %q; got %q", n, exp, got)
		}
	}

	if got := lineText(sb.Line(-1)); got != "   " {
		t.Errorf("expected a negative index to return a blank line; got %q", got)
	}
}

func TestScrollbackPushCopiesLine(t *testing.T) {
	attr := console.MakeAttr(console.White, console.Black)
	sb := NewScrollback(2, 4, console.Blank(attr))

	line := lineOf(2, "ab", attr)
	sb.Push(line)
	line[0].Ch = 'z'

	if got := lineText(sb.MostRecent()); got != "ab  " {
		t.Fatalf("expected pushed line to be copied and padded; got %q", got)
	}

	sb.Push(lineOf(6, "123456", attr))
	if got := lineText(sb.MostRecent()); got != "1234" {
		t.Fatalf("expected pushed line to be truncated to the ring width; got %q", got)
	}
}

func TestScrollbackClear(t *testing.T) {
	attr := console.MakeAttr(console.White, console.Black)
	clearAttr := console.MakeAttr(console.Green, console.Blue)
	sb := NewScrollback(3, 2, console.Blank(attr))

	for _, s := range []string{"aa", "bb", "cc", "dd"} {
		sb.Push(lineOf(2, s, attr))
	}

	sb.Clear(console.Blank(clearAttr))

	if sb.Len() != 1 {
		t.Fatalf("expected ring to hold a single line after Clear; got %d", sb.Len())
	}

	for _, c := range sb.MostRecent() {
		if c != console.Blank(clearAttr) {
			t.Fatalf("expected cleared line to use the supplied blank cell; got %+v", c)
		}
	}

	sb.Push(lineOf(2, "ee", attr))
	if got := lineText(sb.Line(0)) + lineText(sb.Line(1)); got != "ee  " {
		t.Fatalf("expected push after Clear to stack on the blank line; got %q", got)
	}
}

func TestScrollbackCapacityClamp(t *testing.T) {
	sb := NewScrollback(0, 1, console.Blank(0))
	if sb.Cap() != 1 {
		t.Fatalf("expected capacity to be clamped to 1; got %d", sb.Cap())
	}
}

func TestScrollbackCorruption(t *testing.T) {
	defer func() {
		panicFn = origPanicFn
	}()

	var gotErr interface{}
	panicFn = func(e interface{}) { gotErr = e }

	sb := NewScrollback(2, 1, console.Blank(0))
	sb.size = 5
	sb.MostRecent()

	if err, ok := gotErr.(*kernel.Error); !ok || err != errScrollbackCorrupted {
		t.Fatalf("expected corrupted indices to trigger a kernel panic; got %v", gotErr)
	}
}
