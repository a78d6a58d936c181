package kfmt

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestRingBuffer(t *testing.T) {
	var (
		buf    bytes.Buffer
		expStr = "[hal] vga_text_console(0.1.0): initialized\n"
		rb     ringBuffer
	)

	t.Run("read/write", func(t *testing.T) {
		rb = ringBuffer{}
		n, err := rb.Write([]byte(expStr))
		if err != nil {
			t.Fatal(err)
		}

		if n != len(expStr) {
			t.Fatalf("expected to write %d bytes; wrote %d", len(expStr), n)
		}

		if got := readByteByByte(&buf, &rb); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}
	})

	t.Run("single read across the wrap point", func(t *testing.T) {
		rb = ringBuffer{rIndex: ringBufferSize - 4, wIndex: ringBufferSize - 4}
		rb.Write([]byte(expStr))

		p := make([]byte, 128)
		n, err := rb.Read(p)
		if err != nil {
			t.Fatal(err)
		}
		if got := string(p[:n]); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}

		if _, err := rb.Read(p); err != io.EOF {
			t.Fatalf("expected io.EOF once drained; got %v", err)
		}
	})

	t.Run("short reads", func(t *testing.T) {
		rb = ringBuffer{}
		rb.Write([]byte("tty"))

		p := make([]byte, 2)
		if n, _ := rb.Read(p); n != 2 || string(p) != "tt" {
			t.Fatalf("expected to read %q; got %q", "tt", p[:n])
		}
		if n, _ := rb.Read(p); n != 1 || p[0] != 'y' {
			t.Fatalf("expected to read %q; got %q", "y", p[:n])
		}
	})

	t.Run("overflow keeps newest bytes", func(t *testing.T) {
		rb = ringBuffer{}
		input := strings.Repeat("a", ringBufferSize) + "tail"
		rb.Write([]byte(input))

		if exp, got := len(input)-(ringBufferSize-1), rb.takeLost(); got != exp {
			t.Fatalf("expected %d lost bytes; got %d", exp, got)
		}
		if got := rb.takeLost(); got != 0 {
			t.Fatalf("expected the lost counter to be reset; got %d", got)
		}

		var out bytes.Buffer
		io.Copy(&out, &rb)

		got := out.String()
		if exp := ringBufferSize - 1; len(got) != exp {
			t.Fatalf("expected to read back %d bytes; got %d", exp, len(got))
		}
		if !strings.HasSuffix(got, "tail") {
			t.Fatalf("expected buffered output to end with the latest write; got %q", got[len(got)-8:])
		}
	})
}

func TestSetOutputSinkReportsLostOutput(t *testing.T) {
	defer func() {
		outputSink = nil
		earlyPrintBuffer = ringBuffer{}
	}()

	outputSink = nil
	earlyPrintBuffer = ringBuffer{}
	Printf("%s", strings.Repeat("x", ringBufferSize+9))

	var buf bytes.Buffer
	SetOutputSink(&buf)

	exp := "[kfmt] 10 bytes of early output lost\n"
	if !strings.HasPrefix(buf.String(), exp) {
		t.Fatalf("expected output to start with %q; got %q", exp, buf.String()[:len(exp)])
	}
	if got := buf.Len() - len(exp); got != ringBufferSize-1 {
		t.Fatalf("expected %d replayed bytes; got %d", ringBufferSize-1, got)
	}
}

func readByteByByte(buf *bytes.Buffer, r io.Reader) string {
	buf.Reset()
	var b = make([]byte, 1)
	for {
		_, err := r.Read(b)
		if err == io.EOF {
			break
		}

		buf.Write(b)
	}
	return buf.String()
}
