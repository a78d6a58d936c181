package kfmt

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	specs := []struct {
		input string
		exp   string
	}{
		{
			"",
			"",
		},
		{
			"\n",
			"prefix: \n",
		},
		{
			"no line break anywhere",
			"prefix: no line break anywhere",
		},
		{
			"line feed at the end\n",
			"prefix: line feed at the end\n",
		},
		{
			"\nthe big brown\nfog jumped\nover the lazy\ndog",
			"prefix: \nprefix: the big brown\nprefix: fog jumped\nprefix: over the lazy\nprefix: dog",
		},
		{
			"vga_text_console: mapped framebuffer\ninitialized\n",
			"prefix: vga_text_console: mapped framebuffer\nprefix: initialized\n",
		},
	}

	var (
		buf bytes.Buffer
		w   = PrefixWriter{
			Sink:   &buf,
			Prefix: []byte("prefix: "),
		}
	)

	for specIndex, spec := range specs {
		buf.Reset()
		w.midLine = false

		wrote, err := w.Write([]byte(spec.input))
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
		}

		if expLen := len(spec.input); expLen != wrote {
			t.Errorf("[spec %d] expected writer to write %d bytes; wrote %d", specIndex, expLen, wrote)
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output:\n%q\ngot:\n%q", specIndex, spec.exp, got)
		}
	}
}

func TestPrefixWriterErrors(t *testing.T) {
	specs := []string{
		"no line break anywhere",
		"\nthe big brown\nfog jumped\nover the lazy\ndog",
	}

	var (
		expErr = errors.New("write failed")
		w      = PrefixWriter{
			Sink:   writerThatAlwaysErrors{expErr},
			Prefix: []byte("prefix: "),
		}
	)

	for specIndex, spec := range specs {
		w.midLine = false
		_, err := w.Write([]byte(spec))
		if err != expErr {
			t.Errorf("[spec %d] expected error: %v; got %v", specIndex, expErr, err)
		}
	}
}

type writerThatAlwaysErrors struct {
	err error
}

func (w writerThatAlwaysErrors) Write(_ []byte) (int, error) {
	return 0, w.err
}

func TestPrefixWriterAcrossWrites(t *testing.T) {
	var (
		buf bytes.Buffer
		w   = PrefixWriter{Sink: &buf, Prefix: []byte("[hal] ")}
	)

	w.Write([]byte("tty: "))
	w.Write([]byte("attached\nps2_keyboard: "))
	w.Write([]byte("initialized\n"))

	exp := "[hal] tty: attached\n[hal] ps2_keyboard: initialized\n"
	if got := buf.String(); got != exp {
		t.Fatalf("expected output:\n%q\ngot:\n%q", exp, got)
	}
}

func TestPrefixWriterWithoutSink(t *testing.T) {
	defer func() {
		earlyPrintBuffer.rIndex, earlyPrintBuffer.wIndex = 0, 0
	}()
	earlyPrintBuffer.rIndex, earlyPrintBuffer.wIndex = 0, 0

	w := PrefixWriter{Prefix: []byte("[hal] ")}
	Fprintf(&w, "early\n")

	var buf bytes.Buffer
	io.Copy(&buf, &earlyPrintBuffer)

	if exp, got := "[hal] early\n", buf.String(); got != exp {
		t.Fatalf("expected early buffer to contain %q; got %q", exp, got)
	}
}
