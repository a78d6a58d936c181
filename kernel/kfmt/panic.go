package kfmt

import (
	"io"
	"kfs/kernel"
	"kfs/kernel/cpu"
)

var (
	// cpuHaltFn is mocked by tests.
	cpuHaltFn = cpu.Stop

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}

	// panicSink receives panic reports. When nil, reports go to the
	// regular output sink.
	panicSink io.Writer

	// panicking is set while a report is being printed so that a fault in
	// the reporting path halts immediately.
	panicking bool
)

// SetPanicSink sets the writer used by Panic. The sink must not take any
// lock that the faulting code may be holding; the terminal lock is usually
// held when an invariant violation is detected, so the kernel points this at
// a writer that draws straight onto the text frame.
func SetPanicSink(w io.Writer) {
	panicSink = w
}

// Panic outputs the supplied error (if not nil) and halts the CPU. Calls to
// Panic never return on real hardware.
func Panic(e interface{}) {
	if panicking {
		cpuHaltFn()
		return
	}
	panicking = true

	var err *kernel.Error
	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	w := panicSink
	if w == nil {
		w = outputSink
	}

	Fprintf(w, "\n-----------------------------------\n")
	if err != nil {
		Fprintf(w, "[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Fprintf(w, "*** kfs panic: system halted ***")
	Fprintf(w, "\n-----------------------------------\n")

	cpuHaltFn()
	panicking = false
}
