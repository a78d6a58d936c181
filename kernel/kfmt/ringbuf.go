package kfmt

import "io"

// ringBufferSize is large enough to hold a full 80x25 screen of early boot
// output. It must be a power of 2.
const ringBufferSize = 2048

// ringBuffer captures Printf output produced before a terminal is attached.
// When full, the oldest bytes are overwritten and counted as lost.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int

	// lost counts the bytes overwritten before they could be read.
	lost int
}

// Write writes len(p) bytes from p to the ringBuffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
			rb.lost++
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p, following the buffer across the
// wrap point. It returns io.EOF once all buffered bytes have been consumed.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && rb.rIndex != rb.wIndex {
		end := rb.wIndex
		if rb.rIndex > rb.wIndex {
			end = ringBufferSize
		}

		copied := copy(p[n:], rb.buffer[rb.rIndex:end])
		rb.rIndex = (rb.rIndex + copied) & (ringBufferSize - 1)
		n += copied
	}

	return n, nil
}

// takeLost returns the number of bytes lost since the last call.
func (rb *ringBuffer) takeLost() int {
	lost := rb.lost
	rb.lost = 0
	return lost
}
