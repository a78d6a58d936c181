package console

import (
	"image/color"
	"io"
	"kfs/kernel"
	"kfs/kernel/kfmt"
	"unsafe"
)

const (
	crtcIndexPort      = 0x3d4
	crtcDataPort       = 0x3d5
	crtcCursorStart    = 0x0a
	crtcCursorDisabled = 0x20
)

var (
	errFbAddrInvalid = &kernel.Error{Module: "vga_text_console", Message: "framebuffer address must be non-zero and 2-byte aligned"}
	errFbSizeInvalid = &kernel.Error{Module: "vga_text_console", Message: "framebuffer dimensions must be non-zero"}
	errOutOfBounds   = &kernel.Error{Module: "vga_text_console", Message: "frame access out of bounds"}

	mapFramebufferFn = defaultMapFramebuffer
)

// defaultMapFramebuffer returns a slice aliasing count cells at physAddr. The
// text frame lives in identity-mapped low memory.
func defaultMapFramebuffer(physAddr uintptr, count int) []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(physAddr)), count)
}

// VgaText implements an EGA-compatible text frame (VGA mode 0x3). Each
// character in the framebuffer occupies two bytes: the ASCII code in the low
// byte and the color attribute (4 bits background, 4 bits foreground) in the
// high byte.
//
// All access goes through WriteCell/ReadCell/FillRow which check the
// coordinates against the frame dimensions; an out-of-range access panics the
// kernel instead of scribbling over adjacent memory.
type VgaText struct {
	width  uint32
	height uint32

	fbPhysAddr uintptr
	fb         []uint16

	palette   color.Palette
	defaultFg Color
	defaultBg Color
}

// NewVgaText creates a new vga text console whose framebuffer will be mapped
// from fbPhysAddr when DriverInit is called.
func NewVgaText(columns, rows uint32, fbPhysAddr uintptr) *VgaText {
	return &VgaText{
		width:      columns,
		height:     rows,
		fbPhysAddr: fbPhysAddr,
		palette: color.Palette{
			color.RGBA{R: 0, G: 0, B: 0, A: 255},       /* black */
			color.RGBA{R: 0, G: 0, B: 170, A: 255},     /* blue */
			color.RGBA{R: 0, G: 170, B: 0, A: 255},     /* green */
			color.RGBA{R: 0, G: 170, B: 170, A: 255},   /* cyan */
			color.RGBA{R: 170, G: 0, B: 0, A: 255},     /* red */
			color.RGBA{R: 170, G: 0, B: 170, A: 255},   /* magenta */
			color.RGBA{R: 170, G: 85, B: 0, A: 255},    /* brown */
			color.RGBA{R: 170, G: 170, B: 170, A: 255}, /* light gray */
			color.RGBA{R: 85, G: 85, B: 85, A: 255},    /* dark gray */
			color.RGBA{R: 85, G: 85, B: 255, A: 255},   /* light blue */
			color.RGBA{R: 85, G: 255, B: 85, A: 255},   /* light green */
			color.RGBA{R: 85, G: 255, B: 255, A: 255},  /* light cyan */
			color.RGBA{R: 255, G: 85, B: 85, A: 255},   /* light red */
			color.RGBA{R: 255, G: 85, B: 255, A: 255},  /* pink */
			color.RGBA{R: 255, G: 255, B: 85, A: 255},  /* yellow */
			color.RGBA{R: 255, G: 255, B: 255, A: 255}, /* white */
		},
		defaultFg: White,
		defaultBg: Black,
	}
}

// NewVgaTextBuffer creates a console backed by fb instead of a physical
// framebuffer. It is used by the hosted simulator. fb must hold at least
// columns*rows cells.
func NewVgaTextBuffer(columns, rows uint32, fb []uint16) *VgaText {
	cons := NewVgaText(columns, rows, 0)
	cons.fb = fb[:columns*rows]
	cons.clear()
	return cons
}

// Dimensions returns the console width and height in characters.
func (cons *VgaText) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// DefaultColors returns the default foreground and background colors
// used by this console.
func (cons *VgaText) DefaultColors() (Color, Color) {
	return cons.defaultFg, cons.defaultBg
}

// WriteCell stores c at (row, col).
func (cons *VgaText) WriteCell(row, col uint32, c Cell) {
	offset, ok := cons.offset(row, col)
	if !ok {
		panicFn(errOutOfBounds)
		return
	}

	cons.fb[offset] = uint16(c.Attr)<<8 | uint16(c.Ch)
}

// ReadCell loads the cell at (row, col).
func (cons *VgaText) ReadCell(row, col uint32) Cell {
	offset, ok := cons.offset(row, col)
	if !ok {
		panicFn(errOutOfBounds)
		return Cell{}
	}

	v := cons.fb[offset]
	return Cell{Ch: byte(v), Attr: Attr(v >> 8)}
}

// FillRow sets every cell of row to c.
func (cons *VgaText) FillRow(row uint32, c Cell) {
	start, ok := cons.offset(row, 0)
	if !ok {
		panicFn(errOutOfBounds)
		return
	}

	v := uint16(c.Attr)<<8 | uint16(c.Ch)
	for offset := start; offset < start+cons.width; offset++ {
		cons.fb[offset] = v
	}
}

// Palette returns the active color palette for this console.
func (cons *VgaText) Palette() color.Palette {
	return cons.palette
}

// offset converts (row, col) to a framebuffer index.
func (cons *VgaText) offset(row, col uint32) (uint32, bool) {
	if row >= cons.height || col >= cons.width {
		return 0, false
	}

	offset := row*cons.width + col
	return offset, int(offset) < len(cons.fb)
}

func (cons *VgaText) clear() {
	blank := Blank(MakeAttr(cons.defaultFg, cons.defaultBg))
	for row := uint32(0); row < cons.height; row++ {
		cons.FillRow(row, blank)
	}
}

// DriverName returns the name of this driver.
func (cons *VgaText) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaText) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit validates the framebuffer address, maps the frame, clears it and
// disables the hardware cursor; the terminal draws its own.
func (cons *VgaText) DriverInit(w io.Writer) *kernel.Error {
	if cons.fbPhysAddr == 0 || cons.fbPhysAddr&1 != 0 {
		return errFbAddrInvalid
	}

	if cons.width == 0 || cons.height == 0 {
		return errFbSizeInvalid
	}

	cons.fb = mapFramebufferFn(cons.fbPhysAddr, int(cons.width*cons.height))
	cons.clear()

	portWriteByteFn(crtcIndexPort, crtcCursorStart)
	portWriteByteFn(crtcDataPort, crtcCursorDisabled)

	kfmt.Fprintf(w, "mapped %dx%d framebuffer at 0x%x\n", cons.width, cons.height, cons.fbPhysAddr)

	return nil
}
