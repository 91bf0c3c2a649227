package fb

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Framebuffer is a fixed-size W×H pixel store shared between the painter
// and every client session. Each cell is a 32-bit word laid out as
// 0x00RRGGBB. Individual loads and stores are atomic; there is no
// cross-pixel synchronisation, so a reader may observe a torn frame while
// the painter is mid-pass. That is tolerated by the protocol and keeps
// locks off the hot path.
type Framebuffer struct {
	width  int
	height int
	pix    []uint32
}

// New allocates a zeroed framebuffer with the given dimensions.
func New(width, height int) *Framebuffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("invalid framebuffer dimensions %dx%d", width, height))
	}
	return &Framebuffer{
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}
}

// Width returns the framebuffer width in pixels.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the framebuffer height in pixels.
func (f *Framebuffer) Height() int { return f.height }

// Put writes one pixel. Out-of-bounds coordinates are a silent no-op so
// the painter never needs bounds arithmetic.
func (f *Framebuffer) Put(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	pix := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	atomic.StoreUint32(&f.pix[y*f.width+x], pix)
}

// Get reads one pixel. Out-of-bounds coordinates are a programmer error.
func (f *Framebuffer) Get(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		panic(fmt.Sprintf("framebuffer read out of bounds: (%d,%d) in %dx%d", x, y, f.width, f.height))
	}
	pix := atomic.LoadUint32(&f.pix[y*f.width+x])
	return uint8(pix >> 16), uint8(pix >> 8), uint8(pix)
}

// Snapshot returns a copy of the whole region, 4 bytes per pixel in
// B G R 0 order, row-major.
func (f *Framebuffer) Snapshot() []byte {
	out := make([]byte, 4*len(f.pix))
	for i := range f.pix {
		binary.LittleEndian.PutUint32(out[i*4:], atomic.LoadUint32(&f.pix[i]))
	}
	return out
}
