package painter

import (
	"testing"

	"github.com/kamrankamilli/jvnc/pkg/fb"
)

func expectedPhase(y int) int {
	if y%16 < 8 {
		return 8
	}
	return 0
}

func TestPaintFramePattern(t *testing.T) {
	tests := []struct {
		name    string
		mode    int
		r, g, b uint8
	}{
		{"black", fb.ModeBlack, 0, 0, 0},
		{"white", fb.ModeWhite, 10, 10, 10},
		{"red", fb.ModeRed, 10, 0, 0},
		{"green", fb.ModeGreen, 0, 10, 0},
		{"blue", fb.ModeBlue, 0, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := fb.New(32, 32)
			mode := &fb.ColorMode{}
			mode.Set(tt.mode)

			p := New(buf, mode)
			p.paintFrame()

			for y := 0; y < 32; y++ {
				for x := 0; x < 32; x++ {
					r, g, b := buf.Get(x, y)
					if (expectedPhase(y)+x)%16 < 8 {
						if r != 0 || g != 0 || b != 0 {
							t.Fatalf("pixel (%d,%d) = (%d,%d,%d), want black", x, y, r, g, b)
						}
					} else if r != tt.r || g != tt.g || b != tt.b {
						t.Fatalf("pixel (%d,%d) = (%d,%d,%d), want (%d,%d,%d)",
							x, y, r, g, b, tt.r, tt.g, tt.b)
					}
				}
			}
		})
	}
}

// An unrecognised colour mode paints nothing in the coloured cells.
func TestPaintFrameUnknownMode(t *testing.T) {
	buf := fb.New(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			buf.Put(x, y, 0x7f, 0x7f, 0x7f)
		}
	}

	mode := &fb.ColorMode{}
	mode.Set(42)
	p := New(buf, mode)
	p.paintFrame()

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			r, g, b := buf.Get(x, y)
			if (expectedPhase(y)+x)%16 < 8 {
				if r != 0 || g != 0 || b != 0 {
					t.Fatalf("pixel (%d,%d) not blacked out", x, y)
				}
			} else if r != 0x7f || g != 0x7f || b != 0x7f {
				t.Fatalf("pixel (%d,%d) painted despite unknown mode", x, y)
			}
		}
	}
}

func TestIntensityBounces(t *testing.T) {
	p := New(fb.New(1, 1), &fb.ColorMode{})

	sawUp, sawDown := false, false
	for i := 0; i < 200; i++ {
		before := p.intensity
		p.stepIntensity()
		if p.intensity > before {
			sawUp = true
		} else {
			sawDown = true
		}
		if p.intensity < intensityMin-intensityStep || p.intensity > intensityMax+intensityStep {
			t.Fatalf("intensity %d escaped its bounds after %d steps", p.intensity, i+1)
		}
	}
	if !sawUp || !sawDown {
		t.Fatal("intensity never reversed direction")
	}
}
