package painter

import (
	"time"

	"github.com/kamrankamilli/jvnc/pkg/fb"
	"github.com/kamrankamilli/jvnc/pkg/internal/log"
)

const (
	// Repaint cadence of the background animation.
	frameInterval = 50 * time.Millisecond

	// Breathing intensity bounds and per-frame step.
	intensityMin  = 10
	intensityMax  = 240
	intensityStep = 8
)

// Painter continuously repaints the framebuffer with an animated checker
// pattern. It runs independently of any client connection: sessions only
// ever sample the buffer, the painter is the sole producer.
type Painter struct {
	fb   *fb.Framebuffer
	mode *fb.ColorMode

	intensity   int
	intensityUp bool

	stopCh chan struct{}
}

// New returns a painter over the given framebuffer and colour-mode cell.
func New(buf *fb.Framebuffer, mode *fb.ColorMode) *Painter {
	return &Painter{
		fb:          buf,
		mode:        mode,
		intensity:   intensityMin,
		intensityUp: true,
		stopCh:      make(chan struct{}),
	}
}

// Start launches the paint loop in its own goroutine.
func (p *Painter) Start() {
	go p.run()
}

// Close stops the paint loop.
func (p *Painter) Close() { close(p.stopCh) }

func (p *Painter) run() {
	log.Infof("Painter running at %dx%d", p.fb.Width(), p.fb.Height())
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			log.Debug("Stopping painter")
			return
		case <-ticker.C:
			p.paintFrame()
			p.stepIntensity()
		}
	}
}

// paintFrame writes one full pass of the pattern: 8-pixel cells of black
// alternating with the current colour, phase-shifted every 8 rows.
func (p *Painter) paintFrame() {
	mode := p.mode.Get()
	v := uint8(p.intensity)

	for y := 0; y < p.fb.Height(); y++ {
		phase := 0
		if y%16 < 8 {
			phase = 8
		}
		for x := 0; x < p.fb.Width(); x++ {
			if (phase+x)%16 < 8 {
				p.fb.Put(x, y, 0, 0, 0)
				continue
			}
			switch mode {
			case fb.ModeBlack:
				p.fb.Put(x, y, 0, 0, 0)
			case fb.ModeWhite:
				p.fb.Put(x, y, v, v, v)
			case fb.ModeRed:
				p.fb.Put(x, y, v, 0, 0)
			case fb.ModeGreen:
				p.fb.Put(x, y, 0, v, 0)
			case fb.ModeBlue:
				p.fb.Put(x, y, 0, 0, v)
			}
		}
	}
}

// stepIntensity advances the breathing level, bouncing between the
// bounds.
func (p *Painter) stepIntensity() {
	if p.intensityUp {
		p.intensity += intensityStep
		if p.intensity > intensityMax {
			p.intensityUp = false
		}
	} else {
		p.intensity -= intensityStep
		if p.intensity < intensityMin {
			p.intensityUp = true
		}
	}
}
