package rfb

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/kamrankamilli/jvnc/pkg/buffer"
	"github.com/kamrankamilli/jvnc/pkg/fb"
	"github.com/kamrankamilli/jvnc/pkg/internal/log"
	"github.com/kamrankamilli/jvnc/pkg/internal/util"
	"github.com/kamrankamilli/jvnc/pkg/rfb/frames"
	"github.com/kamrankamilli/jvnc/pkg/rfb/types"
)

const (
	// ProtocolVersion is the only version handshake the server accepts.
	ProtocolVersion = "RFB 003.008"

	// DesktopName is advertised in the ServerInit message.
	DesktopName = "jvnc"

	// updateFPS paces FramebufferUpdate replies.
	updateFPS = 12

	encodingRaw = int32(0)

	cmdFramebufferUpdate = uint8(0)
)

// Keysyms driving the session from the keyboard.
const (
	keysymQ = 113
	keysymZ = 122
	keysymW = 119
	keysymR = 114
	keysymG = 103
	keysymB = 98
)

// errClientGone marks a clean client disconnect mid-handshake.
var errClientGone = errors.New("client closed during handshake")

// ServerPixelFormat is the format imposed on every client: 32bpp
// true-colour, depth 24, little-endian words, 0x00RRGGBB.
var ServerPixelFormat = types.PixelFormat{
	BPP:        32,
	Depth:      24,
	BigEndian:  0,
	TrueColour: 1,
	RedMax:     255,
	GreenMax:   255,
	BlueMax:    255,
	RedShift:   16,
	GreenShift: 8,
	BlueShift:  0,
}

// Conn drives one client connection through the RFB 3.8 handshake and
// the serving loop.
type Conn struct {
	id     uint64
	c      net.Conn
	s      *Server
	buf    *buffer.ReadWriter
	parser *Parser

	fb   *fb.Framebuffer
	mode *fb.ColorMode

	// At most one deferred update request, latest wins.
	pending  *types.UpdateRequest
	nextDraw time.Time
}

func (s *Server) newConn(c net.Conn, id uint64) *Conn {
	buf := buffer.NewReadWriteBuffer(c)
	conn := &Conn{
		id:     id,
		c:      c,
		s:      s,
		buf:    buf,
		parser: NewParser(buf.Reader()),
		fb:     s.fb,
		mode:   s.mode,
	}

	s.connMu.Lock()
	s.connections[conn] = struct{}{}
	s.connMu.Unlock()

	return conn
}

func (c *Conn) serve() {
	defer func() {
		c.c.Close()
		c.s.removeConn(c)
	}()

	if err := c.handshake(); err != nil {
		if errors.Is(err, errClientGone) {
			log.Infof("[%d] %s", c.id, err)
		} else {
			log.Errorf("[%d] Handshake failed: %s", c.id, err)
		}
		return
	}
	if err := c.serveLoop(); err != nil {
		log.Errorf("[%d] Session ended: %s", c.id, err)
		return
	}
	log.Infof("[%d] Session closed", c.id)
}

// handshake walks the client through version, security, init and
// ServerInit. Any unexpected frame or a premature end of stream aborts
// the session.
func (c *Conn) handshake() error {
	if err := c.buf.Dispatch([]byte(ProtocolVersion + "\n")); err != nil {
		return err
	}

	f, err := c.parser.Next()
	if err != nil {
		return err
	}
	switch fr := f.(type) {
	case frames.ProtocolVersion:
		if fr.Version != ProtocolVersion {
			return fmt.Errorf("invalid handshake: %q", fr.Version)
		}
		log.Infof("[%d] Client version: %s", c.id, fr.Version)
	case frames.EOF:
		return errClientGone
	default:
		return fmt.Errorf("unexpected frame: %#v", f)
	}

	// Offer exactly one security type: None.
	if err := c.buf.Dispatch([]byte{1, uint8(frames.SecurityNone)}); err != nil {
		return err
	}

	f, err = c.parser.Next()
	if err != nil {
		return err
	}
	switch f.(type) {
	case frames.SecuritySelection:
		log.Infof("[%d] Security: none", c.id)
	case frames.EOF:
		return errClientGone
	default:
		return fmt.Errorf("unexpected frame: %#v", f)
	}

	// SecurityResult: success.
	if err := c.buf.Dispatch([]byte{0, 0, 0, 0}); err != nil {
		return err
	}

	f, err = c.parser.Next()
	if err != nil {
		return err
	}
	switch fr := f.(type) {
	case frames.ClientInit:
		// The access flag is acknowledged but exclusivity is never
		// enforced.
		log.Infof("[%d] Access: %s", c.id, fr.Access)
	case frames.EOF:
		return errClientGone
	default:
		return fmt.Errorf("unexpected frame: %#v", f)
	}

	return c.sendServerInit()
}

func (c *Conn) sendServerInit() error {
	var msg bytes.Buffer
	util.Write(&msg, uint16(c.fb.Width()))
	util.Write(&msg, uint16(c.fb.Height()))
	pf := ServerPixelFormat
	util.PackStruct(&msg, &pf)
	util.Write(&msg, uint32(len(DesktopName)))
	msg.WriteString(DesktopName)
	return c.buf.Dispatch(msg.Bytes())
}

type frameResult struct {
	f   frames.Frame
	err error
}

// serveLoop multiplexes frames from the client with the redraw timer.
// The timer arm is armed only while an update request is pending; with
// nothing to send the loop waits solely on the next frame.
func (c *Conn) serveLoop() error {
	done := make(chan struct{})
	defer close(done)

	frameC := make(chan frameResult)
	go func() {
		for {
			f, err := c.parser.Next()
			select {
			case frameC <- frameResult{f, err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
			if _, isEOF := f.(frames.EOF); isEOF {
				return
			}
		}
	}()

	drawInterval := time.Second / updateFPS
	c.nextDraw = time.Now().Add(drawInterval)

	for {
		var redraw <-chan time.Time
		var drawTimer *time.Timer
		if c.pending != nil {
			drawTimer = time.NewTimer(time.Until(c.nextDraw))
			redraw = drawTimer.C
		}

		select {
		case <-redraw:
			ur := *c.pending
			c.pending = nil
			if err := c.sendUpdate(ur); err != nil {
				return err
			}
			c.nextDraw = time.Now().Add(drawInterval)

		case r := <-frameC:
			if drawTimer != nil {
				drawTimer.Stop()
			}
			if r.err != nil {
				return r.err
			}
			quit, err := c.handleFrame(r.f)
			if err != nil || quit {
				return err
			}
		}

		if drawTimer != nil {
			drawTimer.Stop()
		}
	}
}

// handleFrame processes one client frame during the serving phase.
func (c *Conn) handleFrame(f frames.Frame) (quit bool, err error) {
	switch fr := f.(type) {
	case frames.FramebufferUpdateRequest:
		ur := fr.Request.Clamp(c.fb.Width(), c.fb.Height())
		c.pending = &ur

	case frames.KeyEvent:
		if !fr.Down {
			return false, nil
		}
		switch fr.Key {
		case keysymQ:
			log.Infof("[%d] Quit key received", c.id)
			return true, nil
		case keysymZ:
			c.setColorMode(fb.ModeBlack)
		case keysymW:
			c.setColorMode(fb.ModeWhite)
		case keysymR:
			c.setColorMode(fb.ModeRed)
		case keysymG:
			c.setColorMode(fb.ModeGreen)
		case keysymB:
			c.setColorMode(fb.ModeBlue)
		}

	case frames.EOF:
		return true, nil

	default:
		log.Debugf("[%d] Ignoring frame: %#v", c.id, f)
	}
	return false, nil
}

func (c *Conn) setColorMode(mode int) {
	log.Infof("[%d] Colour mode -> %d", c.id, mode)
	c.mode.Set(mode)
}

// sendUpdate emits one Raw-encoded FramebufferUpdate for the clamped
// rectangle, sampling the framebuffer at transmission time.
func (c *Conn) sendUpdate(ur types.UpdateRequest) error {
	var msg bytes.Buffer
	msg.Grow(16 + 4*ur.Width*ur.Height)

	util.Write(&msg, cmdFramebufferUpdate)
	util.Write(&msg, uint8(0))  // padding
	util.Write(&msg, uint16(1)) // 1 rectangle
	util.PackStruct(&msg, &types.FrameBufferRectangle{
		X:       uint16(ur.X),
		Y:       uint16(ur.Y),
		Width:   uint16(ur.Width),
		Height:  uint16(ur.Height),
		EncType: encodingRaw,
	})
	msg.Write(c.samplePixels(ur))

	return c.buf.Dispatch(msg.Bytes())
}

// samplePixels returns the rectangle's pixels in B G R 0 wire order.
// A full-buffer request is served from one snapshot; otherwise pixels
// are sampled one by one, clamped to the framebuffer edge when the
// clamped origin still pushes the rectangle past it.
func (c *Conn) samplePixels(ur types.UpdateRequest) []byte {
	w, h := c.fb.Width(), c.fb.Height()
	if ur.X == 0 && ur.Y == 0 && ur.Width == w && ur.Height == h {
		return c.fb.Snapshot()
	}

	out := make([]byte, 0, 4*ur.Width*ur.Height)
	for y := ur.Y; y < ur.Y+ur.Height; y++ {
		sy := min(y, h-1)
		for x := ur.X; x < ur.X+ur.Width; x++ {
			r, g, b := c.fb.Get(min(x, w-1), sy)
			out = append(out, b, g, r, 0)
		}
	}
	return out
}
