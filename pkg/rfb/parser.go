package rfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/kamrankamilli/jvnc/pkg/rfb/frames"
	"github.com/kamrankamilli/jvnc/pkg/rfb/types"
)

// ErrEarlierFailure is returned by every pull after the parser has
// raised a protocol error. The stream never resumes.
var ErrEarlierFailure = errors.New("earlier failure")

// maxHandshakeLen bounds the client version line.
const maxHandshakeLen = 100

type parserState int

const (
	stateVersion parserState = iota
	stateSecuritySelection
	stateClientInit
	stateMessage
)

// Client -> server message IDs.
const (
	msgSetPixelFormat           = 0
	msgSetEncodings             = 2
	msgFramebufferUpdateRequest = 3
	msgKeyEvent                 = 4
	msgPointerEvent             = 5
	msgClientCutText            = 6
)

// Parser turns the client byte stream into typed frames. It never
// consumes bytes belonging to a message it cannot fully decode, so the
// stream may arrive in arbitrary chunks. After a protocol error every
// subsequent pull returns ErrEarlierFailure.
type Parser struct {
	r io.Reader

	buf    []byte
	state  parserState
	eof    bool
	failed bool
	done   bool

	scratch [4096]byte
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r, buf: make([]byte, 0, 4096)}
}

// Next pulls the next frame, ingesting more bytes from the reader as
// needed. A clean end of stream yields a single frames.EOF followed by
// io.EOF errors.
func (p *Parser) Next() (frames.Frame, error) {
	if p.done {
		return nil, io.EOF
	}
	for {
		f, err := p.parse()
		if err != nil {
			return nil, err
		}
		if f != nil {
			if _, isEOF := f.(frames.EOF); isEOF {
				p.done = true
			}
			return f, nil
		}
		if err := p.ingest(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) ingest() error {
	if p.eof {
		// A frame is still incomplete and no more bytes are coming.
		return io.ErrUnexpectedEOF
	}
	n, err := p.r.Read(p.scratch[:])
	if n > 0 {
		p.buf = append(p.buf, p.scratch[:n]...)
	}
	if err == io.EOF {
		p.eof = true
		return nil
	}
	return err
}

func (p *Parser) fail(format string, args ...interface{}) error {
	p.failed = true
	return fmt.Errorf(format, args...)
}

// parse attempts to decode one frame from the buffered bytes. It returns
// (nil, nil) when more bytes are needed, leaving the buffer untouched.
func (p *Parser) parse() (frames.Frame, error) {
	if p.failed {
		return nil, ErrEarlierFailure
	}
	if len(p.buf) == 0 {
		if p.eof {
			return frames.EOF{}, nil
		}
		return nil, nil
	}

	switch p.state {
	case stateVersion:
		return p.parseVersion()
	case stateSecuritySelection:
		sec := p.buf[0]
		p.advance(1)
		if sec != 1 {
			return nil, p.fail("invalid security %d", sec)
		}
		p.state = stateClientInit
		return frames.SecuritySelection{Security: frames.SecurityNone}, nil
	case stateClientInit:
		access := frames.AccessShared
		if p.buf[0] == 0 {
			access = frames.AccessExclusive
		}
		p.advance(1)
		p.state = stateMessage
		return frames.ClientInit{Access: access}, nil
	default:
		return p.parseMessage()
	}
}

func (p *Parser) parseVersion() (frames.Frame, error) {
	nl := bytes.IndexByte(p.buf, '\n')
	if nl < 0 {
		if len(p.buf) > maxHandshakeLen {
			return nil, p.fail("handshake too long")
		}
		return nil, nil
	}
	for _, c := range p.buf[:nl] {
		if c >= 128 {
			return nil, p.fail("invalid handshake byte")
		}
	}
	version := string(p.buf[:nl])
	p.advance(nl + 1)
	p.state = stateSecuritySelection
	return frames.ProtocolVersion{Version: version}, nil
}

func (p *Parser) parseMessage() (frames.Frame, error) {
	switch id := p.buf[0]; id {
	case msgSetPixelFormat:
		// ID, 3 padding, 16-byte pixel format. Parsed and discarded;
		// the server imposes its own format.
		if len(p.buf) < 20 {
			return nil, nil
		}
		p.advance(20)
		return frames.SetPixelFormat{}, nil

	case msgSetEncodings:
		if len(p.buf) < 4 {
			return nil, nil
		}
		nenc := int(binary.BigEndian.Uint16(p.buf[2:4]))
		if len(p.buf) < 4+nenc*4 {
			return nil, nil
		}
		p.advance(4)
		encs := make([]int32, nenc)
		for i := range encs {
			encs[i] = int32(binary.BigEndian.Uint32(p.buf[:4]))
			p.advance(4)
		}
		return frames.SetEncodings{Encodings: encs}, nil

	case msgFramebufferUpdateRequest:
		if len(p.buf) < 10 {
			return nil, nil
		}
		ur := types.UpdateRequest{
			Incremental: p.buf[1] != 0,
			X:           int(binary.BigEndian.Uint16(p.buf[2:4])),
			Y:           int(binary.BigEndian.Uint16(p.buf[4:6])),
			Width:       int(binary.BigEndian.Uint16(p.buf[6:8])),
			Height:      int(binary.BigEndian.Uint16(p.buf[8:10])),
		}
		p.advance(10)
		return frames.FramebufferUpdateRequest{Request: ur}, nil

	case msgKeyEvent:
		if len(p.buf) < 8 {
			return nil, nil
		}
		ev := frames.KeyEvent{
			Down: p.buf[1] != 0,
			Key:  binary.BigEndian.Uint32(p.buf[4:8]),
		}
		p.advance(8)
		return ev, nil

	case msgPointerEvent:
		if len(p.buf) < 6 {
			return nil, nil
		}
		ev := frames.PointerEvent{
			ButtonMask: p.buf[1],
			X:          binary.BigEndian.Uint16(p.buf[2:4]),
			Y:          binary.BigEndian.Uint16(p.buf[4:6]),
		}
		p.advance(6)
		return ev, nil

	case msgClientCutText:
		// ID, 3 padding, 4-byte length, then the text itself, discarded.
		if len(p.buf) < 8 {
			return nil, nil
		}
		nchar := int(binary.BigEndian.Uint32(p.buf[4:8]))
		if len(p.buf) < 8+nchar {
			return nil, nil
		}
		p.advance(8 + nchar)
		return frames.ClientCutText{}, nil

	default:
		return nil, p.fail("invalid message %d", id)
	}
}

func (p *Parser) advance(n int) { p.buf = p.buf[n:] }
