package types

// PixelFormat is the 16-byte RFB pixel format block.
type PixelFormat struct {
	BPP        uint8
	Depth      uint8
	BigEndian  uint8
	TrueColour uint8
	RedMax     uint16
	GreenMax   uint16
	BlueMax    uint16
	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
	Padding    [3]uint8
}

// FrameBufferRectangle is the header preceding each rectangle in a
// FramebufferUpdate message.
type FrameBufferRectangle struct {
	X       uint16
	Y       uint16
	Width   uint16
	Height  uint16
	EncType int32
}

// UpdateRequest is a decoded FramebufferUpdateRequest message.
type UpdateRequest struct {
	Incremental bool
	X           int
	Y           int
	Width       int
	Height      int
}

// Clamp bounds the request against the framebuffer dimensions so that
// the origin lands inside the buffer and neither side exceeds it.
func (u UpdateRequest) Clamp(width, height int) UpdateRequest {
	out := u
	if out.X > width-1 {
		out.X = width - 1
	}
	if out.Y > height-1 {
		out.Y = height - 1
	}
	if out.Width > width {
		out.Width = width
	}
	if out.Height > height {
		out.Height = height
	}
	return out
}
