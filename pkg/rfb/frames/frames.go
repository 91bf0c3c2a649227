// Package frames defines the typed frames the RFB parser emits. One
// frame corresponds to one client handshake step or one client-to-server
// message.
package frames

import "github.com/kamrankamilli/jvnc/pkg/rfb/types"

// Frame is implemented by every variant the parser can emit.
type Frame interface {
	frame()
}

// Security is the security type selected by the client.
type Security uint8

// SecurityNone is the only security type the server offers.
const SecurityNone Security = 1

// Access is the shared/exclusive flag from the ClientInit message.
type Access uint8

const (
	AccessExclusive Access = iota
	AccessShared
)

func (a Access) String() string {
	if a == AccessExclusive {
		return "exclusive"
	}
	return "shared"
}

// ProtocolVersion is the client's version handshake line, newline
// stripped.
type ProtocolVersion struct {
	Version string
}

// SecuritySelection is the client's chosen security type.
type SecuritySelection struct {
	Security Security
}

// ClientInit is the client's requested access mode.
type ClientInit struct {
	Access Access
}

// SetPixelFormat is acknowledged but carries no payload; the server
// imposes its own format.
type SetPixelFormat struct{}

// SetEncodings carries the encoding IDs the client supports.
type SetEncodings struct {
	Encodings []int32
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Down bool
	Key  uint32
}

// PointerEvent is a pointer move or button change.
type PointerEvent struct {
	ButtonMask uint8
	X, Y       uint16
}

// ClientCutText is acknowledged but its payload is discarded.
type ClientCutText struct{}

// FramebufferUpdateRequest asks the server for pixel data.
type FramebufferUpdateRequest struct {
	Request types.UpdateRequest
}

// EOF marks a clean end of the client byte stream.
type EOF struct{}

func (ProtocolVersion) frame()          {}
func (SecuritySelection) frame()        {}
func (ClientInit) frame()               {}
func (SetPixelFormat) frame()           {}
func (SetEncodings) frame()             {}
func (KeyEvent) frame()                 {}
func (PointerEvent) frame()             {}
func (ClientCutText) frame()            {}
func (FramebufferUpdateRequest) frame() {}
func (EOF) frame()                      {}
