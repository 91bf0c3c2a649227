package buffer

import (
	"bufio"
	"net"
)

// ReadWriter is a buffered read/writer for one RFB connection. Writes are
// synchronous so that callers observe socket errors in order.
type ReadWriter struct {
	br *bufio.Reader
	bw *bufio.Writer
}

// NewReadWriteBuffer returns a new ReadWriter for the given connection.
func NewReadWriteBuffer(c net.Conn) *ReadWriter {
	return &ReadWriter{
		br: bufio.NewReader(c),
		bw: bufio.NewWriterSize(c, 256<<10),
	}
}

// Reader returns a direct reference to the underlying reader.
func (rw *ReadWriter) Reader() *bufio.Reader { return rw.br }

// Dispatch writes a packed message and flushes it to the socket.
func (rw *ReadWriter) Dispatch(msg []byte) error {
	if _, err := rw.bw.Write(msg); err != nil {
		return err
	}
	return rw.bw.Flush()
}
