package rfb

import (
	"context"
	"net"
	"sync"

	"golang.org/x/net/netutil"

	"github.com/kamrankamilli/jvnc/pkg/fb"
	"github.com/kamrankamilli/jvnc/pkg/internal/log"
)

// ServerOpts configures a Server.
type ServerOpts struct {
	BindAddr   string
	MaxClients int
	Buffer     *fb.Framebuffer
	ColorMode  *fb.ColorMode
}

// Server accepts RFB connections and spawns one session per client. All
// sessions share the framebuffer and colour-mode cell by reference.
type Server struct {
	addr       string
	maxClients int

	fb   *fb.Framebuffer
	mode *fb.ColorMode

	nextID uint64

	connMu      sync.RWMutex
	connections map[*Conn]struct{}
}

// NewServer returns an unstarted server.
func NewServer(opts *ServerOpts) *Server {
	return &Server{
		addr:        opts.BindAddr,
		maxClients:  opts.MaxClients,
		fb:          opts.Buffer,
		mode:        opts.ColorMode,
		connections: make(map[*Conn]struct{}),
	}
}

// Serve listens on the configured address and accepts connections until
// the context is cancelled. A session's failure never affects the
// listener or other sessions.
func (s *Server) Serve(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	if s.maxClients > 0 {
		l = netutil.LimitListener(l, s.maxClients)
	}
	log.Infof("Listening for rfb connections on %s", s.addr)

	go func() {
		<-ctx.Done()
		l.Close()
		s.CloseAllConnections()
	}()

	for {
		c, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.nextID++
		conn := s.newConn(c, s.nextID)
		log.Infof("[%d] Accepted connection from %s", conn.id, c.RemoteAddr())
		go conn.serve()
	}
}

func (s *Server) removeConn(conn *Conn) {
	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()
}

// CloseAllConnections force-closes every live session's socket.
func (s *Server) CloseAllConnections() {
	s.connMu.RLock()
	connections := make([]*Conn, 0, len(s.connections))
	for conn := range s.connections {
		connections = append(connections, conn)
	}
	s.connMu.RUnlock()

	for _, conn := range connections {
		conn.c.Close()
	}
}
