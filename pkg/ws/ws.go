// Package ws exposes the RFB listener to websocket viewers (noVNC and
// friends) by bridging binary websocket messages to the TCP listener.
package ws

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kamrankamilli/jvnc/pkg/internal/log"
)

// Bridge proxies websocket connections to the RFB TCP listener.
type Bridge struct {
	addr   string
	target string

	server *http.Server
}

// NewBridge returns a bridge listening on addr and dialing target for
// each websocket client.
func NewBridge(addr, target string) *Bridge {
	return &Bridge{addr: addr, target: target}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// RFB carries its own handshake; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve runs the bridge until the context is cancelled.
func (b *Bridge) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/websockify", b.serveWS)

	b.server = &http.Server{
		Addr:        b.addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		b.server.Close()
	}()

	log.Infof("Bridging websocket connections on %s to %s", b.addr, b.target)
	err := b.server.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade websocket client: %s", err)
		return
	}

	rfbConn, err := net.Dial("tcp", b.target)
	if err != nil {
		log.Errorf("Failed to dial RFB listener %s: %s", b.target, err)
		wsConn.Close()
		return
	}

	go forwardTCP(wsConn, rfbConn)
	go forwardWS(wsConn, rfbConn)
}

// forwardTCP copies bytes from the RFB server into binary websocket
// messages.
func forwardTCP(wsConn *websocket.Conn, conn net.Conn) {
	defer conn.Close()
	defer wsConn.Close()

	var buf [4096]byte
	for {
		n, err := conn.Read(buf[:])
		if err != nil {
			return
		}
		if err := wsConn.WriteMessage(websocket.BinaryMessage, buf[:n]); err != nil {
			return
		}
	}
}

// forwardWS copies websocket messages into the RFB connection.
func forwardWS(wsConn *websocket.Conn, conn net.Conn) {
	defer conn.Close()
	defer wsConn.Close()

	for {
		_, msg, err := wsConn.ReadMessage()
		if err != nil {
			return
		}
		if _, err := conn.Write(msg); err != nil {
			return
		}
	}
}
