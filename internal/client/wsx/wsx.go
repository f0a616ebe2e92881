// Package wsx wraps the gorilla/websocket client behind small interfaces so
// the session and presence state machines can be exercised with fake
// transports in tests.
package wsx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn used by the client.
// Writes must come from a single goroutine at a time; reads likewise.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a websocket connection. Dial blocks until the handshake
// completes or ctx is cancelled.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// GorillaDialer is the production Dialer backed by websocket.Dialer.
type GorillaDialer struct {
	d *websocket.Dialer
}

func NewDialer(handshakeTimeout time.Duration) *GorillaDialer {
	return &GorillaDialer{d: &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}}
}

func (g *GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := g.d.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	return conn, nil
}

// CloseCode extracts the close status code from a read error.
// Returns -1 when the error does not carry a close frame (e.g. a plain
// network failure or a locally closed socket).
func CloseCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return -1
}
