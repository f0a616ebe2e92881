package session

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/amber-im/amber-client/internal/client/wsx"
	"github.com/amber-im/amber-client/internal/logging"
)

// heartbeat maintains the liveness websocket for one access token. It sends
// a "ping" payload on open and on a fixed interval, and redials after a
// constant delay on any failure except an explicit server rejection
// (close code 1008), which forces logout instead.
//
// The liveness channel deliberately uses a constant redial delay while the
// presence channel uses exponential backoff; the two are independent.
type heartbeat struct {
	url      string
	dialer   wsx.Dialer
	log      logging.Logger
	interval time.Duration
	retry    time.Duration
	onReject func()

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	conn wsx.Conn
}

func newHeartbeat(url string, dialer wsx.Dialer, log logging.Logger, interval, retry time.Duration, onReject func()) *heartbeat {
	ctx, cancel := context.WithCancel(context.Background())
	h := &heartbeat{
		url:      url,
		dialer:   dialer,
		log:      log.With("component", "liveness"),
		interval: interval,
		retry:    retry,
		onReject: onReject,
		ctx:      ctx,
		cancel:   cancel,
	}
	return h
}

func (h *heartbeat) Start() {
	go h.run()
}

func (h *heartbeat) run() {
	bo := backoff.NewConstantBackOff(h.retry)
	for {
		if h.ctx.Err() != nil {
			return
		}

		conn, err := h.dialer.Dial(h.ctx, h.url)
		if err == nil {
			h.setConn(conn)
			rejected := h.serve(conn)
			h.setConn(nil)
			_ = conn.Close()

			if rejected {
				h.log.Warn(h.ctx, "session rejected by server")
				h.cancel()
				h.onReject()
				return
			}
			h.log.Debug(h.ctx, "liveness socket closed, redialing", "delay", h.retry)
		} else {
			h.log.Debug(h.ctx, "liveness dial failed", "error", err)
		}

		select {
		case <-h.ctx.Done():
			return
		case <-time.After(bo.NextBackOff()):
		}
	}
}

// serve pumps keepalives and reads until the socket fails. Reports whether
// the server rejected the session with close code 1008.
func (h *heartbeat) serve(conn wsx.Conn) bool {
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		return false
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
					return
				}
			case <-done:
				return
			case <-h.ctx.Done():
				return
			}
		}
	}()

	for {
		// inbound payloads are ignored, the read loop only exists to
		// observe the close
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			return wsx.CloseCode(err) == websocket.ClosePolicyViolation
		}
	}
}

// Close tears the channel down. No redial happens afterwards.
func (h *heartbeat) Close() {
	h.cancel()

	h.mu.Lock()
	conn := h.conn
	h.conn = nil
	h.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (h *heartbeat) setConn(conn wsx.Conn) {
	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()
}
