package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amber-im/amber-client/internal/client/config"
	"github.com/amber-im/amber-client/internal/client/wsx"
)

// fakeConn is a scriptable wsx.Conn. Reads block until an error is injected
// via failRead or the connection is closed.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte

	readErr   chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		readErr: make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case err := <-c.readErr:
		return 0, nil, err
	case <-c.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("use of closed network connection")
	default:
	}
	c.mu.Lock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) failRead(err error) {
	c.readErr <- err
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) firstWrite() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return nil
	}
	return c.writes[0]
}

// fakeDialer hands out scripted connections and records every dial.
type fakeDialer struct {
	mu    sync.Mutex
	dials []string
	next  func(url string) (wsx.Conn, error)
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (wsx.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.dials = append(d.dials, url)
	next := d.next
	d.mu.Unlock()
	if next == nil {
		return nil, errors.New("no connection scripted")
	}
	return next(url)
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dials)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestHeartbeat_SendsInitialPing(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{next: func(string) (wsx.Conn, error) { return conn, nil }}

	hb := newHeartbeat("ws://h/ws/ping?token=t", dialer, testLogger(), time.Hour, time.Hour, func() {})
	hb.Start()
	defer hb.Close()

	waitFor(t, func() bool { return conn.writeCount() >= 1 }, "no ping sent")
	assert.Equal(t, "ping", string(conn.firstWrite()))
}

func TestHeartbeat_PingsOnInterval(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{next: func(string) (wsx.Conn, error) { return conn, nil }}

	hb := newHeartbeat("ws://h/ws/ping?token=t", dialer, testLogger(), 10*time.Millisecond, time.Hour, func() {})
	hb.Start()
	defer hb.Close()

	waitFor(t, func() bool { return conn.writeCount() >= 3 }, "keepalives not sent on interval")
}

func TestHeartbeat_RejectedForcesLogoutWithoutRedial(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{next: func(string) (wsx.Conn, error) { return conn, nil }}

	rejected := make(chan struct{})
	hb := newHeartbeat("ws://h/ws/ping?token=t", dialer, testLogger(), time.Hour, time.Millisecond, func() {
		close(rejected)
	})
	hb.Start()
	defer hb.Close()

	waitFor(t, func() bool { return conn.writeCount() >= 1 }, "connection never served")
	conn.failRead(&websocket.CloseError{Code: websocket.ClosePolicyViolation})

	select {
	case <-rejected:
	case <-time.After(2 * time.Second):
		t.Fatal("rejection callback not invoked")
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount(), "rejection must not trigger a redial")
}

func TestHeartbeat_RedialsAfterFailure(t *testing.T) {
	var mu sync.Mutex
	var conns []*fakeConn
	dialer := &fakeDialer{next: func(string) (wsx.Conn, error) {
		c := newFakeConn()
		mu.Lock()
		conns = append(conns, c)
		mu.Unlock()
		return c, nil
	}}

	var rejected bool
	hb := newHeartbeat("ws://h/ws/ping?token=t", dialer, testLogger(), time.Hour, 10*time.Millisecond, func() {
		rejected = true
	})
	hb.Start()
	defer hb.Close()

	waitFor(t, func() bool { return dialer.dialCount() >= 1 }, "never dialed")
	mu.Lock()
	first := conns[0]
	mu.Unlock()
	waitFor(t, func() bool { return first.writeCount() >= 1 }, "first connection never served")

	first.failRead(errors.New("connection reset"))

	waitFor(t, func() bool { return dialer.dialCount() >= 2 }, "no redial after failure")
	assert.False(t, rejected)
}

func TestHeartbeat_CloseStopsRedial(t *testing.T) {
	dialer := &fakeDialer{next: func(string) (wsx.Conn, error) {
		return nil, errors.New("refused")
	}}

	hb := newHeartbeat("ws://h/ws/ping?token=t", dialer, testLogger(), time.Hour, 10*time.Millisecond, func() {})
	hb.Start()

	waitFor(t, func() bool { return dialer.dialCount() >= 2 }, "never retried")
	hb.Close()

	n := dialer.dialCount()
	time.Sleep(60 * time.Millisecond)
	assert.LessOrEqual(t, dialer.dialCount(), n+1, "dials must stop after Close")
}

func TestManager_ForcedLogoutOnRejection(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{next: func(string) (wsx.Conn, error) { return conn, nil }}

	store := &fakeStore{access: "acc", refresh: "ref"}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = "http://host/api"
	m := NewManager(cfg, store, nil, dialer, testLogger())

	require.NoError(t, m.Restore(context.Background()))

	notified := make(chan bool, 2)
	m.SetOnAuthChange(func(ok bool) { notified <- ok })

	waitFor(t, func() bool { return conn.writeCount() >= 1 }, "liveness channel never opened")
	conn.failRead(&websocket.CloseError{Code: websocket.ClosePolicyViolation})

	select {
	case ok := <-notified:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("forced logout not observed")
	}

	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, store.access)
}
