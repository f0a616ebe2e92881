package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/amber-im/amber-client/internal/client/wsx"
	"github.com/amber-im/amber-client/internal/logging"
)

// Config bounds the presence connection's timing behavior. Zero fields fall
// back to the production values.
type Config struct {
	APIBaseURL     string
	PingInterval   time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c *Config) withDefaults() {
	if c.PingInterval == 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 10 * time.Second
	}
}

type subscribeMessage struct {
	Type    string  `json:"type"`
	UserIDs []int64 `json:"user_ids"`
}

type pingMessage struct {
	Type string `json:"type"`
}

// Client maintains the presence websocket. Create it with NewClient, feed
// the interest set through SetUserIDs, call Start once with the current
// access token, and Close it when the token changes or the host goes away.
type Client struct {
	cfg        Config
	dialer     wsx.Dialer
	log        logging.Logger
	onStatuses func(map[int64]bool)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	conn      wsx.Conn
	userIDs   []int64
	signature string
	started   bool

	writeMu sync.Mutex
}

func NewClient(cfg Config, dialer wsx.Dialer, log logging.Logger, onStatuses func(map[int64]bool)) *Client {
	cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:        cfg,
		dialer:     dialer,
		log:        log.With("component", "presence"),
		onStatuses: onStatuses,
		ctx:        ctx,
		cancel:     cancel,
		state:      StateIdle,
		userIDs:    make([]int64, 0),
	}
}

// Start opens the connection loop with the given access token. It returns
// immediately; dialing, keepalive and reconnection run in the background
// until Close.
func (c *Client) Start(accessToken string) error {
	urls, err := CandidateURLs(c.cfg.APIBaseURL, accessToken)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("presence client already started")
	}
	c.started = true
	c.mu.Unlock()

	go c.run(urls)
	return nil
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetUserIDs replaces the interest set. An identity-equal set is a no-op;
// a changed set on an open socket resubscribes immediately with the full
// new set, without reconnecting.
func (c *Client) SetUserIDs(ids []int64) {
	canonical, sig := Canonicalize(ids)

	c.mu.Lock()
	if sig == c.signature {
		c.mu.Unlock()
		return
	}
	c.userIDs = canonical
	c.signature = sig
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()

	if open && conn != nil {
		c.writeJSON(conn, subscribeMessage{Type: "subscribe", UserIDs: canonical})
	}
}

// Close tears the client down: no timer fires and no socket is opened
// afterwards. Closing an already-closed client is a no-op.
func (c *Client) Close() {
	c.cancel()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.state = StateClosed
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) run(urls []string) {
	bo := newBackoff(c.cfg.InitialBackoff, c.cfg.MaxBackoff)

	for {
		if c.ctx.Err() != nil {
			return
		}

		c.connectAttempt(urls, bo)

		if c.ctx.Err() != nil {
			return
		}

		delay := bo.NextBackOff()
		c.log.Debug(c.ctx, "scheduling presence reconnect", "delay", delay)
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// connectAttempt walks the candidate list. A candidate that fails before the
// handshake completes moves on to the next immediately; once a connection
// opens it is served until it closes.
func (c *Client) connectAttempt(urls []string, bo *backoff.ExponentialBackOff) {
	for _, u := range urls {
		if c.ctx.Err() != nil {
			return
		}

		c.setState(StateConnecting)
		conn, err := c.dialer.Dial(c.ctx, u)
		if err != nil {
			c.log.Debug(c.ctx, "presence dial failed", "url", u, "error", err)
			continue
		}

		c.serve(conn, bo)
		return
	}

	c.setState(StateClosed)
}

// serve owns one open connection: subscribes, runs the keepalive, and pumps
// inbound messages until the socket fails.
func (c *Client) serve(conn wsx.Conn, bo *backoff.ExponentialBackOff) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.state = StateOpen
	ids := c.userIDs
	c.mu.Unlock()

	bo.Reset()
	c.log.Info(c.ctx, "presence socket open")

	if len(ids) > 0 {
		c.writeJSON(conn, subscribeMessage{Type: "subscribe", UserIDs: ids})
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.writeJSON(conn, pingMessage{Type: "ping"}); err != nil {
					return
				}
			case <-done:
				return
			case <-c.ctx.Done():
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.log.Debug(c.ctx, "presence socket closed", "code", wsx.CloseCode(err), "error", err)
			break
		}
		c.handleMessage(data)
	}
	close(done)

	c.mu.Lock()
	c.conn = nil
	c.state = StateClosed
	c.mu.Unlock()
	_ = conn.Close()
}

// handleMessage dispatches one inbound frame. Malformed JSON and unknown
// message types are dropped, never surfaced.
func (c *Client) handleMessage(data []byte) {
	var msg struct {
		Type     string          `json:"type"`
		Statuses json.RawMessage `json:"statuses"`
		UserID   json.RawMessage `json:"user_id"`
		Online   json.RawMessage `json:"online"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "snapshot":
		var raw any
		if err := json.Unmarshal(msg.Statuses, &raw); err != nil {
			return
		}
		statuses := normalizeStatuses(raw)
		if len(statuses) > 0 {
			c.deliver(statuses)
		}

	case "update":
		var userID float64
		var online bool
		if err := json.Unmarshal(msg.UserID, &userID); err != nil {
			return
		}
		if err := json.Unmarshal(msg.Online, &online); err != nil {
			return
		}
		c.deliver(map[int64]bool{int64(userID): online})
	}
}

func (c *Client) deliver(statuses map[int64]bool) {
	if c.onStatuses != nil {
		c.onStatuses(statuses)
	}
}

func (c *Client) writeJSON(conn wsx.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// newBackoff returns the reconnect delay policy: doubling from initial and
// capped at max, with no jitter so the schedule is predictable.
func newBackoff(initial, max time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = max
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
