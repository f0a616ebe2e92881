// Package presence maintains a live, auto-reconnecting websocket to the
// presence service and delivers normalized online/offline updates to a
// single callback.
//
// # Overview
//
//  1. Connection: up to two candidate URLs are built from the API base (bare
//     origin, and origin plus the API path prefix for reverse-proxy setups).
//     Candidates are tried in order; a candidate failing before the
//     handshake completes moves to the next one immediately and does not
//     count as a reconnect attempt.
//  2. Reconnect: after a connection that failed (or closed after opening),
//     the client redials the full candidate list after an exponential delay,
//     doubling from 500ms and capped at 10s. Any successful open resets the
//     backoff.
//  3. Subscription: the interest set is kept as a deduplicated, sorted
//     signature; identical sets never cause redundant subscribe messages,
//     and a changed set on an open socket resubscribes the full new set
//     without reconnecting.
//  4. Protocol: client sends {"type":"subscribe","user_ids":[...]} and
//     {"type":"ping"}; server sends {"type":"snapshot"} and {"type":"update"}.
//     Malformed or unrecognized messages are dropped silently.
//
// The client is a pure transport + normalization layer: it holds no
// long-lived status cache. Updates reach the callback in receive order from
// a single goroutine.
package presence
