// Package session owns the client-side authentication lifecycle.
//
// # Overview
//
// The package provides:
//  1. A Manager that holds the access/refresh token pair, persists it through
//     a TokenStore, and exposes Login/Register/Logout against the backend
//     REST API.
//  2. An authenticated request primitive (Manager.Do) that injects the bearer
//     token and transparently refreshes it on a 401, retrying the original
//     request exactly once. Concurrent callers that hit a 401 share a single
//     in-flight refresh (singleflight); duplicate refresh calls are never
//     issued, which matters because refresh tokens are single-use server-side.
//  3. A liveness channel: a low-traffic websocket to /ws/ping that detects
//     server-forced session termination. A close with code 1008 logs the
//     client out; any other failure redials after a fixed delay.
//
// # Error Handling
//
// Validation failures (HTTP 422) surface as ErrInvalidInput; other non-2xx
// auth responses surface as *AuthError carrying the server-supplied detail
// message. A failed refresh is terminal for the session: the Manager logs
// out and the caller sees the original 401 response unchanged.
//
// Concurrency & Contexts
//
// Manager is safe for concurrent use. Only the Manager mutates the token
// pair; everything else reads AccessToken(). All operations accept
// context.Context and honor cancellation/timeouts.
package session
