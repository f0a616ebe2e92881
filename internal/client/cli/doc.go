// Package cli provides the interactive Amber command-line client.
//
// It wires configuration, durable token storage, the session manager, and
// the presence client into an interactive REPL. Typical flow: restore a
// persisted session (or prompt for credentials), then watch the presence
// of a set of user IDs while the liveness channel keeps the session honest.
//
// Key features:
//   - Login / Register / Logout against the backend auth endpoints
//   - whoami: decode and display the held access token's claims
//   - watch/unwatch: live online/offline updates for a set of user IDs
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
