package wsx

import (
	"fmt"
	"net/url"
)

// URL builds a websocket URL from an http(s) API base: the scheme is mapped
// to ws/wss, the host is kept, the given absolute path replaces whatever
// path the base carried, and the access token is attached as a query
// parameter (the servers authenticate websocket upgrades via "?token=").
func URL(apiBase, path, token string) (string, error) {
	base, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("invalid api base url %q: %w", apiBase, err)
	}
	if base.Host == "" {
		return "", fmt.Errorf("api base url %q has no host", apiBase)
	}

	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}

	u := url.URL{Scheme: scheme, Host: base.Host, Path: path}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
