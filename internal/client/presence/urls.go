package presence

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/amber-im/amber-client/internal/client/wsx"
)

const presencePath = "/ws/presence"

// CandidateURLs builds the presence endpoints to try, in order: the bare
// origin's presence path, plus a variant prefixed by the API base's path
// segment (to tolerate reverse-proxy path prefixes). Each carries the
// access token as a query parameter.
func CandidateURLs(apiBase, token string) ([]string, error) {
	base, err := url.Parse(apiBase)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", apiBase, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", apiBase)
	}

	paths := []string{presencePath}
	if prefix := strings.TrimRight(base.Path, "/"); prefix != "" && prefix != "/" {
		paths = append(paths, prefix+presencePath)
	}

	seen := make(map[string]struct{}, len(paths))
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		u, err := wsx.URL(apiBase, p, token)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls, nil
}
