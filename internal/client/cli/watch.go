package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/amber-im/amber-client/internal/client/presence"
)

// Watch follows the online status of the given users. Called again while a
// watcher is already running, it updates the watched set in place instead of
// reconnecting.
func (a *App) Watch(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first")
		return nil
	}

	ids, err := parseUserIDs(args)
	if err != nil {
		printlnFn("Usage: watch ID[,ID...]")
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.watcher != nil {
		a.watcher.SetUserIDs(ids)
		printlnFn("Watch list updated")
		return nil
	}

	w := presence.NewClient(presence.Config{
		APIBaseURL:     a.config.APIBaseURL,
		PingInterval:   a.config.PresencePingInterval,
		InitialBackoff: a.config.PresenceInitialBackoff,
		MaxBackoff:     a.config.PresenceMaxBackoff,
	}, a.dialer, a.log, printStatuses)

	w.SetUserIDs(ids)
	if err := w.Start(a.session.AccessToken()); err != nil {
		return err
	}

	a.watcher = w
	printlnFn("Watching", len(ids), "user(s)")
	return nil
}

func (a *App) Unwatch(ctx context.Context) error {
	a.mu.Lock()
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()

	if w == nil {
		printlnFn("Nothing is being watched")
		return nil
	}
	w.Close()
	printlnFn("Stopped watching")
	return nil
}

// parseUserIDs accepts IDs as separate arguments or comma-separated lists,
// e.g. "watch 1,2 3".
func parseUserIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no user ids given")
	}
	return ids, nil
}

func printStatuses(statuses map[int64]bool) {
	ids := make([]int64, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		state := "offline"
		if statuses[id] {
			state = "online"
		}
		parts = append(parts, fmt.Sprintf("%d:%s", id, state))
	}
	printlnFn("Presence:", strings.Join(parts, " "))
}
