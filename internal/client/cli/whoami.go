package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}

	info := a.session.TokenInfo()
	if info.Subject == "" {
		printlnFn("Logged in (token carries no subject)")
		return nil
	}

	line := fmt.Sprintf("Logged in as %s", info.Subject)
	if !info.ExpiresAt.IsZero() {
		line += fmt.Sprintf(", token expires %s", info.ExpiresAt.Format(time.RFC3339))
	}
	printlnFn(line)
	return nil
}
