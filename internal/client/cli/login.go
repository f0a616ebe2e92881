package cli

import (
	"context"
	"errors"
	"os"

	"github.com/amber-im/amber-client/internal/client/session"
)

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "error reading username", "error", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		a.log.Error(ctx, "error reading password", "error", err)
		return err
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		var authErr *session.AuthError
		switch {
		case errors.Is(err, session.ErrInvalidInput):
			printlnFn("Login failed: check username and password")
		case errors.As(err, &authErr):
			printlnFn("Login failed:", authErr.Detail)
		default:
			printlnFn("Login failed:", err.Error())
		}
		return err
	}

	printlnFn("Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.stopWatcher()
	a.session.Logout()
	return nil
}
