package cli

import (
	"context"
	"errors"
	"os"

	"github.com/amber-im/amber-client/internal/client/session"
)

func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "error reading username", "error", err)
		return err
	}

	email, err := GetSimpleText(a.reader, "Enter email (optional)", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "error reading email", "error", err)
		return err
	}

	fullName, err := GetSimpleText(a.reader, "Enter full name (optional)", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "error reading full name", "error", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		a.log.Error(ctx, "error reading password", "error", err)
		return err
	}

	req := session.RegisterRequest{
		Username: username,
		Password: password,
		Email:    email,
		FullName: fullName,
	}

	if err := a.session.Register(ctx, req); err != nil {
		var authErr *session.AuthError
		switch {
		case errors.Is(err, session.ErrInvalidInput):
			printlnFn("Registration failed: invalid input")
		case errors.As(err, &authErr):
			printlnFn("Registration failed:", authErr.Detail)
		default:
			printlnFn("Registration failed:", err.Error())
		}
		return err
	}

	printlnFn("Success!")
	return nil
}
