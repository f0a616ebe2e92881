package tokens

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amber-im/amber-client/internal/dbx"
)

// Storage keys for the persisted token pair. Absence of a key means the
// user is logged out.
const (
	AccessTokenKey  = "amber.accessToken"
	RefreshTokenKey = "amber.refreshToken"
)

// SQLiteStore persists the access/refresh token pair under two keys in the
// metadata table. Save and Clear touch both keys inside one transaction so
// readers never observe a half-updated pair.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the persisted pair. A missing key yields an empty string.
func (s *SQLiteStore) Load(ctx context.Context) (access, refresh string, err error) {
	repo := NewSQLiteRepository(s.db)

	a, err := repo.Get(ctx, AccessTokenKey)
	if err != nil {
		return "", "", fmt.Errorf("load access token: %w", err)
	}
	r, err := repo.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", "", fmt.Errorf("load refresh token: %w", err)
	}
	return string(a), string(r), nil
}

// Save stores both tokens atomically.
func (s *SQLiteStore) Save(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, AccessTokenKey, []byte(access)); err != nil {
			return err
		}
		return repo.Set(ctx, RefreshTokenKey, []byte(refresh))
	})
}

// Clear removes both tokens atomically. Clearing an empty store is a no-op.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, AccessTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, RefreshTokenKey)
	})
}
