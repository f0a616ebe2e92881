package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amber-im/amber-client/internal/client/config"
	"github.com/amber-im/amber-client/internal/client/presence"
	"github.com/amber-im/amber-client/internal/client/repositories/tokens"
	"github.com/amber-im/amber-client/internal/client/session"
	"github.com/amber-im/amber-client/internal/client/wsx"
	"github.com/amber-im/amber-client/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	session *session.Manager
	dialer  wsx.Dialer
	db      *sql.DB
	reader  *bufio.Reader

	mu      sync.Mutex
	watcher *presence.Client
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := logging.NewSlogLogger(slog.New(handler)).With("client_id", uuid.NewString())

	db, err := tokens.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := tokens.NewSQLiteStore(db)
	dialer := wsx.NewDialer(c.WSHandshakeTimeout)
	httpc := &http.Client{Timeout: 30 * time.Second}

	sm := session.NewManager(c, store, httpc, dialer, logger)

	app := &App{
		config:  c,
		log:     logger,
		session: sm,
		dialer:  dialer,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
	}
	sm.SetOnAuthChange(app.onAuthChange)

	if err := sm.Restore(ctx); err != nil {
		logger.Warn(ctx, "could not restore previous session", "error", err)
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.CloseApp(ctx)

	fmt.Println("Welcome to Amber CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) CloseApp(ctx context.Context) {
	a.stopWatcher()
	if err := a.db.Close(); err != nil {
		a.log.Error(ctx, "error closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	if info := a.session.TokenInfo(); info.Subject != "" {
		return fmt.Sprintf("(%s)", info.Subject)
	}
	if a.isLoggedIn() {
		return "(authenticated)"
	}
	return ""
}

// onAuthChange reacts to session transitions, including forced logout from
// the liveness channel: the presence watcher cannot outlive the session.
func (a *App) onAuthChange(authenticated bool) {
	if !authenticated {
		a.stopWatcher()
		fmt.Println("Session ended")
	}
}

func (a *App) stopWatcher() {
	a.mu.Lock()
	w := a.watcher
	a.watcher = nil
	a.mu.Unlock()

	if w != nil {
		w.Close()
	}
}
