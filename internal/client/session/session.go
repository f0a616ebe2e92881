package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/amber-im/amber-client/internal/client/config"
	"github.com/amber-im/amber-client/internal/client/wsx"
	"github.com/amber-im/amber-client/internal/logging"
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenStore is the durable storage port for the token pair. Save and Clear
// must update both values atomically as observed by Load.
type TokenStore interface {
	Load(ctx context.Context) (access, refresh string, err error)
	Save(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// Manager owns the token lifecycle and the liveness channel.
type Manager struct {
	cfg    *config.Config
	store  TokenStore
	httpc  Doer
	dialer wsx.Dialer
	log    logging.Logger

	refreshGroup singleflight.Group

	mu        sync.Mutex
	access    string
	refresh   string
	heartbeat *heartbeat
	onChange  func(authenticated bool)
}

func NewManager(cfg *config.Config, store TokenStore, httpc Doer, dialer wsx.Dialer, log logging.Logger) *Manager {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		httpc:  httpc,
		dialer: dialer,
		log:    log,
	}
}

// Restore loads the persisted token pair so a restarted client resumes its
// session, and starts the liveness channel when authenticated.
func (m *Manager) Restore(ctx context.Context) error {
	access, refresh, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if access == "" {
		return nil
	}

	m.mu.Lock()
	m.access = access
	m.refresh = refresh
	m.mu.Unlock()

	m.startHeartbeat(access)
	m.notify(true)
	return nil
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *Manager) IsAuthenticated() bool {
	return m.AccessToken() != ""
}

// SetOnAuthChange registers a hook invoked whenever the session flips
// between authenticated and unauthenticated, including forced logout.
func (m *Manager) SetOnAuthChange(fn func(authenticated bool)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Login authenticates with form-encoded credentials and persists the
// returned token pair. Returns ErrInvalidInput on a 422 and *AuthError for
// other non-2xx responses.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIBaseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return ErrInvalidInput
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &AuthError{Status: resp.StatusCode, Detail: readErrorMessage(resp)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	if err := m.setTokens(ctx, tr.AccessToken, tr.RefreshToken); err != nil {
		return err
	}

	m.log.Info(ctx, "logged in", "username", username)
	return nil
}

// Register submits a new-account request and, on success, immediately logs
// in with the same credentials.
func (m *Manager) Register(ctx context.Context, r RegisterRequest) error {
	body, err := json.Marshal(r.payload())
	if err != nil {
		return fmt.Errorf("encode register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIBaseURL+"/auth/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return ErrInvalidInput
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &AuthError{Status: resp.StatusCode, Detail: readErrorMessage(resp)}
	}

	return m.Login(ctx, r.Username, r.Password)
}

// Logout clears in-memory and persisted tokens and stops the liveness
// channel. Idempotent; safe to call when already logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.access != ""
	m.access = ""
	m.refresh = ""
	hb := m.heartbeat
	m.heartbeat = nil
	m.mu.Unlock()

	if hb != nil {
		hb.Close()
	}

	ctx := context.Background()
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to clear persisted tokens", "error", err)
	}

	if wasAuthenticated {
		m.log.Info(ctx, "logged out")
		m.notify(false)
	}
}

// Do performs an authenticated request. On a 401 it refreshes the access
// token and retries the original request once with the new token; if refresh
// fails (or there is no refresh token) the original 401 is returned
// unchanged. Any other status is returned as-is.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	first := req.Clone(req.Context())
	setBearer(first, m.AccessToken())

	resp, err := m.httpc.Do(first)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	next := m.refreshAccessToken(req.Context())
	if next == "" {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.Body != nil {
		if req.GetBody == nil {
			// body cannot be replayed, surface the 401
			return resp, nil
		}
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	setBearer(retry, next)

	// we are replacing the first response, release it
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return m.httpc.Do(retry)
}

// refreshAccessToken mints a new access token from the held refresh token.
// At most one refresh is in flight at any time; concurrent callers await the
// same result. Returns "" when no refresh token is held or the refresh
// failed (which forces logout).
func (m *Manager) refreshAccessToken(ctx context.Context) string {
	m.mu.Lock()
	refresh := m.refresh
	m.mu.Unlock()
	if refresh == "" {
		return ""
	}

	// The flight must not die with its first caller.
	ctx = context.WithoutCancel(ctx)

	v, _, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		token, err := m.doRefresh(ctx, refresh)
		if err != nil {
			m.log.Warn(ctx, "token refresh failed, logging out", "error", err)
			m.Logout()
			return "", nil
		}
		return token, nil
	})
	return v.(string)
}

func (m *Manager) doRefresh(ctx context.Context, refresh string) (string, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refresh})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIBaseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode, Detail: readErrorMessage(resp)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}

	if err := m.setTokens(ctx, tr.AccessToken, tr.RefreshToken); err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// setTokens persists the pair, updates memory, and restarts the liveness
// channel against the new access token.
func (m *Manager) setTokens(ctx context.Context, access, refresh string) error {
	if err := m.store.Save(ctx, access, refresh); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}

	m.mu.Lock()
	m.access = access
	m.refresh = refresh
	hb := m.heartbeat
	m.heartbeat = nil
	m.mu.Unlock()

	if hb != nil {
		hb.Close()
	}
	m.startHeartbeat(access)
	m.notify(true)
	return nil
}

func (m *Manager) startHeartbeat(access string) {
	if access == "" || m.dialer == nil {
		return
	}

	u, err := wsx.URL(m.cfg.APIBaseURL, "/ws/ping", access)
	if err != nil {
		m.log.Error(context.Background(), "cannot build liveness url", "error", err)
		return
	}

	hb := newHeartbeat(u, m.dialer, m.log, m.cfg.HeartbeatInterval, m.cfg.HeartbeatRetryDelay, m.Logout)

	m.mu.Lock()
	if m.access != access {
		// token changed while we were setting up, drop this channel
		m.mu.Unlock()
		hb.Close()
		return
	}
	m.heartbeat = hb
	m.mu.Unlock()

	hb.Start()
}

func (m *Manager) notify(authenticated bool) {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(authenticated)
	}
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
