package session

import (
	"context"
	"errors"
	"sync"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

// DefaultLoginPath is where an expired session sends the user
const DefaultLoginPath = "/login"

// Navigator moves the presenting client to another view
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// Redirects is the Navigator for a server with no browser to move. The target
// is recorded on the Redirect captured by the request that caused it, so the
// MCP surface can report it to that caller only.
type Redirects struct {
	logger *logging.Logger
}

func NewRedirects(logger *logging.Logger) *Redirects {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Redirects{logger: logger}
}

func (r *Redirects) Navigate(ctx context.Context, path string) {
	if rd, ok := ctx.Value(redirectKey{}).(*Redirect); ok {
		rd.set(path)
	}
	r.logger.Info("redirect requested", "path", path)
}

type redirectKey struct{}

// Redirect holds the navigation requested while serving one request
type Redirect struct {
	mu   sync.Mutex
	path string
}

// CaptureRedirect binds a fresh Redirect to ctx
func CaptureRedirect(ctx context.Context) (context.Context, *Redirect) {
	rd := &Redirect{}
	return context.WithValue(ctx, redirectKey{}, rd), rd
}

// Path returns the requested target, if any
func (rd *Redirect) Path() (string, bool) {
	if rd == nil {
		return "", false
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.path, rd.path != ""
}

func (rd *Redirect) set(path string) {
	rd.mu.Lock()
	rd.path = path
	rd.mu.Unlock()
}

// Manager ties token storage to login navigation
type Manager struct {
	store     Store
	nav       Navigator
	loginPath string
	logger    *logging.Logger
}

func NewManager(store Store, nav Navigator, loginPath string, logger *logging.Logger) *Manager {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:     store,
		nav:       nav,
		loginPath: loginPath,
		logger:    logger,
	}
}

// Token returns the stored bearer token, or "" when logged out
func (m *Manager) Token(_ context.Context) (string, error) {
	token, err := m.store.Load()
	if errors.Is(err, ErrNoToken) {
		return "", nil
	}
	return token, err
}

// Login persists a token obtained out of band
func (m *Manager) Login(_ context.Context, token string) error {
	return m.store.Save(token)
}

// Expire drops the stored token and sends the client to the login view
func (m *Manager) Expire(ctx context.Context) {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear session token", "err", err)
	}
	if m.nav != nil {
		m.nav.Navigate(ctx, m.loginPath)
	}
}
