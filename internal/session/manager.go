package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/taskdue/internal/credential"
	"github.com/nhle/taskdue/internal/model"
)

// ErrNotAuthenticated indicates an operation that requires a logged-in
// user was attempted without one. Task and completion operations must
// be gated behind an authenticated session.
var ErrNotAuthenticated = errors.New("not authenticated")

// State is the authentication state of the session.
type State int

const (
	// Unauthenticated means no valid session exists.
	Unauthenticated State = iota

	// Authenticating means a login or restore is in flight. No task
	// or completion operation may be attempted in this state.
	Authenticating

	// Authenticated means a verified session is active.
	Authenticated
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// CredentialStore persists the session credential across process
// restarts. Implemented by credential.Store over the platform keyring.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Delete(key string) error
}

// AccountAPI is the slice of the gateway used for authentication.
type AccountAPI interface {
	Create(ctx context.Context, email, password string) (*model.User, error)
	CreateEmailSession(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context) (*model.User, error)
	DeleteCurrentSession(ctx context.Context) error
}

// TokenSink receives the active session token. Implemented by the
// gateway client; an empty token de-authenticates it.
type TokenSink interface {
	SetSession(token string)
}

// Manager owns the session lifecycle: it persists and restores the
// credential, installs it on the gateway, and tracks the state machine
// Unauthenticated -> Authenticating -> Authenticated -> Unauthenticated.
type Manager struct {
	creds   CredentialStore
	account AccountAPI
	tokens  TokenSink
	log     *zap.Logger

	mu    sync.Mutex
	state State
	user  *model.User
}

// NewManager creates a session manager. The manager starts
// Unauthenticated; call Restore to pick up a persisted session.
func NewManager(
	creds CredentialStore,
	account AccountAPI,
	tokens TokenSink,
	log *zap.Logger,
) *Manager {
	return &Manager{
		creds:   creds,
		account: account,
		tokens:  tokens,
		log:     log,
	}
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the authenticated user, or nil when no session
// is active.
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// RequireUser returns the authenticated user's ID, or
// ErrNotAuthenticated when the session is not in the Authenticated
// state.
func (m *Manager) RequireUser() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated || m.user == nil {
		return "", ErrNotAuthenticated
	}
	return m.user.ID, nil
}

// setState transitions the state machine and records the user echo.
func (m *Manager) setState(state State, user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
}

// Restore loads a persisted credential at startup and verifies it
// against the gateway. A missing credential is not an error: the
// manager simply ends Unauthenticated. A credential that is present
// but no longer accepted (expired or revoked) is cleared and likewise
// results in Unauthenticated; a half-authenticated state is never left
// behind.
func (m *Manager) Restore(ctx context.Context) error {
	m.setState(Authenticating, nil)

	token, err := m.creds.Get(credential.KeyAuthToken)
	if err != nil {
		m.setState(Unauthenticated, nil)
		if errors.Is(err, credential.ErrNotFound) {
			return nil
		}
		// A broken credential store is treated as no session.
		m.log.Warn("reading stored session failed", zap.Error(err))
		return nil
	}

	m.tokens.SetSession(token)

	user, err := m.account.CurrentUser(ctx)
	if err != nil {
		m.log.Info("stored session rejected, clearing it", zap.Error(err))
		if clearErr := m.creds.Delete(credential.KeyAuthToken); clearErr != nil {
			m.log.Warn("clearing stale session token failed", zap.Error(clearErr))
		}
		m.tokens.SetSession("")
		m.setState(Unauthenticated, nil)
		return nil
	}

	m.setState(Authenticated, user)
	return nil
}

// Login authenticates with an email and password, installs the session
// token on the gateway, and persists it. A persistence failure is
// surfaced to the caller; the in-memory session remains usable for the
// life of the process, but it will not survive a restart.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	m.setState(Authenticating, nil)

	token, err := m.account.CreateEmailSession(ctx, email, password)
	if err != nil {
		m.setState(Unauthenticated, nil)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.tokens.SetSession(token)

	user, err := m.account.CurrentUser(ctx)
	if err != nil {
		m.tokens.SetSession("")
		m.setState(Unauthenticated, nil)
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	m.setState(Authenticated, user)

	if err := m.creds.Set(credential.KeyAuthToken, token); err != nil {
		return user, fmt.Errorf("persisting session token: %w", err)
	}
	return user, nil
}

// SignUp registers a new account and then logs it in.
func (m *Manager) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	if _, err := m.account.Create(ctx, email, password); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return m.Login(ctx, email, password)
}

// Logout tears the session down: the remote session is deleted on a
// best-effort basis, the stored credential is cleared, and the gateway
// is de-authenticated. Logout always ends Unauthenticated.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.account.DeleteCurrentSession(ctx); err != nil {
		m.log.Warn("deleting remote session failed", zap.Error(err))
	}

	err := m.creds.Delete(credential.KeyAuthToken)

	m.tokens.SetSession("")
	m.setState(Unauthenticated, nil)

	if err != nil {
		return fmt.Errorf("clearing stored session token: %w", err)
	}
	return nil
}
