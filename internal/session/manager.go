package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/storage"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// Storage keys shared with every client of the same auth backend; the
// web front end reads and writes the same entries.
const (
	accessTokenKey   = "supabase_access_token"
	refreshTokenKey  = "supabase_refresh_token"
	sessionExpiryKey = "supabase_session_expiry"
)

// refreshCooldown matches the server-side refresh-token reuse interval.
// Attempts inside the window are skipped rather than queued.
const refreshCooldown = 10 * time.Second

// refreshWindow is how close to expiry a session may get before
// ShouldRefresh reports true.
const refreshWindow = 5 * time.Minute

// RefreshFunc performs one token refresh against the auth backend.
type RefreshFunc func(ctx context.Context) (Session, error)

// Manager persists sessions in the durable store and coordinates
// refresh attempts. It implements Provider.
type Manager struct {
	store  storage.KV
	logger logpkg.Logger

	refreshMu     sync.Mutex
	lastRefreshNS atomic.Int64

	nowFn func() time.Time
}

var _ Provider = (*Manager)(nil)

// NewManager returns a Manager over the given store.
func NewManager(store storage.KV, logger logpkg.Logger) *Manager {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Manager{
		store:  store,
		logger: logger.WithComponent("session"),
		nowFn:  time.Now,
	}
}

// StoreSession persists the session under the shared storage keys.
// A zero expiry is derived from the access token when possible.
func (m *Manager) StoreSession(ctx context.Context, s Session) error {
	if s.AccessToken == "" {
		return errors.New("session access token is empty")
	}
	exp := s.ExpiresAt
	if exp.IsZero() {
		exp = expiryFromToken(s.AccessToken)
	}

	if err := m.store.Set(ctx, accessTokenKey, []byte(s.AccessToken)); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := m.store.Set(ctx, refreshTokenKey, []byte(s.RefreshToken)); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	var expiry []byte
	if !exp.IsZero() {
		expiry = []byte(exp.UTC().Format(time.RFC3339Nano))
	}
	if err := m.store.Set(ctx, sessionExpiryKey, expiry); err != nil {
		return fmt.Errorf("store session expiry: %w", err)
	}
	m.logger.Debug("session stored", logpkg.Time("expires_at", exp))
	return nil
}

// LoadStoredSession reads the persisted session. It degrades to
// "no session" on any storage failure; a session needs both tokens
// to count as stored.
func (m *Manager) LoadStoredSession(ctx context.Context) (Session, bool) {
	access, err := m.getOptional(ctx, accessTokenKey)
	if err != nil {
		m.logger.WithError(err).Error("load stored session")
		return Session{}, false
	}
	refresh, err := m.getOptional(ctx, refreshTokenKey)
	if err != nil {
		m.logger.WithError(err).Error("load stored session")
		return Session{}, false
	}
	if len(access) == 0 || len(refresh) == 0 {
		m.logger.Debug("no stored session")
		return Session{}, false
	}

	s := Session{AccessToken: string(access), RefreshToken: string(refresh)}
	if raw, err := m.getOptional(ctx, sessionExpiryKey); err == nil && len(raw) > 0 {
		if exp, perr := time.Parse(time.RFC3339Nano, string(raw)); perr == nil {
			s.ExpiresAt = exp
		}
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = expiryFromToken(s.AccessToken)
	}
	return s, true
}

// ClearSession removes all persisted session state.
func (m *Manager) ClearSession(ctx context.Context) error {
	for _, key := range []string{accessTokenKey, refreshTokenKey, sessionExpiryKey} {
		if err := m.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	m.logger.Debug("session cleared")
	return nil
}

// ShouldRefresh reports whether the session is close enough to expiry
// that a refresh is due. An unknown expiry always warrants a refresh.
func (m *Manager) ShouldRefresh(expiresAt time.Time) bool {
	if expiresAt.IsZero() {
		return true
	}
	return expiresAt.Sub(m.nowFn()) < refreshWindow
}

// ExecuteRefresh runs refresh under the refresh lock. Attempts within
// refreshCooldown of the previous one are skipped, and the cooldown is
// re-checked after the lock is acquired because a waiter usually
// arrives right behind a refresh that just completed. A successful
// refresh is persisted before returning.
func (m *Manager) ExecuteRefresh(ctx context.Context, refresh RefreshFunc) (Session, bool) {
	if m.inCooldown() {
		m.logger.Debug("session refresh in cooldown")
		return Session{}, false
	}

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if m.inCooldown() {
		m.logger.Debug("session refresh skipped, refresh just completed")
		return Session{}, false
	}

	m.lastRefreshNS.Store(m.nowFn().UnixNano())
	s, err := refresh(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("session refresh failed")
		return Session{}, false
	}
	if err := m.StoreSession(ctx, s); err != nil {
		m.logger.WithError(err).Warn("refreshed session not persisted")
	}
	m.logger.Info("session refreshed", logpkg.Time("expires_at", s.ExpiresAt))
	return s, true
}

// IsAuthenticated reports whether a stored, unexpired session exists.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.Current(ctx)
	return ok
}

// Current returns the stored session when it is usable for delivery.
func (m *Manager) Current(ctx context.Context) (Session, bool) {
	s, ok := m.LoadStoredSession(ctx)
	if !ok {
		return Session{}, false
	}
	if s.Expired(m.nowFn()) {
		m.logger.Debug("stored session expired", logpkg.Time("expires_at", s.ExpiresAt))
		return Session{}, false
	}
	return s, true
}

// getOptional reads a key, mapping "missing" to an empty value.
func (m *Manager) getOptional(ctx context.Context, key string) ([]byte, error) {
	v, err := m.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (m *Manager) inCooldown() bool {
	last := m.lastRefreshNS.Load()
	return last != 0 && m.nowFn().Sub(time.Unix(0, last)) < refreshCooldown
}
