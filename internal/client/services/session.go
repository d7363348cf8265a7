// Package services contains application services for the SANes client.
// This file defines the session cache manager: it restores the persisted
// session on start, revalidates it against the server and keeps the
// in-memory view and the persisted pair consistent across login, register,
// logout and profile updates.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/dmitrijs2005/sanes/internal/client/client"
	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/client/repositories/session"
	"github.com/dmitrijs2005/sanes/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Snapshot is the observable session state.
type Snapshot struct {
	CurrentUser *models.User
	IsLoading   bool
}

func (s Snapshot) IsAuthenticated() bool {
	return s.CurrentUser != nil
}

// RevalidationPolicy decides, for an error raised while revalidating a
// restored session, whether the session is dropped.
type RevalidationPolicy func(err error) bool

// InvalidateOnAnyError drops the session whatever went wrong, including
// network failures.
func InvalidateOnAnyError(error) bool { return true }

// InvalidateOnUnauthorizedOnly keeps the cached session unless the server
// rejected the token.
func InvalidateOnUnauthorizedOnly(err error) bool {
	return errors.Is(err, client.ErrUnauthorized)
}

type SessionOption func(*SessionManager)

func WithRevalidationPolicy(p RevalidationPolicy) SessionOption {
	return func(m *SessionManager) {
		if p != nil {
			m.policy = p
		}
	}
}

// SessionManager owns the in-memory session. It is safe for concurrent use;
// mutating operations are applied one at a time and identical overlapping
// calls share one execution.
type SessionManager struct {
	api    client.SessionAPI
	store  session.Store
	log    logging.Logger
	policy RevalidationPolicy

	group singleflight.Group
	// serializes mutating operations
	opMu sync.Mutex

	mu        sync.RWMutex
	user      *models.User
	booting   bool
	inFlight  int
	lastErr   error
	subs      map[int]func(Snapshot)
	nextSubID int
}

// NewSessionManager returns a manager in the Bootstrapping state: loading,
// no user. Call Bootstrap to restore the persisted session.
func NewSessionManager(api client.SessionAPI, store session.Store, log logging.Logger, opts ...SessionOption) *SessionManager {
	if log == nil {
		log = logging.NewNop()
	}
	m := &SessionManager{
		api:     api,
		store:   store,
		log:     log.With("component", "session"),
		policy:  InvalidateOnAnyError,
		booting: true,
		subs:    map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *SessionManager) snapshotLocked() Snapshot {
	return Snapshot{
		CurrentUser: m.user.Clone(),
		IsLoading:   m.booting || m.inFlight > 0,
	}
}

func (m *SessionManager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

func (m *SessionManager) IsLoading() bool {
	return m.Snapshot().IsLoading
}

// LastError returns the error of the most recent failed operation, or nil
// when the last operation succeeded.
func (m *SessionManager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Subscribe registers fn to be called with a fresh snapshot after every state
// change. fn runs on the goroutine that made the change and must not block.
// The returned func unsubscribes.
func (m *SessionManager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// update applies fn to the state under the lock and notifies subscribers.
func (m *SessionManager) update(fn func()) {
	m.mu.Lock()
	fn()
	snap := m.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

func (m *SessionManager) setUser(u *models.User) {
	m.update(func() { m.user = u.Clone() })
}

func (m *SessionManager) setLastErr(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// run executes fn as one serialized operation. Calls sharing a non-empty key
// while one is in flight get the result of that one.
func (m *SessionManager) run(ctx context.Context, key string, fn func(ctx context.Context) bool) bool {
	exec := func() bool {
		m.opMu.Lock()
		defer m.opMu.Unlock()

		m.update(func() { m.inFlight++ })
		defer m.update(func() { m.inFlight-- })

		return fn(ctx)
	}

	if key == "" {
		return exec()
	}
	v, _, _ := m.group.Do(key, func() (any, error) {
		return exec(), nil
	})
	return v.(bool)
}

func (m *SessionManager) fail(ctx context.Context, msg string, err error) {
	m.log.Warn(ctx, msg, "error", err)
	m.setLastErr(err)
}

// clearAll drops the in-memory user and the persisted session. It reports
// whether the store was cleared.
func (m *SessionManager) clearAll(ctx context.Context) bool {
	err := m.store.Clear(ctx)
	if err != nil {
		m.log.Error(ctx, "failed to clear stored session", "error", err)
		m.setLastErr(err)
	}
	m.setUser(nil)
	return err == nil
}

// Bootstrap restores the persisted session. A stored user is exposed
// immediately and then revalidated against the server; if revalidation fails
// and the policy says so, the session is dropped. Bootstrap never returns an
// error, failures end in the Unauthenticated state.
func (m *SessionManager) Bootstrap(ctx context.Context) {
	m.run(ctx, "bootstrap", func(ctx context.Context) bool {
		defer m.update(func() { m.booting = false })
		m.bootstrap(ctx)
		return true
	})
}

func (m *SessionManager) bootstrap(ctx context.Context) {
	token, cached, err := m.store.Load(ctx)
	if err != nil {
		m.fail(ctx, "stored session is unusable, clearing", err)
		m.clearAll(ctx)
		return
	}
	if token == "" {
		m.log.Debug(ctx, "no stored session")
		return
	}

	m.setUser(cached)

	fresh, err := m.api.FetchProfile(ctx)
	if err != nil {
		m.setLastErr(err)
		if m.policy(err) {
			m.log.Info(ctx, "session revalidation failed, logging out", "error", err)
			m.clearAll(ctx)
			return
		}
		m.log.Warn(ctx, "session revalidation failed, keeping cached user", "error", err)
		return
	}

	if err := m.store.SaveUser(ctx, fresh); err != nil {
		m.log.Error(ctx, "failed to refresh cached user", "error", err)
	}
	m.setUser(fresh)
	m.setLastErr(nil)
	m.log.Info(ctx, "session restored", "user_id", fresh.ID)
}

// Login authenticates creds and persists the session. It reports whether the
// user is now logged in; on failure nothing is written and the previous state
// is kept.
func (m *SessionManager) Login(ctx context.Context, creds models.Credentials) bool {
	key := "login/" + creds.Username + "/" + fingerprint(creds.Password)
	return m.run(ctx, key, func(ctx context.Context) bool {
		res, err := m.api.Login(ctx, creds)
		if err != nil {
			m.fail(ctx, "login failed", err)
			return false
		}
		return m.establish(ctx, res)
	})
}

// Register creates an account and, as the backend authenticates new users
// right away, persists the returned session like Login does.
func (m *SessionManager) Register(ctx context.Context, reg models.Registration) bool {
	key := "register/" + reg.Username + "/" + fingerprint(reg.Password1, reg.Password2, reg.Email)
	return m.run(ctx, key, func(ctx context.Context) bool {
		res, err := m.api.Register(ctx, reg)
		if err != nil {
			m.fail(ctx, "register failed", err)
			return false
		}
		return m.establish(ctx, res)
	})
}

func (m *SessionManager) establish(ctx context.Context, res *models.AuthResult) bool {
	if err := m.store.Save(ctx, res.Token, res.User); err != nil {
		m.fail(ctx, "failed to persist session", err)
		return false
	}
	m.setUser(res.User)
	m.setLastErr(nil)
	m.log.Info(ctx, "logged in", "user_id", res.User.ID)
	return true
}

// Logout ends the session. The server is told only when a user is logged in
// and its failure does not stop the local cleanup. Calling Logout again is a
// no-op apart from the local clear.
func (m *SessionManager) Logout(ctx context.Context) {
	m.run(ctx, "logout", func(ctx context.Context) bool {
		if m.IsAuthenticated() {
			if err := m.api.Logout(ctx); err != nil {
				m.log.Warn(ctx, "remote logout failed", "error", err)
			}
		}
		if m.clearAll(ctx) {
			m.setLastErr(nil)
		}
		m.log.Info(ctx, "logged out")
		return true
	})
}

// HandleUnauthorized drops the local session after another component saw the
// server reject the token.
func (m *SessionManager) HandleUnauthorized(ctx context.Context) {
	m.run(ctx, "unauthorized", func(ctx context.Context) bool {
		if !m.IsAuthenticated() {
			return true
		}
		m.log.Info(ctx, "token rejected by server, logging out")
		if m.clearAll(ctx) {
			m.setLastErr(nil)
		}
		return true
	})
}

// UpdateUser sends patch to the server and merges the fields it confirmed
// into the current user. Without a session it does nothing. It reports
// whether the merge was applied; on failure state and cache are unchanged
// and the cause is available through LastError. A rejected token ends the
// session.
func (m *SessionManager) UpdateUser(ctx context.Context, patch models.ProfilePatch) bool {
	return m.run(ctx, "", func(ctx context.Context) bool {
		current := m.CurrentUser()
		if current == nil {
			return false
		}

		confirmed, err := m.api.UpdateProfile(ctx, patch)
		if err != nil {
			m.fail(ctx, "profile update failed", err)
			if errors.Is(err, client.ErrUnauthorized) {
				m.clearAll(ctx)
			}
			return false
		}

		merged, err := models.MergeUser(current, confirmed)
		if err != nil {
			m.fail(ctx, "profile update returned an unusable user", err)
			return false
		}

		if err := m.store.SaveUser(ctx, merged); err != nil {
			m.fail(ctx, "failed to persist updated user", err)
			return false
		}

		m.setUser(merged)
		m.setLastErr(nil)
		m.log.Info(ctx, "profile updated", "user_id", merged.ID)
		return true
	})
}

// fingerprint keys duplicate-call collapsing without keeping secrets around.
func fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
