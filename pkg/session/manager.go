package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
	"github.com/vitalpath/authkit/pkg/refresh"
	"github.com/vitalpath/authkit/pkg/storage"
	"github.com/vitalpath/authkit/pkg/strategy"
)

// Storage keys for persisted session material.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserSnapshot = "user"
	keyDeviceID     = "device_id"
)

const msgSessionExpired = "Your session has expired. Please sign in again."

// Manager is the session facade: it holds the authentication state,
// dispatches the flow strategies, persists tokens, and drives the
// proactive refresh scheduler.
type Manager struct {
	cfg        Config
	api        api.Client
	strategies *strategy.Registry
	scheduler  *refresh.Scheduler
	store      storage.Store
	log        *slog.Logger
	deviceID   string

	mu            sync.RWMutex
	state         State
	pendingTwoFA  string // challenge session id from a login that needs a second factor
	bootstrapping atomic.Bool

	subMu  sync.Mutex
	subs   map[chan State]struct{}
	closed bool
}

// New creates a Manager. Either a base URL (via WithBaseURL/WithConfig)
// or an explicit API client is required.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:  Config{Issuer: "VitalPath", Refresh: refresh.DefaultConfig()},
		log:  slog.Default(),
		subs: make(map[chan State]struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = storage.NewMemoryStore()
	}

	if m.api == nil {
		client, err := api.New(m.cfg.BaseURL, api.WithTokenSource(m.AccessToken))
		if err != nil {
			return nil, errors.Join(ErrNoAPIEndpoint, err)
		}
		m.api = client
	} else if hc, ok := m.api.(*api.HTTPClient); ok {
		hc.SetTokenSource(m.AccessToken)
	}

	m.deviceID = m.loadDeviceID()

	m.strategies = strategy.NewRegistry(m.api,
		strategy.WithLogger(m.log),
		strategy.WithGoogleConfig(m.cfg.Google),
		strategy.WithIssuer(m.cfg.Issuer),
	)

	m.scheduler = refresh.NewScheduler(m.api, m.handleRotate, m.handleExpire,
		refresh.WithConfig(m.cfg.Refresh),
		refresh.WithLogger(m.log),
		refresh.WithDeviceID(m.deviceID),
	)

	return m, nil
}

// Bootstrap restores a persisted session, if a non-expired access token
// exists. On success it re-arms the refresh scheduler and refreshes the
// user snapshot from the server; a token the server no longer accepts
// tears the session down. Call once at application start, before the
// first navigation settles.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.bootstrapping.Store(true)
	defer m.bootstrapping.Store(false)

	token, err := m.store.Get(ctx, keyAccessToken)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	if tokenExpired(token) {
		m.log.Info("persisted token expired, clearing session")
		m.resetAll(ctx)
		return nil
	}

	refreshToken, _ := m.store.Get(ctx, keyRefreshToken)

	var user *auth.User
	if snapshot, err := m.store.Get(ctx, keyUserSnapshot); err == nil {
		user = decodeUser(snapshot)
	}

	m.installSession(ctx, token, refreshToken, user, false)
	m.log.Info("session restored from storage")

	// Refresh the user snapshot; a 401 means the token was revoked
	// server-side and the restored session is not real.
	me, err := m.api.Me(ctx)
	if err != nil {
		if api.StatusOf(err) == 401 {
			m.log.Warn("persisted token rejected by server, logging out")
			m.resetAll(ctx)
		}
		return nil
	}
	if me.Success && me.User != nil {
		m.setUser(ctx, me.User)
	}

	return nil
}

// Bootstrapping reports whether the startup restore is still in
// progress. Route guards allow navigation transiently while it is, so a
// hard reload does not bounce an about-to-be-authenticated user to the
// login page.
func (m *Manager) Bootstrapping() bool { return m.bootstrapping.Load() }

// Login runs the password login flow.
func (m *Manager) Login(ctx context.Context, creds strategy.LoginCredentials) (*auth.Result, error) {
	return m.run(ctx, auth.FlowLogin, creds)
}

// Register runs the registration flow.
func (m *Manager) Register(ctx context.Context, data strategy.RegisterData) (*auth.Result, error) {
	return m.run(ctx, auth.FlowRegister, data)
}

// VerifyTwoFactor completes a pending two-factor challenge. When the
// input has no session id, the one captured from the login response is
// used; with neither, ErrNoPendingChallenge is returned before any
// network call.
func (m *Manager) VerifyTwoFactor(ctx context.Context, input strategy.TwoFactorInput) (*auth.Result, error) {
	if input.SessionID == "" {
		m.mu.RLock()
		input.SessionID = m.pendingTwoFA
		m.mu.RUnlock()
	}
	if input.SessionID == "" {
		return nil, ErrNoPendingChallenge
	}
	return m.run(ctx, auth.FlowTwoFactor, input)
}

// SetupTwoFactor begins two-factor enrollment for the given method. The
// result's Metadata carries the secret, QR image and backup codes.
func (m *Manager) SetupTwoFactor(ctx context.Context, method string) (*auth.Result, error) {
	input := strategy.TwoFactorInput{Setup: true, Method: method}
	if user := m.CurrentUser(); user != nil {
		input.AccountEmail = user.Email
	}
	return m.run(ctx, auth.FlowTwoFactor, input)
}

// DisableTwoFactor turns off two-factor authentication, re-confirming
// the account password. Failures go through the same mapping as every
// other flow, so network and server errors surface with the shared
// user-facing messages.
func (m *Manager) DisableTwoFactor(ctx context.Context, password string) (*auth.Result, error) {
	result, err := m.run(ctx, auth.FlowTwoFactor, strategy.TwoFactorInput{Disable: true, Password: password})
	if err != nil || result == nil || !result.Success {
		return result, err
	}

	m.mu.Lock()
	m.state.TwoFactorEnabled = false
	if m.state.User != nil {
		user := *m.state.User
		user.TwoFactorEnabled = false
		m.state.User = &user
	}
	user := m.state.User
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.persistUser(ctx, user)
	m.notify(snapshot)
	result.User = user
	return result, nil
}

// ForgotPassword triggers a password reset email.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (*auth.Result, error) {
	return m.run(ctx, auth.FlowForgotPassword, strategy.ForgotPasswordInput{Email: email})
}

// LoginWithGoogle exchanges a Google credential for application tokens.
func (m *Manager) LoginWithGoogle(ctx context.Context, input strategy.GoogleInput) (*auth.Result, error) {
	return m.run(ctx, auth.FlowGoogle, input)
}

// GoogleAuthorizationURL builds the Google consent page URL for the
// given CSRF state. Pure; no network call.
func (m *Manager) GoogleAuthorizationURL(state string) string {
	s, ok := m.strategies.Get(auth.FlowGoogle)
	if !ok {
		return ""
	}
	return s.(*strategy.GoogleStrategy).AuthorizationURL(state)
}

// Authenticate dispatches the first strategy that accepts the input,
// for callers that do not know the flow ahead of time.
func (m *Manager) Authenticate(ctx context.Context, input strategy.Credentials) (*auth.Result, error) {
	m.beginOperation()
	defer m.endOperation()

	result, err := m.strategies.ExecuteAuto(ctx, input)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}
	m.applyResult(ctx, result)
	return result, nil
}

// Logout ends the session: state, persisted tokens and any pending
// refresh schedule are all cleared. Idempotent. A refresh already in
// flight resolves into a stale epoch and is discarded.
func (m *Manager) Logout(ctx context.Context) {
	m.resetAll(ctx)
	m.log.Info("logged out")
}

// Close cancels the refresh schedule and closes all subscriber
// channels. The manager must not be used afterwards.
func (m *Manager) Close() error {
	m.scheduler.Cancel()

	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for ch := range m.subs {
		close(ch)
	}
	m.subs = nil
	return nil
}

// --- synchronous accessors ---

// IsAuthenticated reports the current authenticated flag with no
// asynchronous delay.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsAuthenticated
}

// RequiresTwoFactor reports whether a two-factor challenge is pending.
func (m *Manager) RequiresTwoFactor() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.RequiresTwoFactor
}

// CurrentUser returns the current user, or nil. The value is read-only.
func (m *Manager) CurrentUser() *auth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.User
}

// AccessToken returns the current access token, or "".
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AccessToken
}

// StateSnapshot bundles every observable field into one read-only value.
func (m *Manager) StateSnapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe returns a channel that receives a state snapshot after
// every transition, and a cancel function releasing the subscription.
// Slow consumers never block a transition: the buffer holds the latest
// snapshot and older ones are dropped.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.subMu.Lock()
	if m.closed {
		m.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// --- transitions ---

// run is the shared facade path: mark loading and clear the previous
// error, dispatch the named strategy, feed the result into the state,
// clear loading. Transport errors are mirrored into LastError and
// returned, so reactive and imperative observers agree.
func (m *Manager) run(ctx context.Context, flow string, input strategy.Credentials) (*auth.Result, error) {
	m.beginOperation()
	defer m.endOperation()

	result, err := m.strategies.Execute(ctx, flow, input)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}

	m.applyResult(ctx, result)
	return result, nil
}

// applyResult funnels a strategy result into the state store.
//
// A successful result with a token transitions to authenticated; the
// user may be absent, in which case the state stays authenticated with
// a nil user until a profile fetch fills it in. A requires-two-factor
// result records the pending challenge and leaves the session
// unauthenticated. A failed result records the error and leaves
// authentication untouched.
func (m *Manager) applyResult(ctx context.Context, result *auth.Result) {
	switch {
	case result == nil:
		return

	case result.Success && result.Token != "" && !result.RequiresTwoFactor:
		m.installSession(ctx, result.Token, result.RefreshToken, result.User, true)

	case result.Success && result.RequiresTwoFactor:
		m.mu.Lock()
		m.state.IsAuthenticated = false
		m.state.AccessToken = ""
		m.state.RefreshToken = ""
		m.state.RequiresTwoFactor = true
		if result.User != nil {
			m.state.User = result.User
		}
		m.pendingTwoFA = result.SessionID
		snapshot := m.snapshotLocked()
		m.mu.Unlock()
		m.notify(snapshot)

	case !result.Success:
		m.setError(result.Error)
	}
}

// installSession makes the token pair current: state, persisted
// storage, and the refresh schedule all move together.
func (m *Manager) installSession(ctx context.Context, accessToken, refreshToken string, user *auth.User, persist bool) {
	m.mu.Lock()
	m.state.IsAuthenticated = true
	m.state.AccessToken = accessToken
	m.state.RefreshToken = refreshToken
	m.state.RequiresTwoFactor = false
	m.state.LastError = ""
	if user != nil {
		m.state.User = user
		m.state.TwoFactorEnabled = user.TwoFactorEnabled
	}
	m.pendingTwoFA = ""
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if persist {
		m.persistTokens(ctx, accessToken, refreshToken)
		if user != nil {
			m.persistUser(ctx, user)
		}
	}

	m.scheduleRefresh(accessToken, refreshToken)
	m.notify(snapshot)
}

// handleRotate installs the renewed token pair from a scheduled
// refresh. The user stays as-is; only tokens move.
//
// The whole installation runs under m.mu with the epoch re-checked
// inside, so a logout racing the rotation either lands before it (the
// epoch moved, nothing is applied) or after it (resetAll clears what
// was applied). Persisting inside the lock keeps storage in the same
// order.
func (m *Manager) handleRotate(epoch uint64, accessToken, refreshToken string) {
	m.mu.Lock()
	if !m.scheduler.StillCurrent(epoch) || !m.state.IsAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state.AccessToken = accessToken
	m.state.RefreshToken = refreshToken
	m.persistTokens(context.Background(), accessToken, refreshToken)
	m.scheduleRefresh(accessToken, refreshToken)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot)
}

// handleExpire is the scheduler's terminal failure path: the session is
// over, exactly once.
func (m *Manager) handleExpire(cause error) {
	m.log.Warn("session expired", "cause", cause)
	m.resetAll(context.Background())
	m.setError(msgSessionExpired)
}

func (m *Manager) scheduleRefresh(accessToken, refreshToken string) {
	if refreshToken == "" {
		return
	}
	expiry, err := TokenExpiry(accessToken)
	if err != nil {
		m.log.Warn("cannot schedule proactive refresh", "error", err)
		return
	}
	m.scheduler.Schedule(refreshToken, expiry)
}

// resetAll clears all fields to the unauthenticated default, removes
// persisted session material, and cancels any pending refresh schedule.
// Idempotent. Cancel and the storage removals happen under m.mu so the
// teardown serializes with a rotation being installed: whichever runs
// second sees the other's effects in full, never a torn mix.
func (m *Manager) resetAll(ctx context.Context) {
	m.mu.Lock()
	m.scheduler.Cancel()
	m.state = State{}
	m.pendingTwoFA = ""
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUserSnapshot} {
		if err := m.store.Remove(ctx, key); err != nil {
			m.log.Warn("could not clear persisted session key", "key", key, "error", err)
		}
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot)
}

func (m *Manager) setUser(ctx context.Context, user *auth.User) {
	m.mu.Lock()
	m.state.User = user
	m.state.TwoFactorEnabled = user.TwoFactorEnabled
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.persistUser(ctx, user)
	m.notify(snapshot)
}

func (m *Manager) beginOperation() {
	m.mu.Lock()
	m.state.IsLoading = true
	m.state.LastError = ""
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snapshot)
}

func (m *Manager) endOperation() {
	m.mu.Lock()
	m.state.IsLoading = false
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snapshot)
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.state.LastError = msg
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snapshot)
}

func (m *Manager) snapshotLocked() State { return m.state }

// notify fans the snapshot out to subscribers without ever blocking a
// transition: each channel keeps only the latest value.
func (m *Manager) notify(snapshot State) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for ch := range m.subs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// --- persistence helpers ---

func (m *Manager) persistTokens(ctx context.Context, accessToken, refreshToken string) {
	if err := m.store.Set(ctx, keyAccessToken, accessToken); err != nil {
		m.log.Warn("could not persist access token", "error", err)
	}
	if refreshToken != "" {
		if err := m.store.Set(ctx, keyRefreshToken, refreshToken); err != nil {
			m.log.Warn("could not persist refresh token", "error", err)
		}
	}
}

func (m *Manager) persistUser(ctx context.Context, user *auth.User) {
	if user == nil {
		return
	}
	if err := m.store.Set(ctx, keyUserSnapshot, encodeUser(user)); err != nil {
		m.log.Warn("could not persist user snapshot", "error", err)
	}
}

func (m *Manager) loadDeviceID() string {
	ctx := context.Background()
	if id, err := m.store.Get(ctx, keyDeviceID); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	if err := m.store.Set(ctx, keyDeviceID, id); err != nil {
		m.log.Warn("could not persist device id", "error", err)
	}
	return id
}
