package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vitalpath/authkit/pkg/api"
)

// ErrRetriesExhausted is passed to the expire callback when every
// refresh attempt failed. The session is over at that point.
var ErrRetriesExhausted = errors.New("refresh.retries_exhausted")

// Client is the one endpoint the scheduler needs.
type Client interface {
	Refresh(ctx context.Context, req api.RefreshRequest) (*api.RefreshResponse, error)
}

// RotateFunc receives the renewed token pair together with the epoch
// captured when the attempt was scheduled. The installer must confirm
// the epoch with StillCurrent under its own state lock before applying
// the pair, so a logout racing the rotation cannot resurrect the
// session. Installing is expected to call Schedule again with the new
// expiry.
type RotateFunc func(epoch uint64, accessToken, refreshToken string)

// ExpireFunc is called exactly once per session when refresh retries
// are exhausted. The session must be torn down, not left half-alive.
type ExpireFunc func(cause error)

// Scheduler owns the single proactive-refresh timer for one session.
type Scheduler struct {
	client   Client
	cfg      Config
	deviceID string
	onRotate RotateFunc
	onExpire ExpireFunc
	log      *slog.Logger

	mu           sync.Mutex
	epoch        uint64
	timer        *time.Timer
	refreshToken string
	retriesLeft  int
	attempt      int
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithConfig overrides the default scheduling knobs.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) { s.cfg = cfg }
}

// WithLogger sets the scheduler's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDeviceID attaches a stable device identifier to refresh calls.
func WithDeviceID(id string) Option {
	return func(s *Scheduler) { s.deviceID = id }
}

// NewScheduler wires the scheduler to the refresh endpoint and the two
// session callbacks.
func NewScheduler(client Client, onRotate RotateFunc, onExpire ExpireFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		client:   client,
		cfg:      DefaultConfig(),
		onRotate: onRotate,
		onExpire: onExpire,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms the refresh timer for a token expiring at expiry,
// replacing any previously armed timer. At most one outstanding timer
// exists per scheduler at any time. The retry budget resets on every
// successful installation.
func (s *Scheduler) Schedule(refreshToken string, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	epoch := s.epoch
	s.stopTimerLocked()

	s.refreshToken = refreshToken
	s.retriesLeft = s.cfg.MaxRetries
	s.attempt = 0

	delay := time.Until(expiry) - s.cfg.LeadTime - s.jitter()
	if delay < 0 {
		delay = 0
	}

	s.log.Debug("refresh scheduled", "fire_in", delay, "expiry", expiry)
	s.timer = time.AfterFunc(delay, func() { s.fire(epoch) })
}

// Cancel disarms the timer and invalidates every outstanding
// completion. Idempotent. An in-flight refresh call is not interrupted,
// but its result will fail the epoch check and be discarded.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.stopTimerLocked()
	s.refreshToken = ""
}

// StillCurrent reports whether epoch is the scheduler's live epoch.
// Rotate installers call it while holding their state lock, making the
// staleness check atomic with applying the rotation.
func (s *Scheduler) StillCurrent(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch == s.epoch
}

// Pending reports whether a refresh timer is currently armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) fire(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	token := s.refreshToken
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	resp, err := s.client.Refresh(ctx, api.RefreshRequest{
		RefreshToken: token,
		DeviceID:     s.deviceID,
	})
	if err == nil && (resp == nil || !resp.Success || resp.AccessToken == "") {
		msg := "refresh rejected"
		if resp != nil && resp.Error != "" {
			msg = resp.Error
		}
		err = fmt.Errorf("refresh: %s", msg)
	}

	if err != nil {
		s.handleFailure(epoch, err)
		return
	}

	s.mu.Lock()
	if epoch != s.epoch {
		// Logged out (or re-scheduled) while the call was in flight;
		// applying the result would resurrect a dead session.
		s.mu.Unlock()
		return
	}
	newRefresh := resp.RefreshToken
	if newRefresh == "" {
		newRefresh = token
	}
	s.mu.Unlock()

	s.log.Debug("access token refreshed")
	// Called unlocked: installing the token re-enters Schedule. The
	// installer re-checks the epoch itself; this early check only saves
	// the callback when the result is already known stale.
	s.onRotate(epoch, resp.AccessToken, newRefresh)
}

func (s *Scheduler) handleFailure(epoch uint64, cause error) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}

	if s.retriesLeft > 0 {
		s.retriesLeft--
		delay := s.cfg.RetryBaseDelay << s.attempt
		s.attempt++
		s.log.Warn("refresh failed, retrying",
			"error", cause, "retry_in", delay, "retries_left", s.retriesLeft)
		s.timer = time.AfterFunc(delay, func() { s.fire(epoch) })
		s.mu.Unlock()
		return
	}

	// Bump the epoch so nothing else for this session can fire or apply.
	s.epoch++
	s.stopTimerLocked()
	s.refreshToken = ""
	s.mu.Unlock()

	s.log.Error("refresh retries exhausted, ending session", "error", cause)
	s.onExpire(errors.Join(ErrRetriesExhausted, cause))
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) jitter() time.Duration {
	if s.cfg.Jitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(s.cfg.Jitter)))
}
