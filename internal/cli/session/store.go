package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// Storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Reasons recorded when a session is cleared.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonVerifyFailed = "verify_failed"
	ReasonOrphaned     = "orphaned"
)

// VerifyResult is the outcome of a server-side token check.
type VerifyResult struct {
	// Valid is false when the server answered but rejected the token.
	Valid bool
	// User is the fresh profile, when the server returned one.
	User *model.Profile
}

// VerifyFunc asks the server whether the current token is still valid.
type VerifyFunc func(ctx context.Context) (VerifyResult, error)

// ClearObserver is told about every clear.
type ClearObserver interface {
	RecordSessionClear(reason string)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClearObserver sets the observer notified on clears.
func WithClearObserver(o ClearObserver) Option {
	return func(s *Store) { s.observer = o }
}

// Store is the single source of truth for the current session. Token and
// user are always held together: both present or both absent.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    *model.Profile

	log      logger.Logger
	observer ClearObserver
}

// NewStore creates a Store over storage. Call Load to pick up a
// persisted session.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, log: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted session and, if complete, makes it active
// without contacting the server. It reports whether a session was found.
// Entries that cannot be read back are discarded; other storage errors
// are returned.
func (s *Store) Load(ctx context.Context) (bool, error) {
	token, tokErr := s.storage.Get(ctx, KeyToken)
	raw, userErr := s.storage.Get(ctx, KeyUser)

	for _, err := range []error{tokErr, userErr} {
		if errors.Is(err, ErrUnreadable) {
			s.log.Warn("stored session is unreadable; clearing session", "error", err)
			return false, s.ClearReason(ctx, ReasonOrphaned)
		}
	}
	for _, err := range []error{tokErr, userErr} {
		if err != nil && !errors.Is(err, ErrNotFound) {
			return false, fmt.Errorf("load session: %w", err)
		}
	}

	if tokErr != nil || userErr != nil || len(token) == 0 {
		if tokErr == nil || userErr == nil {
			s.log.Debug("removing orphaned session entry")
			return false, s.ClearReason(ctx, ReasonOrphaned)
		}
		return false, nil
	}

	var user model.Profile
	if err := json.Unmarshal(raw, &user); err != nil {
		s.log.Warn("stored profile is unreadable; clearing session", "error", err)
		return false, s.ClearReason(ctx, ReasonOrphaned)
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = &user
	s.mu.Unlock()
	return true, nil
}

// Revalidate checks the active session with verify. A transport failure or
// a rejection clears the session; success refreshes the stored profile.
// Without a token it is a no-op.
func (s *Store) Revalidate(ctx context.Context, verify VerifyFunc) error {
	if s.Token() == "" {
		return nil
	}

	res, err := verify(ctx)
	if err != nil || !res.Valid {
		if clearErr := s.ClearReason(ctx, ReasonVerifyFailed); clearErr != nil {
			return clearErr
		}
		if err != nil {
			return fmt.Errorf("verify session: %w", err)
		}
		return ErrRejected
	}

	if res.User != nil {
		return s.Update(ctx, *res.User)
	}
	return nil
}

// ErrRejected is returned by Revalidate when the server rejected the token.
var ErrRejected = errors.New("session: token rejected")

// LoadAndVerify loads the persisted session and revalidates it in the
// background. The session is usable as soon as this returns; the channel
// yields the verification outcome and is then closed.
func (s *Store) LoadAndVerify(ctx context.Context, verify VerifyFunc) (bool, <-chan error) {
	done := make(chan error, 1)

	ok, err := s.Load(ctx)
	if err != nil || !ok {
		done <- err
		close(done)
		return false, done
	}

	go func() {
		defer close(done)
		done <- s.Revalidate(ctx, verify)
	}()
	return true, done
}

// Set stores a new session after login or registration.
func (s *Store) Set(ctx context.Context, token string, user model.Profile) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Put(ctx, map[string][]byte{KeyToken: []byte(token), KeyUser: raw}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.token = token
	s.user = &user
	return nil
}

// Update replaces the cached profile. The token is untouched.
func (s *Store) Update(ctx context.Context, user model.Profile) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return errors.New("session: not authenticated")
	}
	if err := s.storage.Put(ctx, map[string][]byte{KeyUser: raw}); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	s.user = &user
	return nil
}

// Clear ends the session on explicit logout.
func (s *Store) Clear(ctx context.Context) error {
	return s.ClearReason(ctx, ReasonLogout)
}

// ClearReason removes token and user from memory and storage. Clearing an
// already empty session is harmless.
func (s *Store) ClearReason(ctx context.Context, reason string) error {
	s.mu.Lock()
	had := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	err := s.storage.Delete(ctx, KeyToken, KeyUser)
	s.mu.Unlock()

	if had {
		s.log.Debug("session cleared", "reason", reason)
		if s.observer != nil {
			s.observer.RecordSessionClear(reason)
		}
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached profile, or nil.
func (s *Store) User() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a profile is cached.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Expiry returns the token's exp claim, when it has one.
func (s *Store) Expiry() (time.Time, bool) {
	return TokenExpiry(s.Token())
}

// IsAdmin reports whether the cached profile has the admin role.
func (s *Store) IsAdmin() bool {
	return s.User().IsAdmin()
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
