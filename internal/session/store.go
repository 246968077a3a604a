package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrNoSession is returned when an operation needs an authenticated session.
var ErrNoSession = errors.New("no active session")

// Store is the single source of truth for who is logged in. The token and
// user are always set or cleared together.
type Store struct {
	storage   Storage
	logger    *zap.Logger
	onSignOut func()

	mu    sync.RWMutex
	token string
	user  *User
}

// Option customizes the store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSignInRedirect registers the navigation performed after logout.
func WithSignInRedirect(fn func()) Option {
	return func(s *Store) {
		s.onSignOut = fn
	}
}

// NewStore builds an unauthenticated store. Call Restore to rehydrate it.
func NewStore(storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		storage: storage,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the bearer token when a session is active.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// User returns the authenticated profile.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// SetToken overwrites the token of the active session. An empty token
// clears the session and its persisted state without navigating.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		s.mu.Lock()
		s.token, s.user = "", nil
		s.mu.Unlock()
		return s.clearStorage(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrNoSession
	}
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.token = token
	return nil
}

// Login records a successful authentication and persists it.
func (s *Store) Login(ctx context.Context, token string, user User) error {
	if token == "" {
		return errors.New("token is required")
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.storage.Set(ctx, UserKey, string(payload)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	s.logger.Info("session started", zap.String("user_id", user.ID))
	return nil
}

// Logout clears the session and persisted state, then triggers the sign-in
// redirect. In-memory state is cleared even if storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()

	err := s.clearStorage(ctx)
	s.logger.Info("session ended")
	if s.onSignOut != nil {
		s.onSignOut()
	}
	return err
}

// Restore rehydrates the session from storage. A half-present or corrupt
// session is cleared and the store stays unauthenticated.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()

	token, hasToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	rawUser, hasUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("read user: %w", err)
	}

	if !hasToken && !hasUser {
		return nil
	}
	if !hasToken || token == "" || !hasUser {
		s.logger.Warn("discarding incomplete persisted session")
		return s.clearStorage(ctx)
	}

	user, err := ParseUser(rawUser)
	if err != nil {
		s.logger.Warn("discarding corrupt persisted session", zap.Error(err))
		return s.clearStorage(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// TokenExpiry reads the exp claim when the token happens to be a JWT. The
// signature is not verified; the result is informational only.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *Store) clearStorage(ctx context.Context) error {
	if err := s.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}
