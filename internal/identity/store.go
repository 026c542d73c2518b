// Package identity implements account registration, credential
// verification, and the persisted current-session pointer.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/taskify/internal/models"
	"github.com/benvon/taskify/internal/storage"
)

var (
	// ErrDuplicateAccount is returned when registering with an email that
	// already has an account.
	ErrDuplicateAccount = errors.New("email already registered")
	// ErrInvalidCredentials is returned on any login mismatch. It does not
	// distinguish an unknown email from a wrong secret.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store owns the user table and the single current-session pointer. Like
// the task engine, it mirrors its table in memory and rewrites it whole on
// every mutation.
type Store struct {
	mu     sync.RWMutex
	store  storage.Store
	logger *zap.Logger
	users  map[uuid.UUID]*models.User
	now    func() time.Time
}

// NewStore creates an identity store backed by store, loading any persisted
// users.
func NewStore(ctx context.Context, store storage.Store, logger *zap.Logger) (*Store, error) {
	s := &Store{
		store:  store,
		logger: logger,
		users:  make(map[uuid.UUID]*models.User),
		now:    time.Now,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, found, err := s.store.Get(ctx, storage.KeyUsers)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	if !found || raw == "" {
		return nil
	}

	var table map[uuid.UUID]*models.User
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return fmt.Errorf("failed to parse user table: %w", err)
	}
	s.users = table
	return nil
}

// persist writes the full user table back to the store. Caller must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.users)
	if err != nil {
		return fmt.Errorf("failed to marshal user table: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUsers, string(data)); err != nil {
		return fmt.Errorf("failed to persist users: %w", err)
	}
	return nil
}

// Register creates a new account. The email must not already exist
// (case-sensitive exact match). Returns the secretless session view.
func (s *Store) Register(ctx context.Context, name, email, secret string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return nil, ErrDuplicateAccount
		}
	}

	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Secret:    secret,
		CreatedAt: s.now(),
	}
	s.users[user.ID] = user
	if err := s.persist(ctx); err != nil {
		delete(s.users, user.ID)
		return nil, err
	}

	s.logger.Info("user_registered", zap.String("user_id", user.ID.String()))
	session := user.Session()
	return &session, nil
}

// Login scans for an exact (email, secret) match and returns the session
// view. Any mismatch surfaces as ErrInvalidCredentials.
func (s *Store) Login(_ context.Context, email, secret string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email && user.Secret == secret {
			session := user.Session()
			return &session, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// SetCurrentSession persists session as the current-session pointer, or
// clears it when session is nil.
func (s *Store) SetCurrentSession(ctx context.Context, session *models.Session) error {
	if session == nil {
		if err := s.store.Remove(ctx, storage.KeyCurrentUser); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyCurrentUser, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// CurrentSession returns the persisted session pointer, or nil when no one
// is signed in.
func (s *Store) CurrentSession(ctx context.Context) (*models.Session, error) {
	raw, found, err := s.store.Get(ctx, storage.KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &session, nil
}

// Logout clears the current-session pointer.
func (s *Store) Logout(ctx context.Context) error {
	return s.SetCurrentSession(ctx, nil)
}
