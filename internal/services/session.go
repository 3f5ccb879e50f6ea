// Package services orchestrates the domain operations across storage,
// messaging and caching.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pocketpal/internal/core"
	"pocketpal/internal/log"
	"pocketpal/internal/storage"
)

// SessionService handles account lifecycle and token-based sessions.
type SessionService struct {
	store  storage.Store
	logger *log.Logger
}

func NewSessionService(store storage.Store, logger *log.Logger) *SessionService {
	return &SessionService{
		store:  store,
		logger: logger.WithComponent(log.ComponentSession),
	}
}

// Signup registers a new account and opens a session for it. The
// contact (email or phone) must not be registered yet. An empty
// password creates a passwordless account.
func (s *SessionService) Signup(ctx context.Context, name, contact, password string) (*core.User, *core.Session, error) {
	name = strings.TrimSpace(name)
	contact = strings.TrimSpace(contact)

	u := &core.User{
		ID:      uuid.NewString(),
		Name:    name,
		Contact: contact,
	}
	if err := u.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := s.store.GetUserByContact(ctx, contact); err == nil {
		return nil, nil, core.ErrContactTaken
	} else if !errors.Is(err, core.ErrUserNotFound) {
		return nil, nil, fmt.Errorf("lookup contact: %w", err)
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	u.CreatedAt = time.Now().UTC()
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "User signed up", log.FieldUserID, u.ID)
	return u, sess, nil
}

// Login authenticates by contact and password and opens a session.
// Both an unknown contact and a wrong password surface as
// ErrInvalidCredentials so login attempts cannot probe for accounts.
func (s *SessionService) Login(ctx context.Context, contact, password string) (*core.User, *core.Session, error) {
	u, err := s.store.GetUserByContact(ctx, strings.TrimSpace(contact))
	if errors.Is(err, core.ErrUserNotFound) {
		return nil, nil, core.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup contact: %w", err)
	}

	if u.PasswordHash == "" {
		if password != "" {
			return nil, nil, core.ErrInvalidCredentials
		}
	} else if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, core.ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, u.ID)
	return u, sess, nil
}

// Logout deletes the session. Logging out an already-expired token is
// not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Restore resolves a session token back to its user, for rehydrating a
// client on reload. Returns core.ErrSessionNotFound for unknown tokens.
func (s *SessionService) Restore(ctx context.Context, token string) (*core.User, error) {
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", token, err)
	}
	return u, nil
}

// UpdateSettings changes the user's monthly pocket money and savings
// goal percent. The percent must lie in [0, 100]; pocket money may be
// zero but not negative.
func (s *SessionService) UpdateSettings(ctx context.Context, userID string, pocketMoney core.Money, savingsPercent int) error {
	if savingsPercent < 0 || savingsPercent > 100 {
		return core.ErrInvalidPercent
	}
	if pocketMoney.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.store.UpdateUserSettings(ctx, userID, pocketMoney, savingsPercent); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Settings updated",
		log.FieldUserID, userID,
		log.FieldAmountCents, pocketMoney.Cents,
		"savings_percent", savingsPercent)
	return nil
}

func (s *SessionService) openSession(ctx context.Context, userID string) (*core.Session, error) {
	sess := &core.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}
