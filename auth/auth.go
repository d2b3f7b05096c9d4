/*
auth.go - credential handling and token issuance

PURPOSE:
  Wraps the users table with bcrypt password verification and HS256 JWT
  issuance. The HTTP layer only ever sees this service and the token
  authenticator; password hashes never leave the package.

ROLES:
  admin  - full read/write, user management
  user   - read/write on leaves, holidays and events
  viewer - read only

BOOTSTRAP:
  On startup Bootstrap guarantees a default admin account exists so a fresh
  database is usable immediately. The default password comes from
  configuration and should be rotated after first login.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

const DefaultAdminUsername = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrWeakPassword       = errors.New("password too short")
)

// MinPasswordLength applies to registration and password changes, not to
// login, so accounts created under older rules can still sign in.
const MinPasswordLength = 6

var validRoles = map[string]bool{"admin": true, "user": true, "viewer": true}

// Service authenticates users and issues signed tokens.
type Service struct {
	store    *sqlite.Store
	tokens   *jwtauth.JWTAuth
	tokenTTL time.Duration
}

func NewService(store *sqlite.Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		tokens:   jwtauth.New("HS256", []byte(secret), nil),
		tokenTTL: tokenTTL,
	}
}

// TokenAuth exposes the verifier for the HTTP middleware chain.
func (s *Service) TokenAuth() *jwtauth.JWTAuth {
	return s.tokens
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string
	UserID    string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// Login verifies the credentials and issues a token. The error for a missing
// user and a wrong password is identical so usernames cannot be probed.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("auth: looking up %q: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	_, token, err := s.tokens.Encode(map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     u.Role,
		"exp":      expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, fmt.Errorf("auth: signing token: %w", err)
	}

	return Session{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		ExpiresAt: expiresAt,
	}, nil
}

// Register creates a new account. Only the HTTP layer restricts who may call
// this; the service itself just enforces credential quality and role validity.
func (s *Service) Register(ctx context.Context, username, password, role string, employeeID *string) (sqlite.User, error) {
	if !validRoles[role] {
		return sqlite.User{}, fmt.Errorf("%q: %w", role, ErrInvalidRole)
	}
	if len(password) < MinPasswordLength {
		return sqlite.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return sqlite.User{}, fmt.Errorf("auth: hashing password: %w", err)
	}

	return s.store.CreateUser(ctx, sqlite.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		EmployeeID:   employeeID,
	})
}

// ChangePassword rehashes and stores a new password after verifying the
// current one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hashing password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, u.ID, string(hash))
}

// ResetPassword sets a new password for a user without checking the old
// one. Reserved for administrators.
func (s *Service) ResetPassword(ctx context.Context, userID, next string) error {
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hashing password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, userID, string(hash))
}

// Bootstrap ensures the default admin account exists. It is idempotent and
// never overwrites an existing account.
func (s *Service) Bootstrap(ctx context.Context, adminPassword string) error {
	_, err := s.store.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("auth: bootstrap lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hashing bootstrap password: %w", err)
	}
	_, err = s.store.CreateUser(ctx, sqlite.User{
		Username:     DefaultAdminUsername,
		PasswordHash: string(hash),
		Role:         "admin",
	})
	return err
}

// ClaimsFromContext pulls the identity claims set by the jwtauth middleware.
func ClaimsFromContext(ctx context.Context) (userID, username, role string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", "", err
	}
	userID, _ = claims["user_id"].(string)
	username, _ = claims["username"].(string)
	role, _ = claims["role"].(string)
	if userID == "" || role == "" {
		return "", "", "", errors.New("token missing identity claims")
	}
	return userID, username, role, nil
}
