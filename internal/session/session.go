// Package session signs a user in against the configured credentials and
// keeps the resulting session in the workspace database.
package session

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ideavault/internal/domain"
	"ideavault/internal/repo"
)

// Key is the kv key holding the active session.
const Key = "session"

const DefaultTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("not signed in")
)

// Session is the signed-in user. Token is empty when no signing secret is
// configured.
type Session struct {
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Manager struct {
	Repo     repo.Repo
	Email    string
	Password string
	Secret   string
	TTL      time.Duration
	Now      func() time.Time
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) ttl() time.Duration {
	if m.TTL > 0 {
		return m.TTL
	}
	return DefaultTTL
}

// Login checks the credentials and persists a fresh session.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if m.Email == "" || !strings.EqualFold(email, m.Email) ||
		subtle.ConstantTimeCompare([]byte(password), []byte(m.Password)) != 1 {
		return Session{}, ErrInvalidCredentials
	}
	now := m.now().UTC().Truncate(time.Second)
	s := Session{
		Email:     m.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl()),
	}
	if m.Secret != "" {
		token, err := m.sign(s)
		if err != nil {
			return Session{}, fmt.Errorf("sign session token: %w", err)
		}
		s.Token = token
	}
	data, err := json.Marshal(s)
	if err != nil {
		return Session{}, err
	}
	if err := m.Repo.PutValue(ctx, Key, string(data)); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (m *Manager) sign(s Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   s.Email,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	})
	return token.SignedString([]byte(m.Secret))
}

// Current returns the stored session. Expired sessions are reported as
// ErrNoSession.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	raw, err := m.Repo.GetValue(ctx, Key)
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Email == "" || s.Expired(m.now()) {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// User returns the signed-in email or the anonymous placeholder.
func (m *Manager) User(ctx context.Context) string {
	s, err := m.Current(ctx)
	if err != nil {
		return domain.AnonymousUser
	}
	return s.Email
}

// Token returns the bearer token of the current session, if any.
func (m *Manager) Token(ctx context.Context) string {
	s, err := m.Current(ctx)
	if err != nil {
		return ""
	}
	return s.Token
}

func (m *Manager) Logout(ctx context.Context) error {
	return m.Repo.DeleteValue(ctx, Key)
}

// Verify parses a token issued by Login and returns its subject.
func (m *Manager) Verify(token string) (string, error) {
	if m.Secret == "" {
		return "", errors.New("no signing secret configured")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(m.Secret), nil
	}); err != nil {
		return "", err
	}
	return claims.Subject, nil
}
