package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/model"
	"clinic-scheduling-api/internal/store"
)

var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrWrongPassword = errors.New("wrong password")
)

type CredentialStore interface {
	ProfessionalByEmail(ctx context.Context, email string) (*model.Professional, error)
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Service checks professional credentials and issues session tokens.
type Service struct {
	store  CredentialStore
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(st CredentialStore, secret string) *Service {
	return &Service{store: st, secret: secret, ttl: SessionTTL, now: time.Now}
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("email and password required")
	}

	p, err := s.store.ProfessionalByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials", ErrUnknownUser)
	}
	if err != nil {
		return nil, apperr.Internal("load professional", err)
	}
	if !CheckPassword(p.Password, password) {
		return nil, apperr.Unauthorized("invalid credentials", ErrWrongPassword)
	}

	u := User{ID: p.ID, Email: p.Email, Name: p.Name}
	now := s.now()
	tok, err := MakeToken(u, s.secret, now, s.ttl)
	if err != nil {
		return nil, apperr.Internal("sign token", err)
	}
	return &Session{Token: tok, ExpiresAt: now.Add(s.ttl), User: u}, nil
}

// Verify parses a raw bearer token.
func (s *Service) Verify(raw string) (*Claims, error) {
	c, err := ParseToken(raw, s.secret)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token", err)
	}
	return c, nil
}
