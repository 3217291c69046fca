package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/auth"
	"clinic-scheduling-api/internal/model"
	"clinic-scheduling-api/internal/store"
)

const secret = "test-secret"

type fakeCreds map[string]*model.Professional

func (f fakeCreds) ProfessionalByEmail(_ context.Context, email string) (*model.Professional, error) {
	if p, ok := f[email]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func newService(t *testing.T) *auth.Service {
	t.Helper()
	hash, err := auth.HashPassword("cisd2026")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return auth.NewService(fakeCreds{
		"fernanda@cisd.cl": {ID: 1, Name: "Fernanda Dreyse", Email: "fernanda@cisd.cl", Password: hash},
	}, secret)
}

func TestLoginSuccess(t *testing.T) {
	svc := newService(t)

	sess, err := svc.Login(context.Background(), "fernanda@cisd.cl", "cisd2026")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.User.ID != 1 || sess.User.Name != "Fernanda Dreyse" {
		t.Errorf("unexpected user %+v", sess.User)
	}

	claims, err := auth.ParseToken(sess.Token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "fernanda@cisd.cl" {
		t.Errorf("email claim: %s", claims.Email)
	}

	// verify expiry is ~12h from now
	diff := time.Until(claims.ExpiresAt.Time)
	if diff < 11*time.Hour+59*time.Minute || diff > 12*time.Hour+time.Minute {
		t.Errorf("expected ~12h expiry, got %v", diff)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name     string
		email    string
		password string
		kind     apperr.Kind
		cause    error
	}{
		{"unknown user", "nobody@cisd.cl", "cisd2026", apperr.KindUnauthorized, auth.ErrUnknownUser},
		{"wrong password", "fernanda@cisd.cl", "wrong", apperr.KindUnauthorized, auth.ErrWrongPassword},
		{"empty email", "", "cisd2026", apperr.KindInvalid, nil},
		{"empty password", "fernanda@cisd.cl", "", apperr.KindInvalid, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			if err == nil {
				t.Fatal("expected error")
			}
			if apperr.KindOf(err) != tt.kind {
				t.Errorf("kind: got %v want %v", apperr.KindOf(err), tt.kind)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("expected cause %v, got %v", tt.cause, err)
			}
			if tt.kind == apperr.KindUnauthorized && apperr.PublicMessage(err) != "invalid credentials" {
				t.Errorf("public message should be generic, got %q", apperr.PublicMessage(err))
			}
		})
	}
}

func TestParseTokenRejects(t *testing.T) {
	u := auth.User{ID: 7, Email: "a@cisd.cl", Name: "A"}

	valid, _ := auth.MakeToken(u, secret, time.Now(), auth.SessionTTL)
	if _, err := auth.ParseToken(valid, secret); err != nil {
		t.Fatalf("valid token failed: %v", err)
	}

	expired, _ := auth.MakeToken(u, secret, time.Now().Add(-13*time.Hour), auth.SessionTTL)
	if _, err := auth.ParseToken(expired, secret); err == nil {
		t.Error("expected error for expired token")
	}

	// flip a char in the signature
	parts := strings.Split(valid, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)
	if _, err := auth.ParseToken(tampered, secret); err == nil {
		t.Error("expected error for tampered token")
	}

	if _, err := auth.ParseToken(valid, "wrong-secret"); err == nil {
		t.Error("expected error for wrong secret")
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{User: u}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := auth.ParseToken(none, secret); err == nil {
		t.Error("expected error for alg none")
	}

	if _, err := auth.ParseToken("not.a.token", secret); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestVerifyWrapsUnauthorized(t *testing.T) {
	svc := newService(t)
	_, err := svc.Verify("garbage")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}
