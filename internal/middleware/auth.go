package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"clinic-scheduling-api/internal/auth"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionFrom returns the claims stored by RequireSession or Auth.
func SessionFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(sessionKey).(*auth.Claims)
	return c, ok
}

func WithSession(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, sessionKey, c)
}

// Verifier checks a raw bearer token. auth.Service implements it.
type Verifier interface {
	Verify(raw string) (*auth.Claims, error)
}

func bearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireSession rejects requests without a valid bearer token.
func RequireSession(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r.Header.Get("Authorization"))
			if raw == "" {
				unauthorized(w, "missing token")
				return
			}
			claims, err := v.Verify(raw)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Auth is the gRPC counterpart of RequireSession. Methods in open skip it.
func Auth(v Verifier, open map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = bearer(vals[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, err := v.Verify(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		return next(WithSession(ctx, claims), req)
	}
}
