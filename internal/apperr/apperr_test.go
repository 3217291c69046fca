package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestMapping(t *testing.T) {
	cause := errors.New("db down")
	tests := []struct {
		name   string
		err    error
		status int
		code   codes.Code
		msg    string
	}{
		{"invalid", Invalid("rut required"), http.StatusBadRequest, codes.InvalidArgument, "rut required"},
		{"unknown ref", UnknownReference("unknown service"), http.StatusBadRequest, codes.InvalidArgument, "unknown service"},
		{"unauthorized", Unauthorized("invalid credentials", cause), http.StatusUnauthorized, codes.Unauthenticated, "invalid credentials"},
		{"internal", Internal("insert appointment", cause), http.StatusInternalServerError, codes.Internal, "internal error"},
		{"plain", cause, http.StatusInternalServerError, codes.Internal, "internal error"},
		{"wrapped", fmt.Errorf("book: %w", Invalidf("bad %s", "start")), http.StatusBadRequest, codes.InvalidArgument, "bad start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("status: got %d want %d", got, tt.status)
			}
			if got := GRPCCode(tt.err); got != tt.code {
				t.Errorf("code: got %v want %v", got, tt.code)
			}
			if got := PublicMessage(tt.err); got != tt.msg {
				t.Errorf("message: got %q want %q", got, tt.msg)
			}
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	sentinel := errors.New("wrong password")
	err := Unauthorized("invalid credentials", sentinel)
	if !errors.Is(err, sentinel) {
		t.Fatal("cause lost")
	}
}
