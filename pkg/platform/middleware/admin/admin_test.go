package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"marketlevy/pkg/requestcontext"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := uuid.New()

	var gotActor string
	h := RequireAdminToken("s3cret", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = requestcontext.ActorID(r.Context()).String()
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		token  string
		actor  string
		status int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"wrong token", "nope", "", http.StatusUnauthorized},
		{"valid token", "s3cret", "", http.StatusNoContent},
		{"valid token with actor", "s3cret", actor.String(), http.StatusNoContent},
		{"bad actor id", "s3cret", "not-a-uuid", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if tt.token != "" {
				req.Header.Set("X-Admin-Token", tt.token)
			}
			if tt.actor != "" {
				req.Header.Set(HeaderActorID, tt.actor)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
	assert.Equal(t, actor.String(), gotActor)
}

func TestRequireAdminToken_EmptyExpectedTokenDeniesAll(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequireAdminToken("", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
