package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "marketlevy/pkg/domain"
	"marketlevy/pkg/requestcontext"
)

type stubValidator struct {
	agent id.AgentID
	err   error
}

func (s stubValidator) ValidateAgent(string) (id.AgentID, error) {
	return s.agent, s.err
}

func TestRequireAgent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agent := id.AgentID(uuid.New())

	newHandler := func(v AgentValidator, seen *id.AgentID) http.Handler {
		return RequireAgent(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*seen = requestcontext.AgentID(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	}

	t.Run("missing header", func(t *testing.T) {
		var seen id.AgentID
		rr := httptest.NewRecorder()
		newHandler(stubValidator{agent: agent}, &seen).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/agent/scan/verify", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.True(t, seen.IsNil())
	})

	t.Run("wrong scheme", func(t *testing.T) {
		var seen id.AgentID
		req := httptest.NewRequest(http.MethodPost, "/agent/scan/verify", nil)
		req.Header.Set("Authorization", "Basic abc")
		rr := httptest.NewRecorder()
		newHandler(stubValidator{agent: agent}, &seen).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		var seen id.AgentID
		req := httptest.NewRequest(http.MethodPost, "/agent/scan/verify", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rr := httptest.NewRecorder()
		newHandler(stubValidator{err: errors.New("bad signature")}, &seen).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Invalid or expired token"}`, rr.Body.String())
	})

	t.Run("valid token sets agent", func(t *testing.T) {
		var seen id.AgentID
		req := httptest.NewRequest(http.MethodPost, "/agent/scan/verify", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		newHandler(stubValidator{agent: agent}, &seen).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, agent, seen)
	})
}
