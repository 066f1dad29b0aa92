package httputil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "marketlevy/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeInvalidCode:            http.StatusBadRequest,
		dErrors.CodeDuplicatePayment:       http.StatusBadRequest,
		dErrors.CodeAlreadyPaid:            http.StatusBadRequest,
		dErrors.CodeInvalidStateTransition: http.StatusBadRequest,
		dErrors.CodePendingConfirmation:    http.StatusConflict,
		dErrors.CodeNotFound:               http.StatusNotFound,
		dErrors.CodeUnauthorized:           http.StatusUnauthorized,
		dErrors.CodeInternal:               http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (r *amountRequest) Validate() error {
	r.Amount = strings.TrimSpace(r.Amount)
	if r.Amount == "" {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	decode := func(body string) (*amountRequest, *httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req, ok := DecodeAndPrepare[amountRequest](w, r, logger, context.Background(), "req-1")
		return req, w, ok
	}

	req, _, ok := decode(`{"amount":" 500 "}`)
	if !ok || req.Amount != "500" {
		t.Fatalf("expected normalised request, got %+v ok=%v", req, ok)
	}

	_, w, ok := decode(`{"amount":"500","extra":true}`)
	if ok || w.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields must be rejected, got %d", w.Code)
	}

	_, w, ok = decode(`{"amount":""}`)
	if ok || w.Code != http.StatusBadRequest {
		t.Fatalf("validation failure must be 400, got %d", w.Code)
	}
}
