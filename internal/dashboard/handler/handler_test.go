package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketlevy/internal/dashboard/models"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/testutil"
)

type stubService struct {
	labels []models.WindowLabel
	err    error
}

func (s *stubService) Dashboard(_ context.Context, label models.WindowLabel) (*models.Dashboard, error) {
	s.labels = append(s.labels, label)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Dashboard{
		Window:    label,
		LevyTotal: models.ComputeChange(decimal.NewFromInt(150), decimal.NewFromInt(100)),
	}, nil
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestHandleDashboard(t *testing.T) {
	t.Run("defaults to today", func(t *testing.T) {
		svc := &stubService{}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/admin/dashboard"))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []models.WindowLabel{models.WindowToday}, svc.labels)
		body := testutil.UnmarshalResponse[map[string]any](t, rr)
		levy := (*body)["levy_total"].(map[string]any)
		assert.Equal(t, "150", levy["current"])
		assert.Equal(t, 50.0, levy["percentage_change"])
		assert.Equal(t, "up", levy["direction"])
	})

	t.Run("named window", func(t *testing.T) {
		svc := &stubService{}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/admin/dashboard?window=this_month"))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []models.WindowLabel{models.WindowThisMonth}, svc.labels)
	})

	t.Run("unknown window", func(t *testing.T) {
		svc := &stubService{}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/admin/dashboard?window=fortnight"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, svc.labels)
	})

	t.Run("source failure is a 500", func(t *testing.T) {
		svc := &stubService{err: dErrors.Wrap(errors.New("timeout"), dErrors.CodeInternal, "failed to build dashboard")}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/admin/dashboard"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
