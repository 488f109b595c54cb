package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/studio/pkg/contextkeys"
	"github.com/pixelforge/studio/pkg/dashboard"
	"github.com/pixelforge/studio/pkg/identity"
	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"

	"github.com/prometheus/client_golang/prometheus"
)

func newDashboardRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	reader := dashboard.NewReader(submission.NewStore(db), pricing.DefaultTable(), metrics, logrus.New())

	router := mux.NewRouter()
	NewDashboardHandlers(reader, logrus.New()).RegisterRoutes(router)
	return router, mock
}

func TestCurrentPlanRequiresIdentity(t *testing.T) {
	router, _ := newDashboardRouter(t)

	req := httptest.NewRequest("GET", "/dashboard/plan", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentPlanNoSubmissions(t *testing.T) {
	router, mock := newDashboardRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs("ana@example.com", submission.StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("GET", "/dashboard/plan?email=ana%40example.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var projection dashboard.Projection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projection))
	assert.False(t, projection.HasPlan)
	assert.Equal(t, "No active plan", projection.StatusLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentPlanWithSession(t *testing.T) {
	router, mock := newDashboardRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM submissions").
		WithArgs(int64(7), submission.StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("GET", "/dashboard/plan", nil)
	session := &identity.Session{UserID: 7, Email: "ana@example.com", ExpiresAt: time.Now().Add(time.Hour)}
	req = req.WithContext(context.WithValue(req.Context(), contextkeys.SessionKey, session))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var projection dashboard.Projection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projection))
	assert.False(t, projection.HasPlan)
	assert.NoError(t, mock.ExpectationsWereMet())
}
