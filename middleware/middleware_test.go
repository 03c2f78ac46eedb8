package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/userctx"
)

type tokenTable map[string]models.Principal

func (t tokenTable) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	if p, ok := t[token]; ok {
		return &p, nil
	}
	return nil, errs.Unauthenticated("invalid or expired token")
}

var tokens = tokenTable{
	"op-token": {UserID: "u-op", Name: "Operator One", Role: models.RoleOperator},
	"qa-token": {UserID: "u-qa", Name: "Quality Jane", Role: models.RoleQuality},
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := userctx.GetPrincipal(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]string{"id": "anonymous"})
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body map[string]errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(tokens)(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic op-token", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer op-token", http.StatusOK},
		{"scheme is case insensitive", "bearer qa-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/defects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, errs.KindUnauthenticated, decodeError(t, rec).Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	handler := OptionalAuth(tokens)(http.HandlerFunc(echoPrincipal))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/seed/demo", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anonymous")

	req := httptest.NewRequest(http.MethodPost, "/api/seed/demo", nil)
	req.Header.Set("Authorization", "Bearer qa-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u-qa")

	req = httptest.NewRequest(http.MethodPost, "/api/seed/demo", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorize(t *testing.T) {
	m := metrics.New()
	handler := RequireAuth(tokens)(Authorize(access.UpdateDefect, m)(http.HandlerFunc(echoPrincipal)))

	req := httptest.NewRequest(http.MethodPut, "/api/defects/1", nil)
	req.Header.Set("Authorization", "Bearer op-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errs.KindForbidden, decodeError(t, rec).Code)
	count, err := testutil.GatherAndCount(m.Registry(), "defect_tracker_authorization_denied_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	req = httptest.NewRequest(http.MethodPut, "/api/defects/1", nil)
	req.Header.Set("Authorization", "Bearer qa-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorize_WithoutPrincipal(t *testing.T) {
	rec := httptest.NewRecorder()
	Authorize(access.ReadAudit, nil)(http.HandlerFunc(echoPrincipal)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteError_HidesStoreDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil)
	WriteError(rec, req, errs.Store(errors.New("database is locked"), "failed to count defect logs"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errs.KindStore, body.Code)
	assert.NotContains(t, body.Message, "locked")
}

func TestWriteError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/defects", nil)
	WriteError(rec, req, errs.Validation("invalid input", errs.FieldError{Field: "quantity", Message: "must be at least 1"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "quantity", body.Fields[0].Field)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(logger, m))
	r.With(RequireAuth(tokens)).Get("/api/defects/{id}", func(w http.ResponseWriter, r *http.Request) {
		Logger(r.Context()).Info("handling")
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/defects/42", nil)
	req.Header.Set("Authorization", "Bearer qa-token")
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
	assert.Equal(t, "u-qa", entry["user"])
	assert.Equal(t, "10.0.0.7", entry["ip"])
	assert.NotEmpty(t, entry["request_id"])

	count, err := testutil.GatherAndCount(m.Registry(), "defect_tracker_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLogger_DefaultsOutsideRequest(t *testing.T) {
	assert.Equal(t, slog.Default(), Logger(context.Background()))
}
