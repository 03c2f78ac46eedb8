package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogem/defect-tracker/authenticator"
	"github.com/blogem/defect-tracker/config"
	"github.com/blogem/defect-tracker/controllers"
	"github.com/blogem/defect-tracker/database"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
	"github.com/blogem/defect-tracker/services"
)

type testServer struct {
	handler http.Handler
	repos   *repositories.Repositories
	tokens  map[models.Role]string
}

// setupTestServer wires the full stack over a temp database and seeds the demo data.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.InitializeDatabase(dbPath))
	t.Cleanup(func() { database.CloseDB() })

	repos := repositories.NewRepositories(database.GetDB())
	jwtAuth, err := authenticator.NewJWTAuthenticator(config.JWTConfig{
		Secret: "test-secret-key-for-testing-only",
		TTL:    time.Hour,
		Issuer: "defect-tracker-test",
	})
	require.NoError(t, err)

	m := metrics.New()
	srvs := services.NewServices(repos, services.Options{
		Metrics:    m,
		Tokens:     jwtAuth,
		BcryptCost: bcrypt.MinCost,
	})

	handler, err := SetupRouter(controllers.NewControllers(srvs, nil), Options{
		Auth:    authenticator.Chain{jwtAuth},
		Metrics: m,
	})
	require.NoError(t, err)

	ts := &testServer{handler: handler, repos: repos, tokens: map[models.Role]string{}}

	rec := ts.do(t, http.MethodPost, "/api/seed/demo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	logins := map[models.Role]string{
		models.RoleOperator:   "op1@factory.com",
		models.RoleQuality:    "quality@factory.com",
		models.RoleSupervisor: "super@factory.com",
		models.RoleEngineer:   "eng@factory.com",
		models.RoleAdmin:      "admin@factory.com",
	}
	for role, email := range logins {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": services.DemoPassword})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		decode(t, rec, &result)
		require.Equal(t, role, result.User.Role)
		ts.tokens[role] = result.Token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) as(t *testing.T, role models.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, method, path, ts.tokens[role], body)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error.Code
}

func (ts *testServer) createDefect(t *testing.T, quantity int) models.DefectLog {
	t.Helper()

	var machines []models.Machine
	decode(t, ts.as(t, models.RoleOperator, http.MethodGet, "/api/defects/machines", nil), &machines)
	var types []models.DefectType
	decode(t, ts.as(t, models.RoleOperator, http.MethodGet, "/api/defects/types", nil), &types)
	require.NotEmpty(t, machines)
	require.NotEmpty(t, types)

	rec := ts.as(t, models.RoleOperator, http.MethodPost, "/api/defects", map[string]any{
		"machineId":    machines[0].ID,
		"defectTypeId": types[0].ID,
		"station":      "Station 7",
		"quantity":     quantity,
		"notes":        "flash on parting line",
		"status":       "Closed",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var defect models.DefectLog
	decode(t, rec, &defect)
	return defect
}

func (ts *testServer) auditCount(t *testing.T) int {
	t.Helper()
	var entries []models.AuditLogDetail
	decode(t, ts.as(t, models.RoleAdmin, http.MethodGet, "/api/audit", nil), &entries)
	return len(entries)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "defect-tracker", health["service"])

	rec = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "defect_tracker_http_request_duration_seconds")
}

func TestAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/defects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/defects", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@factory.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.as(t, models.RoleEngineer, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.Principal
	decode(t, rec, &me)
	assert.Equal(t, "Engineer Ed", me.Name)
	assert.Equal(t, models.RoleEngineer, me.Role)
}

func TestSSONotConfigured(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/auth/oidc/login", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDefectLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	defect := ts.createDefect(t, 2)

	assert.Equal(t, models.StatusOpen, defect.Status, "status in the create body is ignored")

	before := ts.auditCount(t)

	rec := ts.as(t, models.RoleOperator, http.MethodPut, "/api/defects/"+defect.ID, map[string]any{"status": "Closed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
	assert.Equal(t, before, ts.auditCount(t), "a denied update leaves no audit entry")

	rec = ts.as(t, models.RoleSupervisor, http.MethodPut, "/api/defects/"+defect.ID, map[string]any{"status": "Under Review"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.DefectLog
	decode(t, rec, &updated)
	assert.Equal(t, models.StatusUnderReview, updated.Status)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, "flash on parting line", updated.Notes)
	assert.Equal(t, before+1, ts.auditCount(t))

	rec = ts.as(t, models.RoleQuality, http.MethodPut, "/api/defects/"+defect.ID, map[string]any{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.as(t, models.RoleQuality, http.MethodPut, "/api/defects/"+defect.ID, map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.as(t, models.RoleQuality, http.MethodPut, "/api/defects/does-not-exist", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.as(t, models.RoleQuality, http.MethodPut, "/api/defects/"+defect.ID, strings.Repeat("x", 3))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var history []models.AuditLogDetail
	decode(t, ts.as(t, models.RoleAdmin, http.MethodGet, "/api/audit/defect_logs/"+defect.ID, nil), &history)
	require.Len(t, history, 2)
	assert.Equal(t, models.AuditInsert, history[0].Action)
	assert.Equal(t, models.AuditUpdate, history[1].Action)
	assert.Equal(t, "Supervisor Sam", history[1].User.Name)
}

func TestListDefectsFilters(t *testing.T) {
	ts := setupTestServer(t)
	defect := ts.createDefect(t, 1)

	var open []models.DefectLogDetail
	rec := ts.as(t, models.RoleOperator, http.MethodGet, "/api/defects?status=Open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &open)
	require.NotEmpty(t, open)
	for _, d := range open {
		assert.Equal(t, models.StatusOpen, d.Status)
	}

	var byMachine []models.DefectLogDetail
	decode(t, ts.as(t, models.RoleOperator, http.MethodGet, "/api/defects?machineId="+defect.MachineID, nil), &byMachine)
	for _, d := range byMachine {
		assert.Equal(t, defect.MachineID, d.MachineID)
	}

	today := time.Now().UTC().Format("2006-01-02")
	var todays []models.DefectLogDetail
	decode(t, ts.as(t, models.RoleOperator, http.MethodGet, "/api/defects?dateFrom="+today+"&dateTo="+today, nil), &todays)
	found := false
	for _, d := range todays {
		found = found || d.ID == defect.ID
	}
	assert.True(t, found, "a date-only dateTo includes the whole day")

	rec = ts.as(t, models.RoleOperator, http.MethodGet, "/api/defects?dateFrom=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCapaWorkflow(t *testing.T) {
	ts := setupTestServer(t)
	defect := ts.createDefect(t, 1)

	rec := ts.as(t, models.RoleEngineer, http.MethodGet, "/api/capa/defect/"+defect.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	form := map[string]any{
		"defectLogId":       defect.ID,
		"rootCauseCategory": "Method",
		"why1":              "Clamp pressure too low",
		"correctiveAction":  "Recalibrate clamp",
		"dueDate":           "2026-12-01",
		"status":            "Closed",
	}

	rec = ts.as(t, models.RoleSupervisor, http.MethodPost, "/api/capa", form)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.as(t, models.RoleEngineer, http.MethodPost, "/api/capa", form)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var capa models.Capa
	decode(t, rec, &capa)
	assert.Equal(t, models.CapaOpen, capa.Status)

	rec = ts.as(t, models.RoleQuality, http.MethodPost, "/api/capa", form)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))

	orphan := map[string]any{"defectLogId": "no-such-defect", "correctiveAction": "n/a"}
	rec = ts.as(t, models.RoleAdmin, http.MethodPost, "/api/capa", orphan)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.as(t, models.RoleQuality, http.MethodPut, "/api/capa/"+capa.ID, map[string]any{"status": "Closed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.as(t, models.RoleOperator, http.MethodGet, "/api/capa/defect/"+defect.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail models.CapaDetail
	decode(t, rec, &detail)
	assert.Equal(t, models.CapaClosed, detail.Status)
	assert.Equal(t, "Clamp pressure too low", detail.Why1)
}

func TestAuditGate(t *testing.T) {
	ts := setupTestServer(t)

	for role, want := range map[models.Role]int{
		models.RoleOperator:   http.StatusForbidden,
		models.RoleEngineer:   http.StatusForbidden,
		models.RoleQuality:    http.StatusOK,
		models.RoleSupervisor: http.StatusOK,
		models.RoleAdmin:      http.StatusOK,
	} {
		rec := ts.as(t, role, http.MethodGet, "/api/audit", nil)
		assert.Equal(t, want, rec.Code, "role %s", role)
	}
}

func TestDashboardScrapScenario(t *testing.T) {
	ts := setupTestServer(t)
	defect := ts.createDefect(t, 3)

	var before models.Dashboard
	decode(t, ts.as(t, models.RoleOperator, http.MethodGet, "/api/analytics/dashboard", nil), &before)
	assert.GreaterOrEqual(t, before.Summary.Total, 1)
	assert.GreaterOrEqual(t, before.Summary.Open, 1)
	assert.NotEmpty(t, before.Pareto)

	rec := ts.as(t, models.RoleQuality, http.MethodPut, "/api/defects/"+defect.ID, map[string]any{
		"status": "Closed",
		"notes":  "Disposition: Scrap",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var after models.Dashboard
	decode(t, ts.as(t, models.RoleOperator, http.MethodGet, "/api/analytics/dashboard", nil), &after)
	assert.Equal(t, before.Summary.Scrap+3, after.Summary.Scrap)
	assert.Equal(t, before.Summary.Open-1, after.Summary.Open)
	assert.Equal(t, before.Summary.Total, after.Summary.Total)
}

func TestSeedRequiresAdminOnceUsersExist(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/seed/demo", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "seeding is disabled by default once data exists")

	rec = ts.as(t, models.RoleAdmin, http.MethodPost, "/api/seed/demo", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
