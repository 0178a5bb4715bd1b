package apiserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/ai"
	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/auth/jwt"
	"github.com/flowsight/flowsight/internal/common/config"
	"github.com/flowsight/flowsight/internal/common/dto"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.APIServerConfig{
		JWT: config.JWTConfig{
			SecretKey: "test-secret-key-with-enough-length!!",
			Duration:  time.Hour,
		},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "flowsight"},
	}

	db, err := database.NewDatabase(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "apiserver_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	aiService := ai.NewService(cfg, logger)
	t.Cleanup(func() { _ = aiService.Close() })

	return NewRouter(db, jwtService, aiService, cfg, logger)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func uploadCSV(t *testing.T, r *gin.Engine, path, token, importType, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("type", importType))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerAccount(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test Owner",
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[dto.AuthResponse](t, rec)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	doJSON(t, r, http.MethodGet, "/healthz", "", nil)

	rec := doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flowsight_http_requests_total")
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[dto.AuthResponse](t, rec)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "ADMIN", resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	// Same email again, case-insensitively.
	rec = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ALICE@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Bob",
		"email":    "not-an-email",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "carol@example.com")

	rec := doJSON(t, r, http.MethodPut, "/api/auth/password", token, gin.H{
		"oldPassword": "wrong-password",
		"newPassword": "newpassword1",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/api/auth/password", token, gin.H{
		"oldPassword": "password123",
		"newPassword": "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "carol@example.com",
		"password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/api/auth/password", "", gin.H{
		"oldPassword": "x", "newPassword": "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardAnonymousServesDemo(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[dto.DashboardResponse](t, rec)
	assert.Zero(t, resp.TotalRevenue)
	assert.Len(t, resp.RevenueByDay, 30)
	assert.Nil(t, resp.Insights.MostActiveDay)
}

func TestImportRequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	rec := uploadCSV(t, r, "/api/import/process", "", "users", "email,name\na@b.com,A")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = uploadCSV(t, r, "/api/import/validate", "", "users", "email,name\na@b.com,A")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateImportReportsRowErrors(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "dave@example.com")

	today := time.Now().Format("2006-01-02")
	csv := fmt.Sprintf("email,amount,status,created_at\na@x.com,10,PAID,%s\nbad,-5,PAID,%s", today, today)

	rec := uploadCSV(t, r, "/api/import/validate", token, "orders", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[dto.ValidateResponse](t, rec)
	assert.True(t, resp.Success)
	assert.False(t, resp.Validation.Valid)
	assert.Equal(t, 1, resp.Validation.ValidRowCount)
	assert.Equal(t, 2, resp.TotalRows)
	require.Len(t, resp.Validation.Errors, 2)
	for _, issue := range resp.Validation.Errors {
		assert.Equal(t, 3, issue.Row)
	}
}

func TestValidateImportRejectsMalformedCSV(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "erin@example.com")

	rec := uploadCSV(t, r, "/api/import/validate", token, "users", "email,name\na@b.com,A,extra")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSV parsing failed")

	rec = uploadCSV(t, r, "/api/import/validate", token, "bogus", "email\na@b.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid import type")
}

func TestProcessImportRejectsInvalidFile(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "frank@example.com")

	csv := "email,amount,status,created_at\nbad,-5,PAID,2024-01-01"
	rec := uploadCSV(t, r, "/api/import/process", token, "orders", csv)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

// Imports drive the workspace mode: user imports alone keep the reads
// on demo data, an order import flips them to the caller's workspace.
func TestImportFlowSwitchesWorkspaceMode(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "grace@example.com")

	info := decode[map[string]any](t, doJSON(t, r, http.MethodGet, "/api/workspace", token, nil))
	assert.Equal(t, "Demo", info["mode"])

	usersCSV := "email,name,role\nalice@corp.com,Alice,USER\nbob@corp.com,Bob,MANAGER"
	rec := uploadCSV(t, r, "/api/import/process", token, "users", usersCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	proc := decode[dto.ProcessResponse](t, rec)
	assert.True(t, proc.Success)
	assert.Equal(t, 2, proc.Result.Imported)
	assert.Equal(t, "Successfully imported 2 users", proc.Message)

	// Users alone never enable real data mode.
	info = decode[map[string]any](t, doJSON(t, r, http.MethodGet, "/api/workspace", token, nil))
	assert.Equal(t, "Demo", info["mode"])

	today := time.Now().Format("2006-01-02")
	ordersCSV := fmt.Sprintf("email,amount,status,created_at\nalice@corp.com,120.50,PAID,%s\nbob@corp.com,80,PENDING,%s", today, today)
	rec = uploadCSV(t, r, "/api/import/process", token, "orders", ordersCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	info = decode[map[string]any](t, doJSON(t, r, http.MethodGet, "/api/workspace", token, nil))
	assert.Equal(t, "Real", info["mode"])
	assert.Equal(t, "Test Owner's Workspace", info["name"])

	// Reads now resolve to the caller's own data.
	dash := decode[dto.DashboardResponse](t, doJSON(t, r, http.MethodGet, "/api/dashboard", token, nil))
	assert.InDelta(t, 120.50, dash.TotalRevenue, 0.001)
	assert.Equal(t, int64(3), dash.TotalUsers) // owner + two imported

	// Anonymous visitors still get the demo dataset.
	anon := decode[dto.DashboardResponse](t, doJSON(t, r, http.MethodGet, "/api/dashboard", "", nil))
	assert.Zero(t, anon.TotalRevenue)
}

func TestOrdersEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "heidi@example.com")

	today := time.Now().Format("2006-01-02")
	csv := fmt.Sprintf("email,amount,status,created_at\na@corp.com,100,PAID,%s\nb@corp.com,50,REFUNDED,%s\nc@corp.com,25,PENDING,%s",
		today, today, today)
	rec := uploadCSV(t, r, "/api/import/process", token, "orders", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := decode[dto.OrderStatsResponse](t, doJSON(t, r, http.MethodGet, "/api/orders/stats", token, nil))
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PaidOrders)
	assert.Equal(t, int64(1), stats.RefundedOrders)
	assert.InDelta(t, 100, stats.RevenueThisMonth, 0.001)

	list := decode[map[string]json.RawMessage](t, doJSON(t, r, http.MethodGet, "/api/orders?status=COMPLETED", token, nil))
	var orders []*database.Order
	require.NoError(t, json.Unmarshal(list["orders"], &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, database.OrderCompleted, orders[0].Status)
	require.NotNil(t, orders[0].User)
	assert.Equal(t, "a@corp.com", orders[0].User.Email)
}

func TestUsersEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "ivan@example.com")

	csv := "email,name,role\nm@corp.com,Mallory,MANAGER\nu@corp.com,Uma,USER"
	rec := uploadCSV(t, r, "/api/import/process", token, "users", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// User imports alone leave reads on demo data, so force real mode
	// with one order.
	today := time.Now().Format("2006-01-02")
	rec = uploadCSV(t, r, "/api/import/process", token, "orders",
		fmt.Sprintf("email,amount,status,created_at\nm@corp.com,10,PAID,%s", today))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := decode[dto.UserStatsResponse](t, doJSON(t, r, http.MethodGet, "/api/users/stats", token, nil))
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.AdminCount)
	assert.Equal(t, int64(1), stats.ManagerCount)
	assert.Equal(t, int64(1), stats.UserCount)
}

func TestSubscriptionsEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "judy@example.com")

	rec := uploadCSV(t, r, "/api/import/process", token, "users",
		"email,name\ns@corp.com,Sam")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	today := time.Now().Format("2006-01-02")
	subsCSV := fmt.Sprintf("email,plan,status,start_date\ns@corp.com,Pro,ACTIVE,%s\ns@corp.com,Basic,CANCELLED,%s", today, today)
	rec = uploadCSV(t, r, "/api/import/process", token, "subscriptions", subsCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := decode[dto.SubscriptionStatsResponse](t, doJSON(t, r, http.MethodGet, "/api/subscriptions/stats", token, nil))
	assert.Equal(t, int64(1), stats.ActiveCount)
	assert.Equal(t, int64(1), stats.CanceledCount)
	assert.Equal(t, int64(0), stats.ExpiredCount)
	assert.Equal(t, 2, stats.PlanCount)

	list := decode[map[string]json.RawMessage](t, doJSON(t, r, http.MethodGet, "/api/subscriptions?plan=Pro", token, nil))
	var subs []*database.Subscription
	require.NoError(t, json.Unmarshal(list["subscriptions"], &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "Pro", subs[0].Plan)
}

func TestActivityEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "kim@example.com")

	// Login to leave a trace in the feed.
	rec := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "kim@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Real mode, so reads hit the caller's workspace.
	today := time.Now().Format("2006-01-02")
	rec = uploadCSV(t, r, "/api/import/process", token, "orders",
		fmt.Sprintf("email,amount,status,created_at\nk@corp.com,10,PAID,%s", today))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := decode[dto.ActivityStatsResponse](t, doJSON(t, r, http.MethodGet, "/api/activity/stats", token, nil))
	assert.GreaterOrEqual(t, stats.TotalCount, int64(2)) // login + data_import
	assert.GreaterOrEqual(t, stats.Count24h, int64(2))

	feed := decode[map[string]json.RawMessage](t, doJSON(t, r, http.MethodGet, "/api/activity", token, nil))
	var activities []*database.Activity
	require.NoError(t, json.Unmarshal(feed["activities"], &activities))
	assert.NotEmpty(t, activities)
	var actions []string
	require.NoError(t, json.Unmarshal(feed["actions"], &actions))
	assert.Contains(t, actions, "login")
	assert.Contains(t, actions, "data_import")
}

func TestTemplateDownload(t *testing.T) {
	r := newTestRouter(t)
	token := registerAccount(t, r, "leo@example.com")

	rec := doJSON(t, r, http.MethodGet, "/api/import/template?type=users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "users.csv")
	assert.Contains(t, rec.Body.String(), "email,name,role")

	rec = doJSON(t, r, http.MethodGet, "/api/import/template?type=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAIEndpoints(t *testing.T) {
	r := newTestRouter(t)

	// Without an API key the summary falls back to the canned
	// generator, anonymously against the demo workspace.
	rec := doJSON(t, r, http.MethodGet, "/api/ai/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[ai.BusinessSummary](t, rec)
	assert.NotEmpty(t, summary.Summary)
	assert.NotEmpty(t, summary.Trends)
	assert.NotEmpty(t, summary.Suggestions)

	rec = doJSON(t, r, http.MethodPost, "/api/ai/explain-chart", "", gin.H{
		"revenueData": []gin.H{
			{"date": "2024-01-01", "amount": 100},
			{"date": "2024-01-02", "amount": 150},
		},
		"totalRevenue": 250,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	explain := decode[map[string]string](t, rec)
	assert.NotEmpty(t, explain["explanation"])

	rec = doJSON(t, r, http.MethodPost, "/api/ai/explain-chart", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkspaceEndpointRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/workspace", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
