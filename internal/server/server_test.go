package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/finance-advisor/internal/advisor"
	"github.com/iwvelando/finance-advisor/internal/storage"
	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, maxBodySize int64) http.Handler {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "advisor.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := advisor.NewService(repo, zap.NewNop(), tax.DefaultOptions())
	return NewHandler(zap.NewNop(), svc, maxBodySize, "")
}

func perform(t *testing.T, handler http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(constants.UserIDHeader, user)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHandleVersionAndHealth(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := perform(t, handler, http.MethodGet, "/api/version", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var version map[string]string
	decodeBody(t, rr, &version)
	if version["version"] != "dev" {
		t.Fatalf("expected default version dev, got %q", version["version"])
	}

	rr = perform(t, handler, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ok") {
		t.Fatalf("health = %d %s", rr.Code, rr.Body.String())
	}

	rr = perform(t, handler, http.MethodPost, "/api/version", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleClassify(t *testing.T) {
	handler := newTestHandler(t, 0)

	tests := []struct {
		target   string
		status   int
		category finance.Category
	}{
		{"/api/classify?name=Housing", http.StatusOK, finance.Primary},
		{"/api/classify?name=traveling", http.StatusOK, finance.Secondary},
		{"/api/classify?name=travel", http.StatusOK, finance.Unknown},
		{"/api/classify", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := perform(t, handler, http.MethodGet, tt.target, "", "")
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rr.Code)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp classifyResponse
			decodeBody(t, rr, &resp)
			if resp.Category != tt.category {
				t.Errorf("category = %q, expected %q", resp.Category, tt.category)
			}
		})
	}
}

func TestUserRoutesRequireSession(t *testing.T) {
	handler := newTestHandler(t, 0)

	for _, target := range []string{"/api/profile", "/api/goal", "/api/savings", "/api/dashboard", "/api/expenses/monthly"} {
		rr := perform(t, handler, http.MethodGet, target, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without session: expected 401, got %d", target, rr.Code)
		}
	}
}

func TestProfileRoundTrip(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := perform(t, handler, http.MethodGet, "/api/profile", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	legacy := `{"income": "50000", "expenses": {"housing": "15000"}, "secondaryExpenses": {"travel": "2000"}}`
	rr = perform(t, handler, http.MethodPut, "/api/profile", "alice", legacy)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var saved profileResponse
	decodeBody(t, rr, &saved)
	if saved.Profile.Income != 50000 || saved.Profile.Primary["housing"] != 15000 {
		t.Fatalf("saved profile = %+v", saved.Profile)
	}
	if len(saved.Warnings) != 1 {
		t.Errorf("warnings = %v, expected one for the unknown travel category", saved.Warnings)
	}

	rr = perform(t, handler, http.MethodGet, "/api/profile", "alice", "")
	var loaded profileResponse
	decodeBody(t, rr, &loaded)
	if loaded.Profile.Version != 2 || loaded.Profile.Secondary["travel"] != 2000 {
		t.Errorf("loaded profile = %+v", loaded.Profile)
	}

	rr = perform(t, handler, http.MethodGet, "/api/profile", "bob", "")
	var other profileResponse
	decodeBody(t, rr, &other)
	if other.Profile.Income != 0 {
		t.Errorf("profile leaked across users: %+v", other.Profile)
	}
}

func TestProfileErrors(t *testing.T) {
	handler := newTestHandler(t, 0)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Malformed", `{"income":`, http.StatusBadRequest},
		{"Future version", `{"version": 7}`, http.StatusBadRequest},
		{"Conflict", `{"version": 2, "primary": {"misc": 1}, "secondary": {"misc": 1}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, handler, http.MethodPut, "/api/profile", "alice", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			var resp map[string]string
			decodeBody(t, rr, &resp)
			if resp["error"] == "" {
				t.Error("expected error message in response")
			}
		})
	}
}

func TestProfileExport(t *testing.T) {
	handler := newTestHandler(t, 0)

	perform(t, handler, http.MethodPut, "/api/profile", "alice",
		`{"version": 2, "income": 64000, "primary": {"housing": 20000}}`)

	rr := perform(t, handler, http.MethodGet, "/api/profile/export", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{"version: 2", "income: 64000", "housing: 20000"} {
		if !strings.Contains(body, want) {
			t.Errorf("exported YAML missing %q:\n%s", want, body)
		}
	}
}

func TestGoalAndSavings(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := perform(t, handler, http.MethodPut, "/api/goal", "alice", `{"targetAmount": "60000", "timeframe": "6"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = perform(t, handler, http.MethodGet, "/api/goal", "alice", "")
	var goal map[string]interface{}
	decodeBody(t, rr, &goal)
	if goal["targetAmount"] != float64(60000) || goal["timeframeMonths"] != float64(6) {
		t.Errorf("goal = %v", goal)
	}

	rr = perform(t, handler, http.MethodPost, "/api/savings", "alice", `{"month": "2025-01", "amount": 1000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	perform(t, handler, http.MethodPost, "/api/savings", "alice", `{"month": "2024-12", "amount": 500}`)

	rr = perform(t, handler, http.MethodGet, "/api/savings", "alice", "")
	var savings savingsResponse
	decodeBody(t, rr, &savings)
	if savings.Total != 1500 || len(savings.Months) != 2 || savings.Months[0] != "2024-12" {
		t.Errorf("savings = %+v", savings)
	}

	rr = perform(t, handler, http.MethodPost, "/api/savings", "alice", `{"month": "January", "amount": 1}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid month: expected 400, got %d", rr.Code)
	}
	rr = perform(t, handler, http.MethodPost, "/api/savings", "alice", `{"month": "2025-01", "amount": "lots"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric amount: expected 400, got %d", rr.Code)
	}
}

func TestMonthlyExpensesLifecycle(t *testing.T) {
	handler := newTestHandler(t, 0)
	now := time.Now().UTC()

	create := `{"why": "rent", "amount": 15000, "month": ` + strconv.Itoa(int(now.Month())) + `, "year": ` + strconv.Itoa(now.Year()) + `}`
	rr := perform(t, handler, http.MethodPost, "/api/expenses/monthly", "alice", create)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var entry finance.Entry
	decodeBody(t, rr, &entry)
	if entry.ID == "" {
		t.Fatal("expected an ID for the new entry")
	}

	rr = perform(t, handler, http.MethodPost, "/api/expenses/monthly", "alice", `{"why": "", "amount": 10, "month": 1, "year": 2025}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid entry: expected 400, got %d", rr.Code)
	}

	update := `{"why": "  rent  ", "amount": 16000, "month": ` + strconv.Itoa(int(now.Month())) + `, "year": ` + strconv.Itoa(now.Year()) + `}`
	rr = perform(t, handler, http.MethodPut, "/api/expenses/monthly/"+entry.ID, "alice", update)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated finance.Entry
	decodeBody(t, rr, &updated)
	if updated.Why != "rent" || updated.ID != entry.ID || updated.Amount != 16000 {
		t.Errorf("update response = %+v", updated)
	}
	rr = perform(t, handler, http.MethodPut, "/api/expenses/monthly/"+entry.ID, "bob", update)
	if rr.Code != http.StatusNotFound {
		t.Errorf("update by another user: expected 404, got %d", rr.Code)
	}

	rr = perform(t, handler, http.MethodGet, "/api/expenses/compare?months=3", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("compare: expected status 200, got %d", rr.Code)
	}
	var totals []finance.MonthTotal
	decodeBody(t, rr, &totals)
	if len(totals) != 3 || totals[2].Total != 16000 || totals[2].Count != 1 {
		t.Errorf("compare totals = %+v", totals)
	}

	rr = perform(t, handler, http.MethodGet, "/api/expenses/compare", "alice", "")
	decodeBody(t, rr, &totals)
	if len(totals) != constants.DefaultCompareMonths {
		t.Errorf("default compare window = %d months", len(totals))
	}

	for _, bad := range []string{"0", "abc", "25"} {
		rr = perform(t, handler, http.MethodGet, "/api/expenses/compare?months="+bad, "alice", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("compare months=%s: expected 400, got %d", bad, rr.Code)
		}
	}

	rr = perform(t, handler, http.MethodPost, "/api/expenses/monthly", "alice", `{"why": "trip", "amount": 900, "month": 1, "year": 2020}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var filtered []finance.Entry
	rr = perform(t, handler, http.MethodGet, "/api/expenses/monthly?month=2020-01", "alice", "")
	decodeBody(t, rr, &filtered)
	if len(filtered) != 1 || filtered[0].Why != "trip" {
		t.Fatalf("entries for 2020-01 = %+v", filtered)
	}
	rr = perform(t, handler, http.MethodGet, "/api/expenses/monthly?month=January", "alice", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid month filter: expected 400, got %d", rr.Code)
	}
	rr = perform(t, handler, http.MethodDelete, "/api/expenses/monthly/"+filtered[0].ID, "alice", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete trip: expected status 204, got %d", rr.Code)
	}

	rr = perform(t, handler, http.MethodDelete, "/api/expenses/monthly/"+entry.ID, "alice", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected status 204, got %d", rr.Code)
	}
	rr = perform(t, handler, http.MethodDelete, "/api/expenses/monthly/"+entry.ID, "alice", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rr.Code)
	}

	rr = perform(t, handler, http.MethodGet, "/api/expenses/monthly", "alice", "")
	var entries []finance.Entry
	decodeBody(t, rr, &entries)
	if len(entries) != 0 {
		t.Errorf("entries after delete = %+v", entries)
	}
}

func TestDashboard(t *testing.T) {
	handler := newTestHandler(t, 0)

	perform(t, handler, http.MethodPut, "/api/profile", "alice",
		`{"version": 2, "income": 50000, "primary": {"housing": 20000}, "secondary": {"entertainment": 5000}}`)
	perform(t, handler, http.MethodPut, "/api/goal", "alice", `{"version": 2, "targetAmount": 120000, "timeframeMonths": 12}`)
	perform(t, handler, http.MethodPost, "/api/savings", "alice", `{"month": "2025-01", "amount": 30000}`)

	rr := perform(t, handler, http.MethodGet, "/api/dashboard", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var dash advisor.Dashboard
	decodeBody(t, rr, &dash)
	if dash.Insights.Progress != 25 || dash.Insights.MonthlyTarget != 10000 {
		t.Errorf("insights = %+v", dash.Insights)
	}
	if dash.Insights.Feasibility.Status != finance.OnTrack {
		t.Errorf("feasibility = %+v", dash.Insights.Feasibility)
	}
	if len(dash.Report.Suggestions) == 0 {
		t.Error("expected advisor suggestions in dashboard")
	}
}

func TestHandleAdvisor(t *testing.T) {
	handler := newTestHandler(t, 0)

	body := `{"income": "50000", "primaryExpenses": "30000", "entertainment": "8000",
		"travel": "5000", "event": "job_loss", "riskTolerance": "low"}`
	rr := perform(t, handler, http.MethodPost, "/api/advisor", "", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var report advice.Report
	decodeBody(t, rr, &report)
	if report.RiskTolerance != advice.ToleranceLow {
		t.Errorf("risk tolerance = %q, expected low", report.RiskTolerance)
	}
	if report.Risk != advice.RiskMedium {
		t.Errorf("risk = %v, expected Medium", report.Risk)
	}

	rr = perform(t, handler, http.MethodPost, "/api/advisor?riskTolerance=high", "", body)
	decodeBody(t, rr, &report)
	if report.RiskTolerance != advice.ToleranceHigh {
		t.Errorf("risk tolerance override = %q, expected high", report.RiskTolerance)
	}

	rr = perform(t, handler, http.MethodPost, "/api/advisor", "", "[]")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("array body: expected 400, got %d", rr.Code)
	}
}

func TestHandleTax(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := perform(t, handler, http.MethodPost, "/api/tax", "",
		`{"income": "1300000", "regime": "NEW", "capitalGains": 150000, "holdingPeriod": "long"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result tax.Result
	decodeBody(t, rr, &result)
	if result.Regime != tax.RegimeNew || math.Abs(result.IncomeTax-1250) > 1e-6 || result.CapitalGainsTax != 5000 {
		t.Errorf("result = %+v", result)
	}

	rr = perform(t, handler, http.MethodPost, "/api/tax", "", "null")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("null body: expected 400, got %d", rr.Code)
	}
}

func TestRequestBodyLimit(t *testing.T) {
	handler := newTestHandler(t, 16)

	body := bytes.Repeat([]byte(" "), 64)
	req := httptest.NewRequest(http.MethodPost, "/api/tax", bytes.NewReader(append(body, []byte(`{}`)...)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}
