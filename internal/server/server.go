package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/finance-advisor/internal/advisor"
	"github.com/iwvelando/finance-advisor/internal/records"
	"github.com/iwvelando/finance-advisor/internal/session"
	"github.com/iwvelando/finance-advisor/internal/storage"
	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/datetime"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger      *zap.Logger
	service     *advisor.Service
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the advisor JSON API.
// Routes under a user's data require the identity header checked by
// session.Middleware.
func NewHandler(logger *zap.Logger, service *advisor.Service, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		service:     service,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		now:         time.Now,
	}

	mux := http.NewServeMux()

	// Stateless endpoints
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/version", h.handleVersion)
	mux.HandleFunc("GET /api/classify", h.handleClassify)
	mux.HandleFunc("POST /api/advisor", h.handleAdvisor)
	mux.HandleFunc("POST /api/tax", h.handleTax)

	// Per-user endpoints
	user := func(fn http.HandlerFunc) http.Handler {
		return session.Middleware(logger, fn)
	}
	mux.Handle("GET /api/profile", user(h.handleGetProfile))
	mux.Handle("PUT /api/profile", user(h.handlePutProfile))
	mux.Handle("GET /api/profile/export", user(h.handleExportProfile))
	mux.Handle("GET /api/goal", user(h.handleGetGoal))
	mux.Handle("PUT /api/goal", user(h.handlePutGoal))
	mux.Handle("GET /api/savings", user(h.handleGetSavings))
	mux.Handle("POST /api/savings", user(h.handlePostSaving))
	mux.Handle("GET /api/expenses/monthly", user(h.handleListMonthly))
	mux.Handle("POST /api/expenses/monthly", user(h.handleAddMonthly))
	mux.Handle("PUT /api/expenses/monthly/{id}", user(h.handleUpdateMonthly))
	mux.Handle("DELETE /api/expenses/monthly/{id}", user(h.handleDeleteMonthly))
	mux.Handle("GET /api/expenses/compare", user(h.handleCompare))
	mux.Handle("GET /api/dashboard", user(h.handleDashboard))

	return mux
}

type profileResponse struct {
	Profile  records.Profile `json:"profile"`
	Warnings []string        `json:"warnings,omitempty"`
}

type savingsRequest struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type savingsResponse struct {
	Ledger finance.MonthlySavingsLedger `json:"ledger"`
	Months []string                     `json:"months"`
	Total  float64                      `json:"total"`
}

type classifyResponse struct {
	Name     string           `json:"name"`
	Category finance.Category `json:"category"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "name query parameter is required", "server.handleClassify")
		return
	}
	h.writeJSON(w, http.StatusOK, classifyResponse{Name: name, Category: finance.Classify(name)})
}

func (h *handler) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAdvisor"
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	profile, err := records.DecodeProfile(body)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}

	tolerance := profile.RiskTolerance
	if override := r.URL.Query().Get("riskTolerance"); override != "" {
		tolerance = override
	}

	input := profile.AdviceInput(h.service.TaxOptions().UsdToInr)
	h.writeJSON(w, http.StatusOK, h.service.Advise(input, advice.ParseRiskTolerance(tolerance)))
}

func (h *handler) handleTax(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTax"
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	input, err := decodeTaxInput(body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode tax input: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.EstimateTax(input))
}

func (h *handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetProfile"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	profile, err := h.service.Profile(r.Context(), sess)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, profileResponse{Profile: profile})
}

func (h *handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutProfile"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	profile, err := records.DecodeProfile(body)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	saved, warnings, err := h.service.SaveProfile(r.Context(), sess, profile)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, profileResponse{Profile: saved, Warnings: warnings})
}

func (h *handler) handleExportProfile(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportProfile"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	profile, err := h.service.Profile(r.Context(), sess)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}

	yamlBytes, err := yaml.Marshal(profile)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode profile: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="profile.yaml"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(yamlBytes); err != nil {
		h.logger.Error("failed to write YAML response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetGoal"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	goal, err := h.service.Goal(r.Context(), sess)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, goal)
}

func (h *handler) handlePutGoal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutGoal"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	goal, err := records.DecodeGoal(body)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	saved, err := h.service.SaveGoal(r.Context(), sess, goal)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *handler) handleGetSavings(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetSavings"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	ledger, err := h.service.Ledger(r.Context(), sess)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, savingsResponse{
		Ledger: ledger,
		Months: ledger.SortedMonths(),
		Total:  finance.TotalSavings(ledger),
	})
}

func (h *handler) handlePostSaving(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePostSaving"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}

	var req savingsRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if err := h.service.RecordSaving(r.Context(), sess, req.Month, req.Amount); err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.handleGetSavings(w, r)
}

func (h *handler) handleListMonthly(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListMonthly"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	entries, err := h.service.MonthlyExpenses(r.Context(), sess)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		month, err := datetime.ParseMonthKey(raw)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, "month must be in YYYY-MM format", op)
			return
		}
		entries = finance.EntriesForMonth(entries, month.Year, int(month.Month))
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *handler) handleAddMonthly(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddMonthly"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}

	var entry finance.Entry
	if !h.decodeJSON(w, r, &entry, op) {
		return
	}
	created, err := h.service.AddMonthlyExpense(r.Context(), sess, entry)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *handler) handleUpdateMonthly(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateMonthly"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}

	var entry finance.Entry
	if !h.decodeJSON(w, r, &entry, op) {
		return
	}
	entry.ID = r.PathValue("id")
	updated, err := h.service.UpdateMonthlyExpense(r.Context(), sess, entry)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *handler) handleDeleteMonthly(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteMonthly"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	if err := h.service.DeleteMonthlyExpense(r.Context(), sess, r.PathValue("id")); err != nil {
		h.respondFailure(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}

	months := constants.DefaultCompareMonths
	if raw := strings.TrimSpace(r.URL.Query().Get("months")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > constants.MaxCompareMonths {
			h.respondErrorWithOp(w, http.StatusBadRequest,
				fmt.Sprintf("months must be between 1 and %d", constants.MaxCompareMonths), op)
			return
		}
		months = n
	}

	totals, err := h.service.CompareMonths(r.Context(), sess, months, h.now())
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, totals)
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDashboard"
	start := time.Now()
	sess, ok := h.session(w, r, op)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), sess)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}

	h.logger.Info("dashboard computed",
		zap.String("op", op),
		zap.String("user", sess.UserID),
		zap.Int("suggestions", len(dashboard.Report.Suggestions)),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, dashboard)
}

func (h *handler) session(w http.ResponseWriter, r *http.Request, op string) (session.Session, bool) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnauthorized, err.Error(), op)
		return session.Session{}, false
	}
	return sess, true
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return buf.Bytes(), true
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	body, ok := h.readBody(w, r, op)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// respondFailure maps domain and storage errors to HTTP status codes.
func (h *handler) respondFailure(w http.ResponseWriter, err error, op string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, records.ErrCategoryConflict):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, records.ErrMalformedDocument),
		errors.Is(err, records.ErrUnsupportedVersion),
		errors.Is(err, finance.ErrInvalidEntry),
		errors.Is(err, advisor.ErrInvalidSaving):
		status = http.StatusBadRequest
	}
	h.respondErrorWithOp(w, status, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("advisor request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
