package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	cacheMaxAge    = "public, max-age=300"
	cacheNoCache   = "no-cache"
	exportFilename = "sales_export.xlsx"
)

type APIHandlers struct {
	analytics    *services.Analytics
	logger       *slog.Logger
	cacheHeaders map[string]string
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	// A reloadable table can change under a cached response.
	cacheControl := cacheMaxAge
	if analytics.Live() {
		cacheControl = cacheNoCache
	}
	return &APIHandlers{
		analytics:    analytics,
		logger:       logger,
		cacheHeaders: map[string]string{"Cache-Control": cacheControl},
	}
}

type goalResponse struct {
	Progress     models.GoalProgress  `json:"progress"`
	Summary      models.GoalSummary   `json:"summary"`
	Achievements []models.Achievement `json:"achievements"`
}

type transactionsResponse struct {
	Total  int                  `json:"total"`
	Offset int                  `json:"offset"`
	Limit  int                  `json:"limit"`
	Rows   []models.Transaction `json:"rows"`
}

func (h *APIHandlers) HandleDimensions(w http.ResponseWriter, r *http.Request) {
	dims, err := h.analytics.Dimensions(r.Context())
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, r, dims, h.cacheHeaders)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, r, services.ComputeKPIs(view), h.cacheHeaders)
}

func (h *APIHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	params := breakdownParams{
		Dimension: chi.URLParam(r, "dimension"),
		Order:     r.URL.Query().Get("order"),
	}
	if params.Order == "" {
		params.Order = "key"
	}
	if err := validate.Struct(params); err != nil {
		errors.WriteError(w, r, h.logger, errors.ValidationWrap(err, "Unknown dimension or order"))
		return
	}

	view, _, ok := h.filtered(w, r)
	if !ok {
		return
	}

	totals := services.AggregateBy(view, models.Dimension(params.Dimension))
	if params.Order == "sales" {
		totals = services.SortBySales(totals)
	}
	errors.WriteSuccessWithHeaders(w, r, totals, h.cacheHeaders)
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, r, services.AggregateBy(view, models.DimMonth), h.cacheHeaders)
}

func (h *APIHandlers) HandleSalespeople(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, r, services.RankSalespeople(view), h.cacheHeaders)
}

func (h *APIHandlers) HandleGoal(w http.ResponseWriter, r *http.Request) {
	view, sel, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, r, goalResponse{
		Progress:     services.GoalProgress(view, sel.Salespeople),
		Summary:      services.GoalSummary(view),
		Achievements: services.SalespersonAchievement(view, sel.Salespeople, h.analytics.AchievementLimit()),
	}, h.cacheHeaders)
}

func (h *APIHandlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	view, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, r, transactionsResponse{
		Total:  view.Len(),
		Offset: page.Offset,
		Limit:  page.Limit,
		Rows:   services.Transactions(view, page.Offset, page.Limit),
	}, h.cacheHeaders)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilters(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	dash, err := h.analytics.Dashboard(r.Context(), req)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, r, dash, h.cacheHeaders)
}

// HandleExport downloads the filtered transactions as a workbook. The file
// is built in memory first so a failure still gets a JSON error.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, view.Rows(), services.ComputeKPIs(view)); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to build export"))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write interrupted", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.analytics.Ready() {
		status = "loading"
	}

	healthData := map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   config.Version,
	}

	errors.WriteSuccess(w, r, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, r, h.analytics.Stats())
}

// filtered resolves the request's filters against the table. On failure it
// writes the error response and reports false.
func (h *APIHandlers) filtered(w http.ResponseWriter, r *http.Request) (*dataset.Table, models.Selection, bool) {
	req, err := parseFilters(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return nil, models.Selection{}, false
	}
	view, sel, err := h.analytics.Filtered(r.Context(), req)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return nil, models.Selection{}, false
	}
	return view, sel, true
}
