package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

// signalsParam is the query parameter datastar sends signals in on GET.
const signalsParam = "datastar"

type SSEHandlers struct {
	analytics *services.Analytics
	renderer  *charts.Renderer
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, renderer *charts.Renderer, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		renderer:  renderer,
		logger:    logger,
	}
}

type filterSignals struct {
	Filters models.FilterRequest `json:"filters"`
}

// HandleRefresh recomputes the dashboard for the client's filters and
// patches every section plus the summary signal.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	dash, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	panels, err := h.renderer.Panels(dash)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render charts"))
		return
	}

	h.patch(w, r, dash,
		templates.FilterSummary(dash),
		templates.KPIs(dash),
		templates.Goal(dash),
		templates.Charts(panels),
		templates.Table(dash),
	)
}

// HandleKPIs patches the KPI cards and the goal section.
func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	dash, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	h.patch(w, r, dash, templates.FilterSummary(dash), templates.KPIs(dash), templates.Goal(dash))
}

func (h *SSEHandlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	dash, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	panels, err := h.renderer.Panels(dash)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render charts"))
		return
	}
	h.patch(w, r, dash, templates.Charts(panels))
}

func (h *SSEHandlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	dash, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	h.patch(w, r, dash, templates.Table(dash))
}

// dashboard computes the pass before the stream opens, so load and
// validation failures still answer with a JSON error.
func (h *SSEHandlers) dashboard(w http.ResponseWriter, r *http.Request) (*models.Dashboard, bool) {
	req, err := readFilters(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return nil, false
	}
	dash, err := h.analytics.Dashboard(r.Context(), req)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return nil, false
	}
	return dash, true
}

func (h *SSEHandlers) patch(w http.ResponseWriter, r *http.Request, dash *models.Dashboard, fragments ...templ.Component) {
	sse := datastar.NewSSE(w, r)

	for _, c := range fragments {
		html, err := renderHTML(r.Context(), c)
		if err != nil {
			h.logger.Error("render fragment", "error", err)
			return
		}
		if err := sse.PatchElements(html); err != nil {
			h.logger.Warn("patch elements", "error", err)
			return
		}
	}

	signals, err := json.Marshal(map[string]any{"summary": templates.SummaryOf(dash)})
	if err != nil {
		h.logger.Error("marshal summary signal", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

// readFilters takes the filter selection from datastar signals. Requests
// without signals select every value.
func readFilters(r *http.Request) (models.FilterRequest, error) {
	if r.URL.Query().Get(signalsParam) == "" {
		return models.FilterRequest{}, nil
	}

	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return models.FilterRequest{}, errors.BadRequestWrap(err, "Invalid signals")
	}
	if err := validate.Struct(signals.Filters); err != nil {
		return models.FilterRequest{}, errors.ValidationWrap(err, "Invalid filter signals")
	}
	return signals.Filters, nil
}

func renderHTML(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
