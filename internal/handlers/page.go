package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

// PageInfo is the static text around the dashboard.
type PageInfo struct {
	Title    string
	Subtitle string
	Version  string
	DataFile string
}

type PageHandlers struct {
	analytics *services.Analytics
	renderer  *charts.Renderer
	info      PageInfo
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, renderer *charts.Renderer, info PageInfo, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		renderer:  renderer,
		info:      info,
		logger:    logger,
	}
}

// HandleDashboard renders the full page. Query filters work the same as on
// the JSON API, so a filtered view can be bookmarked.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	req, err := parseFilters(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	dash, err := h.analytics.Dashboard(ctx, req)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	panels, err := h.renderer.Panels(dash)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render charts"))
		return
	}

	var buf bytes.Buffer
	page := templates.Dashboard(templates.Page{
		Title:     h.info.Title,
		Subtitle:  h.info.Subtitle,
		Version:   h.info.Version,
		DataFile:  h.info.DataFile,
		Dashboard: dash,
		Panels:    panels,
	})
	if err := page.Render(ctx, &buf); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render page"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("page write interrupted", "error", err)
	}
}
