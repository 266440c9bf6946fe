package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

const (
	defaultTableRows = 50
	tracerName       = "sales-dashboard/services"
)

// Recorder receives the duration of every recomputation pass.
type Recorder interface {
	ObserveRecompute(elapsed time.Duration, rows int)
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(a *Analytics) { a.recorder = r }
}

// WithTableRows sets how many filtered rows a dashboard carries.
func WithTableRows(n int) Option {
	return func(a *Analytics) {
		if n > 0 {
			a.tableRows = n
		}
	}
}

func WithAchievementLimit(n int) Option {
	return func(a *Analytics) {
		if n >= 0 {
			a.achievementLimit = n
		}
	}
}

// Analytics runs the filter and aggregation pass over the store's table.
type Analytics struct {
	store            *dataset.Store
	logger           *slog.Logger
	recorder         Recorder
	tracer           trace.Tracer
	tableRows        int
	achievementLimit int
}

func NewAnalytics(store *dataset.Store, opts ...Option) *Analytics {
	a := &Analytics{
		store:            store,
		logger:           slog.Default(),
		tracer:           otel.Tracer(tracerName),
		tableRows:        defaultTableRows,
		achievementLimit: DashboardAchievementLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "analytics")
	return a
}

// Table returns the full loaded table.
func (a *Analytics) Table(ctx context.Context) (*dataset.Table, error) {
	return a.store.Table(ctx)
}

// Dimensions lists the selectable values of every filter dimension.
func (a *Analytics) Dimensions(ctx context.Context) (models.Selection, error) {
	table, err := a.store.Table(ctx)
	if err != nil {
		return models.Selection{}, err
	}
	return DefaultSelection(table), nil
}

// Filtered resolves req against the table and returns the matching view.
func (a *Analytics) Filtered(ctx context.Context, req models.FilterRequest) (*dataset.Table, models.Selection, error) {
	table, err := a.store.Table(ctx)
	if err != nil {
		return nil, models.Selection{}, err
	}
	sel := ResolveSelection(table, req)
	return Filter(table, sel), sel, nil
}

// Dashboard computes every aggregate the page shows for one selection.
func (a *Analytics) Dashboard(ctx context.Context, req models.FilterRequest) (*models.Dashboard, error) {
	ctx, span := a.tracer.Start(ctx, "analytics.dashboard")
	defer span.End()

	start := time.Now()
	table, err := a.store.Table(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	sel := ResolveSelection(table, req)
	view := Filter(table, sel)

	dash := &models.Dashboard{
		Selection:    sel,
		Options:      DefaultSelection(table),
		RowCount:     view.Len(),
		KPIs:         ComputeKPIs(view),
		Goal:         GoalProgress(view, sel.Salespeople),
		GoalSummary:  GoalSummary(view),
		Achievements: SalespersonAchievement(view, sel.Salespeople, a.achievementLimit),
		MonthlySales: AggregateBy(view, models.DimMonth),
		RegionSales:  AggregateBy(view, models.DimRegion),
		ProductSales: SortBySales(AggregateBy(view, models.DimProduct)),
		ChannelSales: AggregateBy(view, models.DimChannel),
		Salespeople:  RankSalespeople(view),
		Transactions: Transactions(view, 0, a.tableRows),
		GeneratedAt:  time.Now(),
	}
	dash.ComputeElapsed = time.Since(start)

	if a.recorder != nil {
		a.recorder.ObserveRecompute(dash.ComputeElapsed, dash.RowCount)
	}
	span.SetAttributes(
		attribute.Int("dashboard.rows", dash.RowCount),
		attribute.Int("dashboard.table_rows", table.Len()),
	)
	a.logger.Debug("dashboard computed",
		"rows", dash.RowCount,
		"total_rows", table.Len(),
		"duration", dash.ComputeElapsed)
	return dash, nil
}

// Ready reports whether the table has been loaded.
func (a *Analytics) Ready() bool {
	return a.store.Loaded()
}

// Live reports whether results can change without a restart.
func (a *Analytics) Live() bool {
	return a.store.ReloadOnChange()
}

func (a *Analytics) AchievementLimit() int {
	return a.achievementLimit
}

func (a *Analytics) Stats() map[string]any {
	stats := a.store.Stats()
	stats["table_rows"] = a.tableRows
	stats["achievement_limit"] = a.achievementLimit
	return stats
}
