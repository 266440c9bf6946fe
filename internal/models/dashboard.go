package models

import "time"

// Dashboard is everything a single render pass needs for one selection.
type Dashboard struct {
	Selection      Selection         `json:"selection"`
	Options        Selection         `json:"options"`
	RowCount       int               `json:"row_count"`
	KPIs           KPISet            `json:"kpis"`
	Goal           GoalProgress      `json:"goal"`
	GoalSummary    GoalSummary       `json:"goal_summary"`
	Achievements   []Achievement     `json:"achievements"`
	MonthlySales   []GroupTotal      `json:"monthly_sales"`
	RegionSales    []GroupTotal      `json:"region_sales"`
	ProductSales   []GroupTotal      `json:"product_sales"`
	ChannelSales   []GroupTotal      `json:"channel_sales"`
	Salespeople    []SalespersonRank `json:"salespeople"`
	Transactions   []Transaction     `json:"transactions"`
	GeneratedAt    time.Time         `json:"generated_at"`
	ComputeElapsed time.Duration     `json:"compute_elapsed_ns"`
}
