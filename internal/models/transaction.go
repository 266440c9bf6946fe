package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const MonthLayout = "2006-01"

type Transaction struct {
	Date        time.Time       `json:"date"`
	Region      string          `json:"region"`
	Category    string          `json:"category"`
	Channel     string          `json:"channel"`
	Salesperson string          `json:"salesperson"`
	Product     string          `json:"product"`
	Units       int             `json:"units"`
	Sales       decimal.Decimal `json:"sales"`
	Cost        decimal.Decimal `json:"cost"`
	Target      decimal.Decimal `json:"target"`
	Customer    string          `json:"customer"`

	// Derived once at load time.
	Month     string              `json:"month"`
	Profit    decimal.Decimal     `json:"profit"`
	MarginPct decimal.NullDecimal `json:"margin_pct"`
}

var hundred = decimal.NewFromInt(100)

// Derive fills Month, Profit and MarginPct from the raw columns. The margin
// is rounded half to even to one decimal and left invalid when Sales is zero.
func (tx *Transaction) Derive() {
	tx.Month = tx.Date.Format(MonthLayout)
	tx.Profit = tx.Sales.Sub(tx.Cost)
	if tx.Sales.IsZero() {
		tx.MarginPct = decimal.NullDecimal{}
		return
	}
	tx.MarginPct = decimal.NewNullDecimal(tx.Profit.Div(tx.Sales).Mul(hundred).RoundBank(1))
}

type KPISet struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	AvgMargin       decimal.Decimal `json:"avg_margin"`
	TotalUnits      int             `json:"total_units"`
	UniqueCustomers int             `json:"unique_customers"`
	TotalTarget     decimal.Decimal `json:"total_target"`
}

type GroupTotal struct {
	Key   string          `json:"key"`
	Sales decimal.Decimal `json:"sales"`
}

type SalespersonRank struct {
	Name        string          `json:"name"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

type GoalProgress struct {
	ProgressPct    decimal.Decimal `json:"progress_pct"`
	TargetBaseline decimal.Decimal `json:"target_baseline"`
}

type Achievement struct {
	Salesperson    string          `json:"salesperson"`
	AchievementPct decimal.Decimal `json:"achievement_pct"`
}

type GoalStatus string

const (
	GoalExceeded GoalStatus = "exceeded"
	GoalClose    GoalStatus = "close"
	GoalBelow    GoalStatus = "below"
)

type GoalSummary struct {
	TotalTarget     decimal.Decimal `json:"total_target"`
	AchievementRate decimal.Decimal `json:"achievement_rate"`
	Status          GoalStatus      `json:"status"`
}
