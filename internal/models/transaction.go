package models

import "time"

// Calendar holds the date-derived attributes shared by raw transactions and
// fact rows.
type Calendar struct {
	DayOfWeek   int    `json:"day_of_week"`
	Month       int    `json:"month"`
	IsHoliday   bool   `json:"is_holiday"`
	MonthYear   string `json:"month_year"`
	Quarter     string `json:"quarter"`
	CohortMonth string `json:"cohort_month"`
}

// Financials holds per-transaction pricing and the metrics computed from it.
// ProfitMargin is only meaningful when MarginDefined is true.
type Financials struct {
	UnitsSold     float64 `json:"units_sold"`
	UnitPrice     float64 `json:"unit_price"`
	UnitCost      float64 `json:"unit_cost"`
	TotalSales    float64 `json:"total_sales"`
	TotalCost     float64 `json:"total_cost"`
	Profit        float64 `json:"profit"`
	ProfitMargin  float64 `json:"profit_margin"`
	MarginDefined bool    `json:"margin_defined"`
}

// Transaction is a synthesized sale before normalization.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Product       string    `json:"product"`
	Region        string    `json:"region"`
	BaseUnits     int       `json:"-"`
	CustomerID    int       `json:"customer_id"`
	Financials
	Calendar
}
