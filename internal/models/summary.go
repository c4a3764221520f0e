package models

import "time"

type ProductPerformance struct {
	ProductID       int     `json:"product_id"`
	Product         string  `json:"product"`
	TotalSales      float64 `json:"total_sales"`
	TotalProfit     float64 `json:"total_profit"`
	UnitsSold       float64 `json:"units_sold"`
	AvgProfitMargin float64 `json:"avg_profit_margin"`
}

type RegionPerformance struct {
	RegionID    int     `json:"region_id"`
	Region      string  `json:"region"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	UnitsSold   float64 `json:"units_sold"`
}

type MonthlyTrend struct {
	MonthYear   string  `json:"month_year"`
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
}

// RFMRecord is the Recency/Frequency/Monetary triple for one customer.
type RFMRecord struct {
	CustomerID int     `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
}

type DatasetSummary struct {
	Seed         uint64    `json:"seed"`
	Records      int       `json:"records"`
	Customers    int       `json:"customers"`
	FirstDate    time.Time `json:"first_date"`
	LastDate     time.Time `json:"last_date"`
	SnapshotDate time.Time `json:"snapshot_date"`
	TotalSales   float64   `json:"total_sales"`
	TotalProfit  float64   `json:"total_profit"`
	GeneratedAt  time.Time `json:"generated_at"`
}
