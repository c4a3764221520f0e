package models

import "time"

type ProductDimension struct {
	ProductID int    `json:"product_id"`
	Product   string `json:"product"`
}

type RegionDimension struct {
	RegionID int    `json:"region_id"`
	Region   string `json:"region"`
}

// FactRow is a Transaction with product and region replaced by surrogate keys.
type FactRow struct {
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	ProductID     int       `json:"product_id"`
	RegionID      int       `json:"region_id"`
	CustomerID    int       `json:"customer_id"`
	Financials
	Calendar
}
