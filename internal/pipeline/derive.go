package pipeline

import (
	"fmt"
	"math"
	"time"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/random"
)

const (
	costCeiling     = 0.9
	costFactorLow   = 0.6
	costFactorHigh  = 0.9
	holidayBoost    = 0.3
	weekendBoost    = 0.2
	monthLabel      = "2006-01"
	firstWeekendDay = 5 // Saturday, with Monday = 0
)

// Derive prices every transaction and fills in its calendar attributes and
// financial metrics. For each record, in order, it draws the unit price and
// then the cost factor.
func Derive(src *random.Source, txs []models.Transaction, products []ProductSpec) ([]models.Transaction, error) {
	prices := make(map[string]ProductSpec, len(products))
	for _, prod := range products {
		prices[prod.Name] = prod
	}

	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		spec, ok := prices[tx.Product]
		if !ok {
			return nil, apperrors.Referential("product_in_price_table",
				fmt.Sprintf("product %q has no price range", tx.Product), tx.TransactionID)
		}

		price := src.Uniform(spec.MinPrice, spec.MaxPrice)
		cost := UnitCost(price, src.Uniform(costFactorLow, costFactorHigh))

		tx.Calendar = CalendarFor(tx.Date)
		units := float64(tx.BaseUnits) * SeasonalMultiplier(tx.Date)
		tx.Financials = ComputeFinancials(units, price, cost)
		out[i] = tx
	}
	return out, nil
}

// UnitCost discounts price by factor, never above the cost ceiling.
func UnitCost(price, factor float64) float64 {
	return math.Min(price*costCeiling, price*factor)
}

// DayOfWeek numbers days from Monday = 0 to Sunday = 6.
func DayOfWeek(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

func IsHolidayMonth(month time.Month) bool {
	return month == time.December || month == time.January
}

func IsWeekend(date time.Time) bool {
	return DayOfWeek(date) >= firstWeekendDay
}

// SeasonalMultiplier is 1, plus 0.3 in December and January, plus 0.2 on
// Saturday and Sunday.
func SeasonalMultiplier(date time.Time) float64 {
	m := 1.0
	if IsHolidayMonth(date.Month()) {
		m += holidayBoost
	}
	if IsWeekend(date) {
		m += weekendBoost
	}
	return m
}

func CalendarFor(date time.Time) models.Calendar {
	y, m, _ := date.Date()
	return models.Calendar{
		DayOfWeek:   DayOfWeek(date),
		Month:       int(m),
		IsHoliday:   IsHolidayMonth(m),
		MonthYear:   date.Format(monthLabel),
		Quarter:     fmt.Sprintf("%dQ%d", y, (int(m)-1)/3+1),
		CohortMonth: time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC).Format(monthLabel),
	}
}

// ComputeFinancials derives sales, cost, profit and margin. The margin is
// left undefined when total sales is zero.
func ComputeFinancials(units, price, cost float64) models.Financials {
	f := models.Financials{
		UnitsSold:  units,
		UnitPrice:  price,
		UnitCost:   cost,
		TotalSales: units * price,
		TotalCost:  units * cost,
	}
	f.Profit = f.TotalSales - f.TotalCost
	if f.TotalSales != 0 {
		f.ProfitMargin = f.Profit / f.TotalSales * 100
		f.MarginDefined = true
	}
	return f
}
