package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/random"
)

func TestSynthesize(t *testing.T) {
	p := DefaultParams()
	p.Records = 300

	txs := Synthesize(random.New(p.Seed), p)
	require.Len(t, txs, 300)

	assert.Equal(t, "TX-00001", txs[0].TransactionID)
	assert.Equal(t, "TX-00300", txs[299].TransactionID)

	products := make(map[string]bool)
	for _, prod := range p.Products {
		products[prod.Name] = true
	}
	regions := make(map[string]bool)
	for _, r := range p.Regions {
		regions[r] = true
	}

	for _, tx := range txs {
		assert.False(t, tx.Date.Before(p.Start), tx.TransactionID)
		assert.False(t, tx.Date.After(p.End), tx.TransactionID)
		assert.True(t, products[tx.Product])
		assert.True(t, regions[tx.Region])
		assert.GreaterOrEqual(t, tx.BaseUnits, 1)
		assert.Less(t, tx.BaseUnits, 50)
		assert.GreaterOrEqual(t, tx.CustomerID, p.CustomerMin)
		assert.Less(t, tx.CustomerID, p.CustomerMax)
	}
}

func TestSynthesize_DrawCount(t *testing.T) {
	p := DefaultParams()
	p.Records = 10
	src := random.New(1)

	Synthesize(src, p)
	assert.Equal(t, uint64(50), src.Draws())

	_, err := Derive(src, Synthesize(random.New(1), p), p.Products)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), src.Draws())
}

func TestDerive_PricesWithinProductRange(t *testing.T) {
	p := DefaultParams()
	src := random.New(5)
	txs, err := Derive(src, Synthesize(src, p), p.Products)
	require.NoError(t, err)

	ranges := make(map[string]ProductSpec)
	for _, prod := range p.Products {
		ranges[prod.Name] = prod
	}
	for _, tx := range txs {
		r := ranges[tx.Product]
		assert.GreaterOrEqual(t, tx.UnitPrice, r.MinPrice)
		assert.Less(t, tx.UnitPrice, r.MaxPrice)
		assert.LessOrEqual(t, tx.UnitCost, tx.UnitPrice*costCeiling)
		assert.GreaterOrEqual(t, tx.UnitCost, tx.UnitPrice*costFactorLow)
		assert.InDelta(t, float64(tx.BaseUnits)*SeasonalMultiplier(tx.Date), tx.UnitsSold, epsilon)
	}
}

func TestDerive_UnknownProduct(t *testing.T) {
	txs := []models.Transaction{{TransactionID: "TX-00001", Product: "Toaster", Date: day(2023, 1, 2)}}

	_, err := Derive(random.New(1), txs, DefaultProducts())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeReferential))
}

func TestUnitCost(t *testing.T) {
	assert.InDelta(t, 70.0, UnitCost(100, 0.7), epsilon)
	assert.InDelta(t, 90.0, UnitCost(100, 0.95), epsilon, "capped at 90% of price")
	assert.InDelta(t, 90.0, UnitCost(100, 1.5), epsilon)
}

func TestSeasonalMultiplier(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want float64
	}{
		{name: "march weekday", date: day(2023, time.March, 15), want: 1.0},
		{name: "march saturday", date: day(2023, time.March, 18), want: 1.2},
		{name: "march sunday", date: day(2023, time.March, 19), want: 1.2},
		{name: "january weekday", date: day(2024, time.January, 15), want: 1.3},
		{name: "december saturday", date: day(2023, time.December, 2), want: 1.5},
		{name: "november friday", date: day(2023, time.November, 24), want: 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SeasonalMultiplier(tt.date), epsilon)
		})
	}
}

func TestCalendarFor(t *testing.T) {
	c := CalendarFor(day(2024, time.January, 15))
	assert.Equal(t, 0, c.DayOfWeek)
	assert.Equal(t, 1, c.Month)
	assert.True(t, c.IsHoliday)
	assert.Equal(t, "2024-01", c.MonthYear)
	assert.Equal(t, "2024Q1", c.Quarter)
	assert.Equal(t, "2023-12", c.CohortMonth)

	c = CalendarFor(day(2023, time.August, 31))
	assert.Equal(t, 3, c.DayOfWeek)
	assert.False(t, c.IsHoliday)
	assert.Equal(t, "2023Q3", c.Quarter)
	assert.Equal(t, "2023-07", c.CohortMonth)

	c = CalendarFor(day(2023, time.December, 31))
	assert.Equal(t, 6, c.DayOfWeek)
	assert.Equal(t, "2023Q4", c.Quarter)
	assert.Equal(t, "2023-11", c.CohortMonth)
}

func TestComputeFinancials(t *testing.T) {
	f := ComputeFinancials(3, 200, 150)
	assert.Equal(t, 600.0, f.TotalSales)
	assert.Equal(t, 450.0, f.TotalCost)
	assert.Equal(t, 150.0, f.Profit)
	assert.True(t, f.MarginDefined)
	assert.InDelta(t, 25.0, f.ProfitMargin, epsilon)

	zero := ComputeFinancials(0, 200, 150)
	assert.False(t, zero.MarginDefined)
	assert.Equal(t, 0.0, zero.ProfitMargin)
}
