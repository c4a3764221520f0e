package pipeline

import (
	"cmp"
	"fmt"
	"slices"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

type productGroup struct {
	sales, profit, units float64
	marginSum            float64
	margins              int
}

// ProductPerformance sums sales, profit and units per product key and
// averages the defined profit margins. Rows are ordered by product key.
func ProductPerformance(s *StarSchema) ([]models.ProductPerformance, error) {
	groups := make(map[int]*productGroup)
	for _, f := range s.Facts {
		g := groups[f.ProductID]
		if g == nil {
			g = &productGroup{}
			groups[f.ProductID] = g
		}
		g.sales += f.TotalSales
		g.profit += f.Profit
		g.units += f.UnitsSold
		if f.MarginDefined {
			g.marginSum += f.ProfitMargin
			g.margins++
		}
	}

	result := make([]models.ProductPerformance, 0, len(groups))
	for id, g := range groups {
		name, ok := s.ProductName(id)
		if !ok {
			return nil, apperrors.Referential(InvariantProductKey,
				fmt.Sprintf("product key %d has no dimension row", id))
		}
		row := models.ProductPerformance{
			ProductID:   id,
			Product:     name,
			TotalSales:  g.sales,
			TotalProfit: g.profit,
			UnitsSold:   g.units,
		}
		if g.margins > 0 {
			row.AvgProfitMargin = g.marginSum / float64(g.margins)
		}
		result = append(result, row)
	}
	slices.SortFunc(result, func(a, b models.ProductPerformance) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return result, nil
}

// RegionPerformance sums sales, profit and units per region key.
func RegionPerformance(s *StarSchema) ([]models.RegionPerformance, error) {
	groups := make(map[int]*models.RegionPerformance)
	for _, f := range s.Facts {
		g := groups[f.RegionID]
		if g == nil {
			name, ok := s.RegionName(f.RegionID)
			if !ok {
				return nil, apperrors.Referential(InvariantRegionKey,
					fmt.Sprintf("region key %d has no dimension row", f.RegionID), f.TransactionID)
			}
			g = &models.RegionPerformance{RegionID: f.RegionID, Region: name}
			groups[f.RegionID] = g
		}
		g.TotalSales += f.TotalSales
		g.TotalProfit += f.Profit
		g.UnitsSold += f.UnitsSold
	}

	result := make([]models.RegionPerformance, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.RegionPerformance) int {
		return cmp.Compare(a.RegionID, b.RegionID)
	})
	return result, nil
}

// MonthlyTrends sums sales and profit per month-year label, oldest first.
func MonthlyTrends(facts []models.FactRow) []models.MonthlyTrend {
	groups := make(map[string]*models.MonthlyTrend)
	for _, f := range facts {
		g := groups[f.MonthYear]
		if g == nil {
			g = &models.MonthlyTrend{MonthYear: f.MonthYear}
			groups[f.MonthYear] = g
		}
		g.TotalSales += f.TotalSales
		g.TotalProfit += f.Profit
	}

	result := make([]models.MonthlyTrend, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	// YYYY-MM labels sort chronologically.
	slices.SortFunc(result, func(a, b models.MonthlyTrend) int {
		return cmp.Compare(a.MonthYear, b.MonthYear)
	})
	return result
}
