// Package pipeline synthesizes a reproducible sales dataset and turns it into
// a star schema with aggregate and customer views.
//
// Stages run strictly in order: Synthesize, Derive, Validate, Normalize, then
// the aggregate views and RFM segmentation over the finished fact table. All
// randomness comes from one random.Source owned by Run.
package pipeline

import (
	"time"

	apperrors "sales-dashboard/internal/errors"
)

const dateLayout = "2006-01-02"

// ProductSpec is a catalog entry with its unit price range [MinPrice, MaxPrice).
type ProductSpec struct {
	Name     string
	MinPrice float64
	MaxPrice float64
}

type Params struct {
	Seed    uint64
	Records int
	// Start and End bound transaction dates, both inclusive, at day granularity.
	Start time.Time
	End   time.Time

	Products []ProductSpec
	Regions  []string

	// Customer ids are drawn from [CustomerMin, CustomerMax).
	CustomerMin int
	CustomerMax int
}

func DefaultProducts() []ProductSpec {
	return []ProductSpec{
		{Name: "Laptop", MinPrice: 800, MaxPrice: 1500},
		{Name: "Smartphone", MinPrice: 400, MaxPrice: 900},
		{Name: "Tablet", MinPrice: 200, MaxPrice: 600},
		{Name: "Headphones", MinPrice: 50, MaxPrice: 300},
		{Name: "Monitor", MinPrice: 150, MaxPrice: 800},
	}
}

func DefaultRegions() []string {
	return []string{"North", "South", "East", "West"}
}

func DefaultParams() Params {
	return Params{
		Seed:        42,
		Records:     1000,
		Start:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Products:    DefaultProducts(),
		Regions:     DefaultRegions(),
		CustomerMin: 10000,
		CustomerMax: 99999,
	}
}

// Validate reports configuration errors. It runs before any draw is taken.
func (p Params) Validate() error {
	if p.Records <= 0 {
		return apperrors.Configurationf("record count must be positive, got %d", p.Records)
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return apperrors.Configuration("date range must have both start and end")
	}
	if truncateDay(p.End).Before(truncateDay(p.Start)) {
		return apperrors.Configurationf("date range end %s is before start %s",
			p.End.Format(dateLayout), p.Start.Format(dateLayout))
	}
	if len(p.Products) == 0 {
		return apperrors.Configuration("product catalog is empty")
	}
	if len(p.Regions) == 0 {
		return apperrors.Configuration("region catalog is empty")
	}

	seen := make(map[string]bool, len(p.Products))
	for _, prod := range p.Products {
		if prod.Name == "" {
			return apperrors.Configuration("product name cannot be empty")
		}
		if seen[prod.Name] {
			return apperrors.Configurationf("duplicate product %q in catalog", prod.Name)
		}
		seen[prod.Name] = true
		if prod.MinPrice <= 0 || prod.MaxPrice < prod.MinPrice {
			return apperrors.Configurationf("product %q has invalid price range [%g, %g)",
				prod.Name, prod.MinPrice, prod.MaxPrice)
		}
	}

	seen = make(map[string]bool, len(p.Regions))
	for _, region := range p.Regions {
		if region == "" {
			return apperrors.Configuration("region name cannot be empty")
		}
		if seen[region] {
			return apperrors.Configurationf("duplicate region %q in catalog", region)
		}
		seen[region] = true
	}

	if p.CustomerMax <= p.CustomerMin {
		return apperrors.Configurationf("customer id range [%d, %d) is empty", p.CustomerMin, p.CustomerMax)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(truncateDay(b).Sub(truncateDay(a)).Hours() / 24)
}
