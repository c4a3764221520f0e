package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/random"
)

// Dataset is the immutable output of one run.
type Dataset struct {
	Seed     uint64
	Schema   *StarSchema
	Snapshot time.Time

	ByProduct []models.ProductPerformance
	ByRegion  []models.RegionPerformance
	ByMonth   []models.MonthlyTrend
	RFM       []models.RFMRecord
}

// Run executes the whole pipeline for p. The same Params always produce the
// same Dataset.
func Run(ctx context.Context, p Params, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	src := random.New(p.Seed)

	raw := Synthesize(src, p)
	logger.Debug("transactions synthesized", "records", len(raw), "draws", src.Draws())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derived, err := Derive(src, raw, p.Products)
	if err != nil {
		return nil, err
	}
	logger.Debug("metrics derived", "records", len(derived), "draws", src.Draws())

	if err := Validate(derived); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := Normalize(derived)
	if err != nil {
		return nil, err
	}
	logger.Debug("schema normalized",
		"facts", len(schema.Facts),
		"products", len(schema.Products),
		"regions", len(schema.Regions),
	)

	ds := &Dataset{
		Seed:     p.Seed,
		Schema:   schema,
		Snapshot: SnapshotDate(schema.Facts),
	}
	if err := ds.summarize(ctx); err != nil {
		return nil, err
	}
	logger.Debug("views computed",
		"by_product", len(ds.ByProduct),
		"by_region", len(ds.ByRegion),
		"by_month", len(ds.ByMonth),
		"customers", len(ds.RFM),
	)
	return ds, nil
}

// summarize builds the aggregate views and RFM records. The fact table is
// read-only by now, so the views are computed concurrently.
func (d *Dataset) summarize(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := ProductPerformance(d.Schema)
		d.ByProduct = rows
		return err
	})
	g.Go(func() error {
		rows, err := RegionPerformance(d.Schema)
		d.ByRegion = rows
		return err
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.ByMonth = MonthlyTrends(d.Schema.Facts)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.RFM = Segment(d.Schema.Facts)
		return nil
	})

	return g.Wait()
}

// Summary reports headline figures for the dataset.
func (d *Dataset) Summary() models.DatasetSummary {
	s := models.DatasetSummary{
		Seed:         d.Seed,
		Records:      len(d.Schema.Facts),
		Customers:    len(d.RFM),
		SnapshotDate: d.Snapshot,
	}
	for i, f := range d.Schema.Facts {
		if i == 0 || f.Date.Before(s.FirstDate) {
			s.FirstDate = f.Date
		}
		if f.Date.After(s.LastDate) {
			s.LastDate = f.Date
		}
		s.TotalSales += f.TotalSales
		s.TotalProfit += f.Profit
	}
	return s
}
