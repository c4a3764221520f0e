package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/pipeline"
)

// Analytics serves the current dataset. A dataset is never modified; a new
// run builds a fresh one and swaps it in.
type Analytics struct {
	mu          sync.RWMutex
	dataset     *pipeline.Dataset
	params      pipeline.Params
	generatedAt time.Time
	runs        atomic.Int64
	regenLimit  *rate.Limiter
	logger      *slog.Logger
}

const regenerateBurst = 1

func NewAnalytics(logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{logger: logger}
}

// Generate runs the pipeline for p and replaces the current dataset on
// success. On failure the previous dataset stays in place.
func (a *Analytics) Generate(ctx context.Context, p pipeline.Params) error {
	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	span.SetTag("seed", fmt.Sprint(p.Seed))
	span.SetTag("records", fmt.Sprint(p.Records))
	defer span.FinishAndLog(ctx, a.logger)

	logger := observability.RunLogger(a.logger, p.Seed, p.Records)
	start := time.Now()

	ds, err := pipeline.Run(ctx, p, logger)
	observability.PipelineRunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.SetError(err)
		observability.PipelineRunsTotal.WithLabelValues(observability.OutcomeFailure, errorCode(err)).Inc()
		logger.Error("pipeline run failed", "error", err)
		return fmt.Errorf("generate dataset: %w", err)
	}
	observability.PipelineRunsTotal.WithLabelValues(observability.OutcomeSuccess, "").Inc()

	summary := ds.Summary()
	observability.FactRows.Set(float64(summary.Records))
	observability.RFMCustomers.Set(float64(summary.Customers))
	observability.TotalProfit.Set(summary.TotalProfit)

	a.mu.Lock()
	a.dataset = ds
	a.params = p
	a.generatedAt = time.Now()
	a.mu.Unlock()
	a.runs.Add(1)

	duration := time.Since(start)
	logger.Info("dataset generated",
		"facts", summary.Records,
		"customers", summary.Customers,
		"months", len(ds.ByMonth),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(summary.Records)/duration.Seconds()),
	)
	return nil
}

// LimitRegeneration bounds how often Regenerate may run across all callers.
// Without it regeneration is unlimited.
func (a *Analytics) LimitRegeneration(rps float64) {
	a.regenLimit = rate.NewLimiter(rate.Limit(rps), regenerateBurst)
}

// Regenerate reruns the last parameters under a new seed.
func (a *Analytics) Regenerate(ctx context.Context, seed uint64) error {
	a.mu.RLock()
	p := a.params
	loaded := a.dataset != nil
	a.mu.RUnlock()

	if !loaded {
		return apperrors.ServiceUnavailable("no dataset has been generated yet")
	}
	if a.regenLimit != nil && !a.regenLimit.Allow() {
		return apperrors.RateLimit("regeneration is rate limited")
	}
	p.Seed = seed
	return a.Generate(ctx, p)
}

func errorCode(err error) string {
	for _, code := range []apperrors.ErrorCode{
		apperrors.CodeConfiguration, apperrors.CodeIntegrity, apperrors.CodeReferential,
	} {
		if apperrors.Is(err, code) {
			return string(code)
		}
	}
	return string(apperrors.CodeInternal)
}

func (a *Analytics) current() *pipeline.Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

func (a *Analytics) Ready() bool {
	return a.current() != nil
}

func (a *Analytics) ProductPerformance() []models.ProductPerformance {
	if ds := a.current(); ds != nil {
		return ds.ByProduct
	}
	return []models.ProductPerformance{}
}

func (a *Analytics) RegionPerformance() []models.RegionPerformance {
	if ds := a.current(); ds != nil {
		return ds.ByRegion
	}
	return []models.RegionPerformance{}
}

func (a *Analytics) MonthlyTrends() []models.MonthlyTrend {
	if ds := a.current(); ds != nil {
		return ds.ByMonth
	}
	return []models.MonthlyTrend{}
}

func (a *Analytics) ProductDimension() []models.ProductDimension {
	if ds := a.current(); ds != nil {
		return ds.Schema.Products
	}
	return []models.ProductDimension{}
}

func (a *Analytics) RegionDimension() []models.RegionDimension {
	if ds := a.current(); ds != nil {
		return ds.Schema.Regions
	}
	return []models.RegionDimension{}
}

// Facts pages through the fact table in generation order.
func (a *Analytics) Facts(offset, limit int) []models.FactRow {
	ds := a.current()
	if ds == nil || offset < 0 || offset >= len(ds.Schema.Facts) {
		return []models.FactRow{}
	}
	end := len(ds.Schema.Facts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return ds.Schema.Facts[offset:end]
}

// RFM returns the segmentation ordered by customer id.
func (a *Analytics) RFM(limit int) []models.RFMRecord {
	ds := a.current()
	if ds == nil {
		return []models.RFMRecord{}
	}
	if limit <= 0 || len(ds.RFM) <= limit {
		return ds.RFM
	}
	return ds.RFM[:limit]
}

// TopCustomers ranks customers by monetary value, highest first, breaking
// ties by customer id.
func (a *Analytics) TopCustomers(limit int) []models.RFMRecord {
	ds := a.current()
	if ds == nil {
		return []models.RFMRecord{}
	}

	ranked := slices.Clone(ds.RFM)
	slices.SortFunc(ranked, func(x, y models.RFMRecord) int {
		if c := cmp.Compare(y.Monetary, x.Monetary); c != 0 {
			return c
		}
		return cmp.Compare(x.CustomerID, y.CustomerID)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (a *Analytics) Table(name string) (pipeline.Table, bool) {
	ds := a.current()
	if ds == nil {
		return nil, false
	}
	return ds.Table(name)
}

func (a *Analytics) Summary() (models.DatasetSummary, bool) {
	a.mu.RLock()
	ds, generatedAt := a.dataset, a.generatedAt
	a.mu.RUnlock()

	if ds == nil {
		return models.DatasetSummary{}, false
	}
	s := ds.Summary()
	s.GeneratedAt = generatedAt
	return s, true
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"runs":           a.runs.Load(),
		"last_generated": a.generatedAt,
		"ready":          a.dataset != nil,
	}
	if a.dataset != nil {
		stats["seed"] = a.dataset.Seed
		stats["facts"] = len(a.dataset.Schema.Facts)
		stats["products"] = len(a.dataset.Schema.Products)
		stats["regions"] = len(a.dataset.Schema.Regions)
		stats["months"] = len(a.dataset.ByMonth)
		stats["customers"] = len(a.dataset.RFM)
	}
	return stats
}
