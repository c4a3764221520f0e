package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testParams() pipeline.Params {
	p := pipeline.DefaultParams()
	p.Records = 200
	return p
}

func newLoadedAnalytics(t *testing.T) *Analytics {
	t.Helper()
	a := NewAnalytics(testLogger())
	if err := a.Generate(context.Background(), testParams()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return a
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(nil)
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
	if a.Ready() {
		t.Error("new analytics should not be ready")
	}
}

func TestAnalytics_Generate(t *testing.T) {
	a := newLoadedAnalytics(t)

	if !a.Ready() {
		t.Fatal("analytics should be ready after Generate")
	}
	if got := len(a.Facts(0, 0)); got != 200 {
		t.Errorf("expected 200 facts, got %d", got)
	}
	if len(a.ProductPerformance()) == 0 {
		t.Error("ProductPerformance() should return data")
	}
	if len(a.RegionPerformance()) == 0 {
		t.Error("RegionPerformance() should return data")
	}
	if len(a.MonthlyTrends()) == 0 {
		t.Error("MonthlyTrends() should return data")
	}
	if len(a.RFM(0)) == 0 {
		t.Error("RFM() should return data")
	}

	summary, ok := a.Summary()
	if !ok {
		t.Fatal("Summary() should report a dataset")
	}
	if summary.Records != 200 || summary.Seed != 42 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.GeneratedAt.IsZero() {
		t.Error("summary should carry generation time")
	}
}

func TestAnalytics_GenerateFailureKeepsPreviousDataset(t *testing.T) {
	a := newLoadedAnalytics(t)
	before := a.Facts(0, 1)[0]

	bad := testParams()
	bad.End = bad.Start.AddDate(0, 0, -1)

	err := a.Generate(context.Background(), bad)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !apperrors.Is(err, apperrors.CodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if after := a.Facts(0, 1)[0]; after != before {
		t.Error("failed run should not replace the dataset")
	}
}

func TestAnalytics_Regenerate(t *testing.T) {
	a := NewAnalytics(testLogger())
	if err := a.Regenerate(context.Background(), 1); !apperrors.Is(err, apperrors.CodeServiceUnavail) {
		t.Errorf("expected service unavailable before first run, got %v", err)
	}

	a = newLoadedAnalytics(t)
	first := a.Facts(0, 0)

	if err := a.Regenerate(context.Background(), 99); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	summary, _ := a.Summary()
	if summary.Seed != 99 {
		t.Errorf("expected seed 99, got %d", summary.Seed)
	}
	if summary.Records != len(first) {
		t.Errorf("regeneration should keep record count, got %d", summary.Records)
	}
	if a.Facts(0, 1)[0] == first[0] {
		t.Error("a new seed should produce a different dataset")
	}

	if err := a.Regenerate(context.Background(), 42); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if a.Facts(0, 1)[0] != first[0] {
		t.Error("returning to the original seed should reproduce the dataset")
	}
	if runs := a.Stats()["runs"].(int64); runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
}

func TestAnalytics_RegenerateLimited(t *testing.T) {
	a := newLoadedAnalytics(t)
	a.LimitRegeneration(0.001)

	if err := a.Regenerate(context.Background(), 7); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if err := a.Regenerate(context.Background(), 8); !apperrors.Is(err, apperrors.CodeRateLimit) {
		t.Errorf("expected rate limit on second regeneration, got %v", err)
	}
	if summary, _ := a.Summary(); summary.Seed != 7 {
		t.Errorf("limited regeneration should keep seed 7, got %d", summary.Seed)
	}
}

func TestAnalytics_Facts(t *testing.T) {
	a := newLoadedAnalytics(t)

	tests := []struct {
		name          string
		offset, limit int
		want          int
	}{
		{name: "all", offset: 0, limit: 0, want: 200},
		{name: "first page", offset: 0, limit: 50, want: 50},
		{name: "last partial page", offset: 180, limit: 50, want: 20},
		{name: "past end", offset: 200, limit: 10, want: 0},
		{name: "negative offset", offset: -1, limit: 10, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(a.Facts(tt.offset, tt.limit)); got != tt.want {
				t.Errorf("Facts(%d, %d) returned %d rows, want %d", tt.offset, tt.limit, got, tt.want)
			}
		})
	}

	if id := a.Facts(180, 1)[0].TransactionID; id != "TX-00181" {
		t.Errorf("expected TX-00181, got %s", id)
	}
}

func TestAnalytics_TopCustomers(t *testing.T) {
	a := newLoadedAnalytics(t)

	top := a.TopCustomers(10)
	if len(top) != 10 {
		t.Fatalf("expected 10 customers, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Monetary < top[i].Monetary {
			t.Error("TopCustomers() should be sorted by monetary descending")
		}
	}

	rfm := a.RFM(0)
	for i := 1; i < len(rfm); i++ {
		if rfm[i-1].CustomerID >= rfm[i].CustomerID {
			t.Fatal("RFM() should be ordered by customer id")
		}
	}
}

func TestAnalytics_Table(t *testing.T) {
	a := NewAnalytics(testLogger())
	if _, ok := a.Table(pipeline.TableFact); ok {
		t.Error("Table() should report false without a dataset")
	}

	a = newLoadedAnalytics(t)
	tbl, ok := a.Table(pipeline.TableByMonth)
	if !ok {
		t.Fatal("expected by_month table")
	}
	if len(tbl.Rows()) != len(a.MonthlyTrends()) {
		t.Error("table rows should match monthly trends")
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := newLoadedAnalytics(t)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(seed uint64) {
			defer func() { done <- true }()

			if seed%3 == 0 {
				_ = a.Regenerate(context.Background(), seed)
			}
			_ = a.ProductPerformance()
			_ = a.RegionPerformance()
			_ = a.MonthlyTrends()
			_ = a.TopCustomers(5)
			_, _ = a.Summary()
		}(uint64(i))
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := NewAnalytics(testLogger())

	if got := a.ProductPerformance(); got == nil || len(got) != 0 {
		t.Errorf("ProductPerformance() should return empty slice, got %v", got)
	}
	if got := a.RegionPerformance(); got == nil || len(got) != 0 {
		t.Errorf("RegionPerformance() should return empty slice, got %v", got)
	}
	if got := a.MonthlyTrends(); got == nil || len(got) != 0 {
		t.Errorf("MonthlyTrends() should return empty slice, got %v", got)
	}
	if got := a.RFM(10); got == nil || len(got) != 0 {
		t.Errorf("RFM() should return empty slice, got %v", got)
	}
	if got := a.Facts(0, 10); got == nil || len(got) != 0 {
		t.Errorf("Facts() should return empty slice, got %v", got)
	}
	if _, ok := a.Summary(); ok {
		t.Error("Summary() should report no dataset")
	}
	if ready := a.Stats()["ready"].(bool); ready {
		t.Error("Stats() should report not ready")
	}
}

func BenchmarkAnalytics_Generate(b *testing.B) {
	a := NewAnalytics(testLogger())
	p := pipeline.DefaultParams()

	for b.Loop() {
		if err := a.Generate(context.Background(), p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalytics_TopCustomers(b *testing.B) {
	a := NewAnalytics(testLogger())
	if err := a.Generate(context.Background(), pipeline.DefaultParams()); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for b.Loop() {
		_ = a.TopCustomers(20)
	}
}
