package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const maxCustomers = 25

var productTableTemplate = template.Must(template.New("productTable").Parse(`
<div id="products-content">
<table class="modern-table">
<thead><tr><th>Key</th><th>Product</th><th>Sales</th><th>Profit</th><th>Units</th><th>Avg Margin</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.ProductID}}</td>
<td>{{.Product}}</td>
<td><strong>${{printf "%.2f" .TotalSales}}</strong></td>
<td>${{printf "%.2f" .TotalProfit}}</td>
<td>{{printf "%.1f" .UnitsSold}}</td>
<td>{{printf "%.1f" .AvgProfitMargin}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var customerTableTemplate = template.Must(template.New("customerTable").Parse(`
<div id="customers-content">
<table class="modern-table">
<thead><tr><th>Customer</th><th>Recency (days)</th><th>Frequency</th><th>Monetary</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.CustomerID}}</td>
<td>{{.Recency}}</td>
<td>{{.Frequency}}</td>
<td><strong>${{printf "%.2f" .Monetary}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderProductTable(data []models.ProductPerformance) (string, error) {
	var buf strings.Builder
	err := productTableTemplate.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) renderCustomerTable(data []models.RFMRecord) (string, error) {
	var buf strings.Builder
	err := customerTableTemplate.Execute(&buf, data)
	return buf.String(), err
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleProductPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.renderProductTable(h.analytics.ProductPerformance())
	if err != nil {
		h.logger.Error("render product table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleRegionPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"regionsData": h.analytics.RegionPerformance(),
	})
	if err != nil {
		h.logger.Error("marshal regions data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="regions-content">Regions chart data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"monthlyData": h.analytics.MonthlyTrends(),
	})
	if err != nil {
		h.logger.Error("marshal monthly data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="monthly-content">Monthly trend chart data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := h.renderCustomerTable(h.analytics.TopCustomers(maxCustomers))
	if err != nil {
		h.logger.Error("render customer table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchAll(sse)
	flush(w)
}

type regenerateSignals struct {
	Seed uint64 `json:"seed"`
}

// HandleRegenerate builds a dataset from the seed signal sent by the page
// and pushes every view back.
func (h *SSEHandlers) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	var signals regenerateSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read regenerate signals", "error", err)
		http.Error(w, "invalid signals", http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := h.analytics.Regenerate(r.Context(), signals.Seed); err != nil {
		if errors.Is(err, errors.CodeRateLimit) {
			h.logger.Warn("regenerate rate limited", "seed", signals.Seed)
			sse.PatchElements(`<div id="status">Regeneration rate limited, try again shortly</div>`)
			flush(w)
			return
		}
		h.logger.Error("regenerate dataset", "seed", signals.Seed, "error", err)
		sse.PatchElements(`<div id="status">Regeneration failed</div>`)
		flush(w)
		return
	}

	h.patchAll(sse)
	flush(w)
}

func (h *SSEHandlers) patchAll(sse *datastar.ServerSentEventGenerator) {
	products, err := h.renderProductTable(h.analytics.ProductPerformance())
	if err != nil {
		h.logger.Error("render product table", "error", err)
		return
	}
	sse.PatchElements(products)

	customers, err := h.renderCustomerTable(h.analytics.TopCustomers(maxCustomers))
	if err != nil {
		h.logger.Error("render customer table", "error", err)
		return
	}
	sse.PatchElements(customers)

	summary, _ := h.analytics.Summary()
	allSignals, err := json.Marshal(map[string]any{
		"seed":        summary.Seed,
		"summary":     summary,
		"regionsData": h.analytics.RegionPerformance(),
		"monthlyData": h.analytics.MonthlyTrends(),
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)
}
