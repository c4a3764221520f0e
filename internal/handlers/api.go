package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/pipeline"
	"sales-dashboard/internal/services"
)

const (
	// The dataset can be replaced by a regeneration at any time.
	cacheControl    = "no-cache"
	defaultPageSize = 100
	maxPageSize     = 1000
	defaultTopLimit = 20
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// cached marks a response revalidatable, tagged with the seed that built it.
func (h *APIHandlers) cached() map[string]string {
	headers := map[string]string{"Cache-Control": cacheControl}
	if summary, ok := h.analytics.Summary(); ok {
		headers["ETag"] = fmt.Sprintf(`"seed-%d"`, summary.Seed)
	}
	return headers
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.analytics.Summary()
	if !ok {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("dataset not generated"), observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccess(w, summary)
}

func (h *APIHandlers) HandleProductPerformance(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.ProductPerformance(), h.cached())
}

func (h *APIHandlers) HandleRegionPerformance(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.RegionPerformance(), h.cached())
}

func (h *APIHandlers) HandleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlyTrends(), h.cached())
}

func (h *APIHandlers) HandleProductDimension(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.ProductDimension(), h.cached())
}

func (h *APIHandlers) HandleRegionDimension(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.RegionDimension(), h.cached())
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.RFM(limit), h.cached())
}

func (h *APIHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTopLimit)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.TopCustomers(limit), h.cached())
}

func (h *APIHandlers) HandleFacts(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	if offset < 0 {
		errors.WriteError(w, h.logger, errors.BadRequest("offset must not be negative"), requestID)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	if limit <= 0 || limit > maxPageSize {
		errors.WriteError(w, h.logger, errors.BadRequest("limit must be between 1 and 1000"), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.Facts(offset, limit), h.cached())
}

type tableResponse struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (h *APIHandlers) HandleTableNames(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, pipeline.TableNames())
}

func (h *APIHandlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	table, ok := h.analytics.Table(name)
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("unknown table "+strconv.Quote(name)), observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, tableResponse{
		Name:    table.Name(),
		Columns: table.Columns(),
		Rows:    table.Rows(),
	}, h.cached())
}

func (h *APIHandlers) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	seed, err := strconv.ParseUint(r.URL.Query().Get("seed"), 10, 64)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "seed must be a non-negative integer"), requestID)
		return
	}

	if err := h.analytics.Regenerate(r.Context(), seed); err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	summary, _ := h.analytics.Summary()
	errors.WriteSuccess(w, summary)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.analytics.Ready() {
		status = "starting"
	}

	errors.WriteSuccess(w, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequestWrap(err, key+" must be an integer")
	}
	return v, nil
}
