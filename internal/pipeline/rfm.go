package pipeline

import (
	"cmp"
	"slices"
	"time"

	"sales-dashboard/internal/models"
)

// SnapshotDate is the day after the latest transaction. It is the zero time
// for an empty fact table.
func SnapshotDate(facts []models.FactRow) time.Time {
	if len(facts) == 0 {
		return time.Time{}
	}
	latest := facts[0].Date
	for _, f := range facts[1:] {
		if f.Date.After(latest) {
			latest = f.Date
		}
	}
	return truncateDay(latest).AddDate(0, 0, 1)
}

// Segment computes one RFM record per distinct customer, ordered by
// customer id.
func Segment(facts []models.FactRow) []models.RFMRecord {
	snapshot := SnapshotDate(facts)

	type customer struct {
		latest    time.Time
		frequency int
		monetary  float64
	}
	customers := make(map[int]*customer)
	for _, f := range facts {
		c := customers[f.CustomerID]
		if c == nil {
			c = &customer{latest: f.Date}
			customers[f.CustomerID] = c
		}
		if f.Date.After(c.latest) {
			c.latest = f.Date
		}
		c.frequency++
		c.monetary += f.TotalSales
	}

	result := make([]models.RFMRecord, 0, len(customers))
	for id, c := range customers {
		result = append(result, models.RFMRecord{
			CustomerID: id,
			Recency:    daysBetween(c.latest, snapshot),
			Frequency:  c.frequency,
			Monetary:   c.monetary,
		})
	}
	slices.SortFunc(result, func(a, b models.RFMRecord) int {
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	return result
}
