package pipeline

import (
	"fmt"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const (
	InvariantCostWithinPrice = "unit_cost_le_unit_price"
	InvariantUniqueID        = "unique_transaction_id"

	// maxReportedRecords caps the ids attached to a violation.
	maxReportedRecords = 10
)

// Validate checks the derived dataset. Any violation aborts the run.
func Validate(txs []models.Transaction) error {
	var overpriced []string
	count := 0
	for _, tx := range txs {
		if tx.UnitCost > tx.UnitPrice {
			count++
			if len(overpriced) < maxReportedRecords {
				overpriced = append(overpriced, tx.TransactionID)
			}
		}
	}
	if count > 0 {
		return apperrors.Integrity(InvariantCostWithinPrice,
			fmt.Sprintf("unit cost exceeds unit price in %d record(s)", count), overpriced...)
	}

	seen := make(map[string]struct{}, len(txs))
	var dupes []string
	count = 0
	for _, tx := range txs {
		if _, ok := seen[tx.TransactionID]; ok {
			count++
			if len(dupes) < maxReportedRecords {
				dupes = append(dupes, tx.TransactionID)
			}
			continue
		}
		seen[tx.TransactionID] = struct{}{}
	}
	if count > 0 {
		return apperrors.Integrity(InvariantUniqueID,
			fmt.Sprintf("%d duplicate transaction id(s) detected", count), dupes...)
	}

	return nil
}
