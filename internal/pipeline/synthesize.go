package pipeline

import (
	"fmt"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/random"
)

const (
	transactionIDFormat = "TX-%05d"
	minBaseUnits        = 1
	maxBaseUnits        = 50 // exclusive
)

// Synthesize draws p.Records raw transactions. Draws are taken column by
// column: every date, then every product, region, base quantity and customer.
// Ids are sequential and do not consume draws.
func Synthesize(src *random.Source, p Params) []models.Transaction {
	n := p.Records
	txs := make([]models.Transaction, n)

	start := truncateDay(p.Start)
	span := daysBetween(p.Start, p.End)

	for i := range txs {
		txs[i].TransactionID = fmt.Sprintf(transactionIDFormat, i+1)
		txs[i].Date = start.AddDate(0, 0, src.IntRange(0, span+1))
	}
	for i := range txs {
		txs[i].Product = p.Products[src.Choice(len(p.Products))].Name
	}
	for i := range txs {
		txs[i].Region = p.Regions[src.Choice(len(p.Regions))]
	}
	for i := range txs {
		txs[i].BaseUnits = src.IntRange(minBaseUnits, maxBaseUnits)
	}
	for i := range txs {
		txs[i].CustomerID = src.IntRange(p.CustomerMin, p.CustomerMax)
	}

	return txs
}
