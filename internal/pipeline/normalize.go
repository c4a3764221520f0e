package pipeline

import (
	"fmt"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const (
	ProductKeyOffset = 1000
	RegionKeyOffset  = 2000

	InvariantProductKey = "fact_product_key_resolves"
	InvariantRegionKey  = "fact_region_key_resolves"
)

// StarSchema is the normalized form of a derived transaction set.
type StarSchema struct {
	Products []models.ProductDimension
	Regions  []models.RegionDimension
	Facts    []models.FactRow
}

// Normalize extracts product and region dimensions in first-seen order and
// rewrites every transaction into a fact row keyed by surrogate ids.
func Normalize(txs []models.Transaction) (*StarSchema, error) {
	s := &StarSchema{}

	productKeys := make(map[string]int)
	regionKeys := make(map[string]int)
	for _, tx := range txs {
		if _, ok := productKeys[tx.Product]; !ok {
			key := ProductKeyOffset + len(s.Products)
			productKeys[tx.Product] = key
			s.Products = append(s.Products, models.ProductDimension{ProductID: key, Product: tx.Product})
		}
		if _, ok := regionKeys[tx.Region]; !ok {
			key := RegionKeyOffset + len(s.Regions)
			regionKeys[tx.Region] = key
			s.Regions = append(s.Regions, models.RegionDimension{RegionID: key, Region: tx.Region})
		}
	}

	s.Facts = make([]models.FactRow, len(txs))
	for i, tx := range txs {
		productID, ok := productKeys[tx.Product]
		if !ok {
			return nil, apperrors.Referential(InvariantProductKey,
				fmt.Sprintf("product %q missing from dimension", tx.Product), tx.TransactionID)
		}
		regionID, ok := regionKeys[tx.Region]
		if !ok {
			return nil, apperrors.Referential(InvariantRegionKey,
				fmt.Sprintf("region %q missing from dimension", tx.Region), tx.TransactionID)
		}
		s.Facts[i] = models.FactRow{
			TransactionID: tx.TransactionID,
			Date:          tx.Date,
			ProductID:     productID,
			RegionID:      regionID,
			CustomerID:    tx.CustomerID,
			Financials:    tx.Financials,
			Calendar:      tx.Calendar,
		}
	}

	if err := s.CheckReferences(); err != nil {
		return nil, err
	}
	return s, nil
}

// CheckReferences verifies dimension keys are unique and that every fact row
// resolves to exactly one row in each dimension.
func (s *StarSchema) CheckReferences() error {
	productRows := make(map[int]int, len(s.Products))
	for _, p := range s.Products {
		productRows[p.ProductID]++
	}
	regionRows := make(map[int]int, len(s.Regions))
	for _, r := range s.Regions {
		regionRows[r.RegionID]++
	}

	for _, f := range s.Facts {
		if n := productRows[f.ProductID]; n != 1 {
			return apperrors.Referential(InvariantProductKey,
				fmt.Sprintf("product key %d matches %d dimension rows", f.ProductID, n), f.TransactionID)
		}
		if n := regionRows[f.RegionID]; n != 1 {
			return apperrors.Referential(InvariantRegionKey,
				fmt.Sprintf("region key %d matches %d dimension rows", f.RegionID, n), f.TransactionID)
		}
	}
	return nil
}

// ProductName resolves a product key. Dimensions are small, so a scan is fine.
func (s *StarSchema) ProductName(id int) (string, bool) {
	for _, p := range s.Products {
		if p.ProductID == id {
			return p.Product, true
		}
	}
	return "", false
}

func (s *StarSchema) RegionName(id int) (string, bool) {
	for _, r := range s.Regions {
		if r.RegionID == id {
			return r.Region, true
		}
	}
	return "", false
}
