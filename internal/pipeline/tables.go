package pipeline

import (
	"strconv"

	"sales-dashboard/internal/models"
)

// Table is the plain tabular view handed to export and display layers.
// Cells are rendered as strings so two identical datasets render identically.
type Table interface {
	Name() string
	Columns() []string
	Rows() [][]string
}

const (
	TableFact             = "fact"
	TableProductDimension = "product_dimension"
	TableRegionDimension  = "region_dimension"
	TableByProduct        = "by_product"
	TableByRegion         = "by_region"
	TableByMonth          = "by_month"
	TableRFM              = "rfm"
)

type table struct {
	name    string
	columns []string
	rows    [][]string
}

func (t *table) Name() string { return t.name }
func (t *table) Columns() []string { return t.columns }
func (t *table) Rows() [][]string { return t.rows }

func TableNames() []string {
	return []string{
		TableFact, TableProductDimension, TableRegionDimension,
		TableByProduct, TableByRegion, TableByMonth, TableRFM,
	}
}

// Table renders the named table, reporting false for an unknown name.
func (d *Dataset) Table(name string) (Table, bool) {
	switch name {
	case TableFact:
		return d.factTable(), true
	case TableProductDimension:
		t := &table{name: name, columns: []string{"product_id", "product"}}
		for _, p := range d.Schema.Products {
			t.rows = append(t.rows, []string{itoa(p.ProductID), p.Product})
		}
		return t, true
	case TableRegionDimension:
		t := &table{name: name, columns: []string{"region_id", "region"}}
		for _, r := range d.Schema.Regions {
			t.rows = append(t.rows, []string{itoa(r.RegionID), r.Region})
		}
		return t, true
	case TableByProduct:
		t := &table{name: name, columns: []string{
			"product_id", "product", "total_sales", "total_profit", "units_sold", "avg_profit_margin",
		}}
		for _, p := range d.ByProduct {
			t.rows = append(t.rows, []string{
				itoa(p.ProductID), p.Product, ftoa(p.TotalSales), ftoa(p.TotalProfit),
				ftoa(p.UnitsSold), ftoa(p.AvgProfitMargin),
			})
		}
		return t, true
	case TableByRegion:
		t := &table{name: name, columns: []string{
			"region_id", "region", "total_sales", "total_profit", "units_sold",
		}}
		for _, r := range d.ByRegion {
			t.rows = append(t.rows, []string{
				itoa(r.RegionID), r.Region, ftoa(r.TotalSales), ftoa(r.TotalProfit), ftoa(r.UnitsSold),
			})
		}
		return t, true
	case TableByMonth:
		t := &table{name: name, columns: []string{"month_year", "total_sales", "total_profit"}}
		for _, m := range d.ByMonth {
			t.rows = append(t.rows, []string{m.MonthYear, ftoa(m.TotalSales), ftoa(m.TotalProfit)})
		}
		return t, true
	case TableRFM:
		t := &table{name: name, columns: []string{"customer_id", "recency", "frequency", "monetary"}}
		for _, r := range d.RFM {
			t.rows = append(t.rows, []string{
				itoa(r.CustomerID), itoa(r.Recency), itoa(r.Frequency), ftoa(r.Monetary),
			})
		}
		return t, true
	}
	return nil, false
}

func (d *Dataset) factTable() Table {
	t := &table{
		name: TableFact,
		columns: []string{
			"transaction_id", "date", "product_id", "region_id", "units_sold",
			"unit_price", "unit_cost", "total_sales", "total_cost", "profit",
			"profit_margin", "day_of_week", "month", "is_holiday", "month_year",
			"quarter", "cohort_month", "customer_id",
		},
		rows: make([][]string, 0, len(d.Schema.Facts)),
	}
	for _, f := range d.Schema.Facts {
		t.rows = append(t.rows, []string{
			f.TransactionID,
			f.Date.Format(dateLayout),
			itoa(f.ProductID),
			itoa(f.RegionID),
			ftoa(f.UnitsSold),
			ftoa(f.UnitPrice),
			ftoa(f.UnitCost),
			ftoa(f.TotalSales),
			ftoa(f.TotalCost),
			ftoa(f.Profit),
			marginCell(f.Financials),
			itoa(f.DayOfWeek),
			itoa(f.Month),
			strconv.FormatBool(f.IsHoliday),
			f.MonthYear,
			f.Quarter,
			f.CohortMonth,
			itoa(f.CustomerID),
		})
	}
	return t
}

// marginCell leaves an undefined margin empty.
func marginCell(f models.Financials) string {
	if !f.MarginDefined {
		return ""
	}
	return ftoa(f.ProfitMargin)
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
