package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

// SeriesHeader is the CSV header for series.csv.
const SeriesHeader = "period,revenue,agricultural_cost,non_agricultural_expense,investment_land,investment_machinery,investment_other,leases,baseline_repayment"

const (
	seriesNumFields        = 9
	seriesColPeriod        = 0
	seriesColRevenue       = 1
	seriesColAgCost        = 2
	seriesColNonAgExpense  = 3
	seriesColInvLand       = 4
	seriesColInvMachinery  = 5
	seriesColInvOther      = 6
	seriesColLeases        = 7
	seriesColBaselineRepay = 8
)

// SeriesRow is one period of series.csv.
type SeriesRow struct {
	Period                 model.Period
	Revenue                decimal.Decimal
	AgriculturalCost       decimal.Decimal
	NonAgriculturalExpense decimal.Decimal
	InvestmentLand         decimal.Decimal
	InvestmentMachinery    decimal.Decimal
	InvestmentOther        decimal.Decimal
	Leases                 decimal.Decimal
	BaselineRepayment      decimal.Decimal
}

// MarshalSeriesRow converts a SeriesRow to a CSV row.
func MarshalSeriesRow(r SeriesRow) []string {
	row := make([]string, seriesNumFields)
	row[seriesColPeriod] = string(r.Period)
	row[seriesColRevenue] = r.Revenue.String()
	row[seriesColAgCost] = r.AgriculturalCost.String()
	row[seriesColNonAgExpense] = r.NonAgriculturalExpense.String()
	row[seriesColInvLand] = r.InvestmentLand.String()
	row[seriesColInvMachinery] = r.InvestmentMachinery.String()
	row[seriesColInvOther] = r.InvestmentOther.String()
	row[seriesColLeases] = r.Leases.String()
	row[seriesColBaselineRepay] = r.BaselineRepayment.String()
	return row
}

// UnmarshalSeriesRow converts a CSV row to a SeriesRow. Empty cells are zero.
func UnmarshalSeriesRow(record []string) (SeriesRow, error) {
	if len(record) != seriesNumFields {
		return SeriesRow{}, fmt.Errorf("expected %d fields, got %d", seriesNumFields, len(record))
	}

	p, err := period.Parse(record[seriesColPeriod])
	if err != nil {
		return SeriesRow{}, err
	}

	r := SeriesRow{Period: p}
	fields := []struct {
		col  int
		name string
		dst  *decimal.Decimal
	}{
		{seriesColRevenue, "revenue", &r.Revenue},
		{seriesColAgCost, "agricultural_cost", &r.AgriculturalCost},
		{seriesColNonAgExpense, "non_agricultural_expense", &r.NonAgriculturalExpense},
		{seriesColInvLand, "investment_land", &r.InvestmentLand},
		{seriesColInvMachinery, "investment_machinery", &r.InvestmentMachinery},
		{seriesColInvOther, "investment_other", &r.InvestmentOther},
		{seriesColLeases, "leases", &r.Leases},
		{seriesColBaselineRepay, "baseline_repayment", &r.BaselineRepayment},
	}
	for _, f := range fields {
		v, err := parseAmount(record[f.col])
		if err != nil {
			return SeriesRow{}, fmt.Errorf("parsing %s %q: %w", f.name, record[f.col], err)
		}
		*f.dst = v
	}
	return r, nil
}

// ReadSeries reads series.csv into a model.Series.
func ReadSeries(r io.Reader) (model.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = seriesNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return model.Series{}, fmt.Errorf("reading series CSV: %w", err)
	}

	s := model.NewSeries()
	if len(records) <= 1 {
		return s, nil
	}

	seen := make(map[model.Period]bool)
	for i, rec := range records[1:] {
		row, err := UnmarshalSeriesRow(rec)
		if err != nil {
			return model.Series{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		if seen[row.Period] {
			return model.Series{}, fmt.Errorf("row %d: duplicate period %s", i+2, row.Period)
		}
		seen[row.Period] = true
		addRow(s, row)
	}
	return s, nil
}

func addRow(s model.Series, r SeriesRow) {
	p := r.Period
	s.Revenue[p] = r.Revenue
	s.AgriculturalCost[p] = r.AgriculturalCost
	s.NonAgriculturalExpense[p] = r.NonAgriculturalExpense
	s.Investment[model.AssetLand][p] = r.InvestmentLand
	s.Investment[model.AssetMachinery][p] = r.InvestmentMachinery
	s.Investment[model.AssetOther][p] = r.InvestmentOther
	s.Leases[p] = r.Leases
	s.BaselineRepayment[p] = r.BaselineRepayment
}

// Rows flattens a Series back into period-ordered rows.
func Rows(s model.Series) []SeriesRow {
	var rows []SeriesRow
	for _, p := range slices.Sorted(slices.Values(s.Periods())) {
		rows = append(rows, SeriesRow{
			Period:                 p,
			Revenue:                s.Revenue[p],
			AgriculturalCost:       s.AgriculturalCost[p],
			NonAgriculturalExpense: s.NonAgriculturalExpense[p],
			InvestmentLand:         s.Investment[model.AssetLand][p],
			InvestmentMachinery:    s.Investment[model.AssetMachinery][p],
			InvestmentOther:        s.Investment[model.AssetOther][p],
			Leases:                 s.Leases[p],
			BaselineRepayment:      s.BaselineRepayment[p],
		})
	}
	return rows
}

// WriteSeries writes series.csv in period order.
func WriteSeries(w io.Writer, s model.Series) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(SeriesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range Rows(s) {
		if err := cw.Write(MarshalSeriesRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
