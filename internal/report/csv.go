// Package report renders projection results as CSV files, terminal tables
// and the append-only run log.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/furrow-dev/furrow/internal/debtpool"
	"github.com/furrow-dev/furrow/internal/model"
)

// WaterfallHeader is the CSV header for waterfall.csv.
const WaterfallHeader = "period,simulated,revenue,cost,operating_cash_flow,investment,debt_service,baseline_repayment,adjusted_repayment,new_borrowing,minimum_cash,provisional,surplus,ending_cash,ending_bank_debt,alert,shortfall,unabsorbed_repayment"

const (
	wfNumFields     = 18
	wfColPeriod     = 0
	wfColSimulated  = 1
	wfColRevenue    = 2
	wfColCost       = 3
	wfColOCF        = 4
	wfColInvestment = 5
	wfColService    = 6
	wfColBaseline   = 7
	wfColAdjusted   = 8
	wfColBorrowing  = 9
	wfColMinimum    = 10
	wfColProvision  = 11
	wfColSurplus    = 12
	wfColCash       = 13
	wfColBankDebt   = 14
	wfColAlert      = 15
	wfColShortfall  = 16
	wfColUnabsorbed = 17
)

// MarshalWaterfall converts one waterfall state to a CSV row. Amounts are
// written with two decimal places.
func MarshalWaterfall(st model.WaterfallState) []string {
	row := make([]string, wfNumFields)
	row[wfColPeriod] = string(st.Period)
	row[wfColSimulated] = strconv.FormatBool(st.Simulated)
	row[wfColRevenue] = st.Revenue.StringFixed(2)
	row[wfColCost] = st.Cost.StringFixed(2)
	row[wfColOCF] = st.OperatingCashFlow.StringFixed(2)
	row[wfColInvestment] = st.Investment.StringFixed(2)
	row[wfColService] = st.DebtService.StringFixed(2)
	row[wfColBaseline] = st.BaselineRepayment.StringFixed(2)
	row[wfColAdjusted] = st.AdjustedRepayment.StringFixed(2)
	row[wfColBorrowing] = st.NewBorrowing.StringFixed(2)
	row[wfColMinimum] = st.MinimumCash.StringFixed(2)
	row[wfColProvision] = st.Provisional.StringFixed(2)
	row[wfColSurplus] = st.Surplus.StringFixed(2)
	row[wfColCash] = st.EndingCash.StringFixed(2)
	row[wfColBankDebt] = st.EndingBankDebt.StringFixed(2)
	row[wfColAlert] = strconv.FormatBool(st.Alert)
	row[wfColShortfall] = st.Shortfall.StringFixed(2)
	row[wfColUnabsorbed] = st.UnabsorbedRepayment.StringFixed(2)
	return row
}

// WriteWaterfall writes states as CSV with a header row.
func WriteWaterfall(w io.Writer, states []model.WaterfallState) error {
	rows := make([][]string, 0, len(states))
	for _, st := range states {
		rows = append(rows, MarshalWaterfall(st))
	}
	return writeCSV(w, WaterfallHeader, rows)
}

// BalanceSheetHeader is the CSV header for balance-sheet.csv.
const BalanceSheetHeader = "period,cash,receivables,inventory,current_assets,land,machinery,other_fixed,fixed_assets,total_assets,suppliers,short_term_bank_debt,current_liabilities,long_term_bank_debt,land_debt,leases,other_obligations,long_term_liabilities,total_liabilities,share_capital,opening_equity,net_result,retained_earnings,equity,total_liabilities_and_equity,difference,balanced"

const bsNumFields = 27

// MarshalBalanceSheet converts one snapshot to a CSV row in header order.
func MarshalBalanceSheet(s model.BalanceSheetSnapshot) []string {
	row := make([]string, 0, bsNumFields)
	row = append(row, string(s.Period))
	for _, v := range []interface{ StringFixed(int32) string }{
		s.CurrentAssets.Cash,
		s.CurrentAssets.Receivables,
		s.CurrentAssets.Inventory,
		s.CurrentAssets.Total,
		s.FixedAssets.Land,
		s.FixedAssets.Machinery,
		s.FixedAssets.Other,
		s.FixedAssets.Total,
		s.TotalAssets,
		s.CurrentLiabilities.Suppliers,
		s.CurrentLiabilities.ShortTermBankDebt,
		s.CurrentLiabilities.Total,
		s.LongTermLiabilities.LongTermBankDebt,
		s.LongTermLiabilities.LandDebt,
		s.LongTermLiabilities.Leases,
		s.LongTermLiabilities.OtherObligations,
		s.LongTermLiabilities.Total,
		s.TotalLiabilities,
		s.Equity.ShareCapital,
		s.Equity.OpeningEquity,
		s.Equity.NetResult,
		s.Equity.RetainedEarnings,
		s.Equity.Total,
		s.TotalLiabilitiesAndEquity,
		s.Difference,
	} {
		row = append(row, v.StringFixed(2))
	}
	row = append(row, strconv.FormatBool(s.Balanced))
	return row
}

// WriteBalanceSheet writes snapshots as CSV with a header row.
func WriteBalanceSheet(w io.Writer, snapshots []model.BalanceSheetSnapshot) error {
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, MarshalBalanceSheet(s))
	}
	return writeCSV(w, BalanceSheetHeader, rows)
}

// PositionHeader is the CSV header for debt-position.csv.
const PositionHeader = "period,total_debt,bank_debt,foreign_exposure,cash,net_debt,debt_to_revenue,debt_to_ebitda"

const (
	posNumFields  = 8
	posColPeriod  = 0
	posColTotal   = 1
	posColBank    = 2
	posColForeign = 3
	posColCash    = 4
	posColNet     = 5
	posColRevenue = 6
	posColEBITDA  = 7
)

// MarshalPosition converts one position row to CSV. Ratios keep four places.
func MarshalPosition(r debtpool.PositionRow) []string {
	row := make([]string, posNumFields)
	row[posColPeriod] = string(r.Period)
	row[posColTotal] = r.TotalDebt.StringFixed(2)
	row[posColBank] = r.BankDebt.StringFixed(2)
	row[posColForeign] = r.ForeignExposure.StringFixed(2)
	row[posColCash] = r.Cash.StringFixed(2)
	row[posColNet] = r.NetDebt.StringFixed(2)
	row[posColRevenue] = r.DebtToRevenue.StringFixed(4)
	row[posColEBITDA] = r.DebtToEBITDA.StringFixed(4)
	return row
}

// WritePosition writes position rows as CSV with a header row.
func WritePosition(w io.Writer, rows []debtpool.PositionRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, MarshalPosition(r))
	}
	return writeCSV(w, PositionHeader, records)
}

func writeCSV(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
