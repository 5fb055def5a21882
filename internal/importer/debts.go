package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

// DebtsHeader is the CSV header for debts.csv.
const DebtsHeader = "id,name,category,currency,original_value,contract_rate,term,schedule"

const (
	debtNumFields   = 8
	debtColID       = 0
	debtColName     = 1
	debtColCategory = 2
	debtColCurrency = 3
	debtColValue    = 4
	debtColRate     = 5
	debtColTerm     = 6
	debtColSchedule = 7
)

// MarshalDebt converts a DebtInstrument to a CSV row. The schedule is
// written as "2024/25=100000;2025/26=50000" in period order.
func MarshalDebt(inst model.DebtInstrument) []string {
	row := make([]string, debtNumFields)
	row[debtColID] = inst.ID
	row[debtColName] = inst.Name
	row[debtColCategory] = inst.RawCategory
	if row[debtColCategory] == "" {
		row[debtColCategory] = strings.ToLower(string(inst.Category))
	}
	row[debtColCurrency] = string(inst.Currency)
	row[debtColValue] = inst.OriginalValue.String()
	row[debtColRate] = inst.ContractRate.String()
	row[debtColTerm] = strings.ToLower(string(inst.Term))

	parts := make([]string, 0, len(inst.Schedule))
	for _, p := range slices.Sorted(maps.Keys(inst.Schedule)) {
		parts = append(parts, string(p)+"="+inst.Schedule[p].String())
	}
	row[debtColSchedule] = strings.Join(parts, ";")
	return row
}

// UnmarshalDebt converts a CSV row to a DebtInstrument.
func UnmarshalDebt(record []string) (model.DebtInstrument, error) {
	if len(record) != debtNumFields {
		return model.DebtInstrument{}, fmt.Errorf("expected %d fields, got %d", debtNumFields, len(record))
	}

	id := strings.TrimSpace(record[debtColID])
	if id == "" {
		return model.DebtInstrument{}, fmt.Errorf("missing id")
	}

	currency, err := model.ParseCurrency(record[debtColCurrency])
	if err != nil {
		return model.DebtInstrument{}, err
	}

	value, err := parseAmount(record[debtColValue])
	if err != nil {
		return model.DebtInstrument{}, fmt.Errorf("parsing original_value %q: %w", record[debtColValue], err)
	}

	rate, err := parseAmount(record[debtColRate])
	if err != nil {
		return model.DebtInstrument{}, fmt.Errorf("parsing contract_rate %q: %w", record[debtColRate], err)
	}

	term, err := parseTerm(record[debtColTerm])
	if err != nil {
		return model.DebtInstrument{}, err
	}

	schedule, err := parseSchedule(record[debtColSchedule])
	if err != nil {
		return model.DebtInstrument{}, fmt.Errorf("parsing schedule: %w", err)
	}

	return model.DebtInstrument{
		ID:            id,
		Name:          record[debtColName],
		Category:      model.ParseCategory(record[debtColCategory]),
		RawCategory:   record[debtColCategory],
		Currency:      currency,
		OriginalValue: value,
		ContractRate:  rate,
		Term:          term,
		Schedule:      schedule,
	}, nil
}

// ReadDebts reads debts.csv.
func ReadDebts(r io.Reader) ([]model.DebtInstrument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = debtNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading debts CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var debts []model.DebtInstrument
	for i, rec := range records[1:] {
		inst, err := UnmarshalDebt(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if seen[inst.ID] {
			return nil, fmt.Errorf("row %d: duplicate id %q", i+2, inst.ID)
		}
		seen[inst.ID] = true
		debts = append(debts, inst)
	}
	return debts, nil
}

// WriteDebts writes debts.csv.
func WriteDebts(w io.Writer, debts []model.DebtInstrument) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(DebtsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, inst := range debts {
		if err := cw.Write(MarshalDebt(inst)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func parseSchedule(s string) (map[model.Period]decimal.Decimal, error) {
	out := make(map[model.Period]decimal.Decimal)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q: expected period=amount", part)
		}
		p, err := period.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", part, err)
		}
		amount, err := parseAmount(val)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", part, err)
		}
		out[p] = out[p].Add(amount)
	}
	return out, nil
}

func parseTerm(s string) (model.Term, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return model.TermUnspecified, nil
	case "short", "cp", "custeio":
		return model.TermShort, nil
	case "long", "lp", "investimento":
		return model.TermLong, nil
	default:
		return "", fmt.Errorf("unknown term %q", s)
	}
}

// parseAmount treats an empty cell as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
