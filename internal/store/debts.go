package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

const (
	queryInstruments = `SELECT id, name, category, currency, original_value, contract_rate, term
FROM debt_instruments
WHERE organization_id = $1
ORDER BY id`

	querySchedule = `SELECT instrument_id, season, amount
FROM debt_schedule
WHERE organization_id = $1
ORDER BY instrument_id, season`
)

// DebtStore reads one organization's debt instruments and schedules.
type DebtStore struct {
	db    *sql.DB
	orgID string
}

// NewDebtStore creates a DebtStore over an open database.
func NewDebtStore(db *sql.DB, orgID string) *DebtStore {
	return &DebtStore{db: db, orgID: orgID}
}

// LoadDebts returns every instrument of the organization with its schedule
// attached. A schedule row for an unknown instrument is a data integrity
// error.
func (s *DebtStore) LoadDebts(ctx context.Context) ([]model.DebtInstrument, error) {
	debts, byID, err := s.loadInstruments(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadSchedules(ctx, debts, byID); err != nil {
		return nil, err
	}
	return debts, nil
}

func (s *DebtStore) loadInstruments(ctx context.Context) ([]model.DebtInstrument, map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, queryInstruments, s.orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying debt instruments: %w", err)
	}
	defer rows.Close()

	var debts []model.DebtInstrument
	byID := make(map[string]int)
	for rows.Next() {
		var (
			inst               model.DebtInstrument
			category, currency string
			term               sql.NullString
			value, rate        decimal.Decimal
		)
		if err := rows.Scan(&inst.ID, &inst.Name, &category, &currency, &value, &rate, &term); err != nil {
			return nil, nil, fmt.Errorf("scanning debt instrument: %w", err)
		}
		cur, err := model.ParseCurrency(currency)
		if err != nil {
			return nil, nil, &model.DataIntegrityError{Instrument: inst.ID, Reason: "unknown currency " + currency}
		}
		inst.Category = model.ParseCategory(category)
		inst.RawCategory = category
		inst.Currency = cur
		inst.OriginalValue = value
		inst.ContractRate = rate
		inst.Term = parseTerm(term.String)
		inst.Schedule = make(map[model.Period]decimal.Decimal)

		byID[inst.ID] = len(debts)
		debts = append(debts, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating debt instruments: %w", err)
	}
	return debts, byID, nil
}

func (s *DebtStore) loadSchedules(ctx context.Context, debts []model.DebtInstrument, byID map[string]int) error {
	rows, err := s.db.QueryContext(ctx, querySchedule, s.orgID)
	if err != nil {
		return fmt.Errorf("querying debt schedule: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, season string
			amount     decimal.Decimal
		)
		if err := rows.Scan(&id, &season, &amount); err != nil {
			return fmt.Errorf("scanning debt schedule: %w", err)
		}
		i, ok := byID[id]
		if !ok {
			return &model.DataIntegrityError{Instrument: id, Reason: "schedule row for unknown instrument"}
		}
		p, err := period.Parse(season)
		if err != nil {
			return &model.DataIntegrityError{Instrument: id, Period: model.Period(season), Reason: err.Error()}
		}
		debts[i].Schedule[p] = debts[i].Schedule[p].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating debt schedule: %w", err)
	}
	return nil
}

func parseTerm(s string) model.Term {
	switch t := model.Term(strings.ToUpper(s)); t {
	case model.TermShort, model.TermLong:
		return t
	default:
		return model.TermUnspecified
	}
}
