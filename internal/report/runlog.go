package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one row in the projection run log.
type Entry struct {
	Timestamp     time.Time
	RunID         string
	Organization  string
	Scenario      string
	Policy        string
	Periods       int
	Alerts        int
	FinalCash     decimal.Decimal
	FinalBankDebt decimal.Decimal
}

// RunLogHeader is the CSV header for projection-log.csv.
const RunLogHeader = "timestamp,run_id,organization,scenario,policy,periods,alerts,final_cash,final_bank_debt"

const (
	numFields       = 9
	logDir          = "logs"
	logFile         = "logs/projection-log.csv"
	colTimestamp    = 0
	colRunID        = 1
	colOrganization = 2
	colScenario     = 3
	colPolicy       = 4
	colPeriods      = 5
	colAlerts       = 6
	colFinalCash    = 7
	colFinalDebt    = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colOrganization] = e.Organization
	row[colScenario] = e.Scenario
	row[colPolicy] = e.Policy
	row[colPeriods] = strconv.Itoa(e.Periods)
	row[colAlerts] = strconv.Itoa(e.Alerts)
	row[colFinalCash] = e.FinalCash.StringFixed(2)
	row[colFinalDebt] = e.FinalBankDebt.StringFixed(2)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	periods, err := strconv.Atoi(record[colPeriods])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing periods %q: %w", record[colPeriods], err)
	}
	alerts, err := strconv.Atoi(record[colAlerts])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing alerts %q: %w", record[colAlerts], err)
	}
	cash, err := decimal.NewFromString(record[colFinalCash])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing final cash %q: %w", record[colFinalCash], err)
	}
	debt, err := decimal.NewFromString(record[colFinalDebt])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing final bank debt %q: %w", record[colFinalDebt], err)
	}

	return Entry{
		Timestamp:     ts,
		RunID:         record[colRunID],
		Organization:  record[colOrganization],
		Scenario:      record[colScenario],
		Policy:        record[colPolicy],
		Periods:       periods,
		Alerts:        alerts,
		FinalCash:     cash,
		FinalBankDebt: debt,
	}, nil
}

// Append writes entries to <repoRoot>/logs/projection-log.csv, creating the
// file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(RunLogHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/projection-log.csv.
// A missing file yields no entries.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
