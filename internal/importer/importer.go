// Package importer reads and writes the CSV inputs of a furrow project:
// debt instruments and per-period revenue, cost and investment series.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/furrow-dev/furrow/internal/model"
)

// DebtFile loads debt instruments from a CSV file.
type DebtFile struct {
	Path string
}

// NewDebtFile resolves rel against repoRoot.
func NewDebtFile(repoRoot, rel string) *DebtFile {
	return &DebtFile{Path: resolve(repoRoot, rel)}
}

// LoadDebts reads the file. A missing file yields an empty pool.
func (f *DebtFile) LoadDebts(ctx context.Context) ([]model.DebtInstrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening debts: %w", err)
	}
	defer fh.Close()

	debts, err := ReadDebts(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return debts, nil
}

// SaveDebts writes debts to the file, creating its directory.
func (f *DebtFile) SaveDebts(debts []model.DebtInstrument) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	fh, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("creating debts: %w", err)
	}
	defer fh.Close()
	return WriteDebts(fh, debts)
}

// SeriesFile loads per-period series from a CSV file.
type SeriesFile struct {
	Path string
}

// NewSeriesFile resolves rel against repoRoot.
func NewSeriesFile(repoRoot, rel string) *SeriesFile {
	return &SeriesFile{Path: resolve(repoRoot, rel)}
}

// LoadSeries reads the file. A missing file yields empty series.
func (f *SeriesFile) LoadSeries(ctx context.Context) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewSeries(), nil
		}
		return model.Series{}, fmt.Errorf("opening series: %w", err)
	}
	defer fh.Close()

	s, err := ReadSeries(fh)
	if err != nil {
		return model.Series{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return s, nil
}

// SaveSeries writes the series to the file, creating its directory.
func (f *SeriesFile) SaveSeries(s model.Series) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	fh, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("creating series: %w", err)
	}
	defer fh.Close()
	return WriteSeries(fh, s)
}

func resolve(repoRoot, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(repoRoot, rel)
}
