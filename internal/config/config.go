package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/furrow-dev/furrow/internal/balancesheet"
	"github.com/furrow-dev/furrow/internal/debtpool"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
)

// FileName is the scenario config file at the root of a furrow project.
const FileName = "furrow.yaml"

// Config represents the top-level furrow.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Horizon      HorizonConfig      `yaml:"horizon"`
	Currency     CurrencyConfig     `yaml:"currency"`
	DebtService  DebtServiceConfig  `yaml:"debt_service"`
	CashPolicy   CashPolicyConfig   `yaml:"cash_policy"`
	Baseline     BaselineConfig     `yaml:"baseline"`
	Opening      OpeningConfig      `yaml:"opening"`
	BalanceSheet BalanceSheetConfig `yaml:"balance_sheet"`
	Data         DataConfig         `yaml:"data"`
	Cache        CacheConfig        `yaml:"cache"`
	Database     DatabaseConfig     `yaml:"database"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// OrganizationConfig identifies whose scenario this is.
type OrganizationConfig struct {
	Name     string `yaml:"name"`
	Scenario string `yaml:"scenario"`
}

// HorizonConfig lists the seasons to project. Periods, when set, wins over
// First/Count.
type HorizonConfig struct {
	First        string   `yaml:"first,omitempty"`
	Count        int      `yaml:"count,omitempty"`
	Periods      []string `yaml:"periods,omitempty"`
	SimulateFrom string   `yaml:"simulate_from,omitempty"` // earlier seasons are bootstrap
	Clip         bool     `yaml:"clip"`                    // drop debt payments outside the horizon
}

// CurrencyConfig holds the foreign-to-local conversion rate.
type CurrencyConfig struct {
	FXRate decimal.Decimal `yaml:"fx_rate"`
}

// DebtServiceConfig optionally pins the blended rate.
type DebtServiceConfig struct {
	BlendedRate *decimal.Decimal `yaml:"blended_rate,omitempty"`
}

// CashPolicyConfig is the minimum-cash policy.
type CashPolicyConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Kind     string          `yaml:"kind"`     // fixed, revenue_percent, cost_percent
	Value    decimal.Decimal `yaml:"value"`    // amount for fixed, fraction otherwise
	Priority string          `yaml:"priority"` // preserve_cash or pay_down_debt
}

// BaselineConfig derives the baseline bank repayment from a reference
// season's scheduled payments. Empty Reference uses the series file instead.
type BaselineConfig struct {
	Reference string `yaml:"reference,omitempty"`
	From      string `yaml:"from,omitempty"`
}

// OpeningConfig is the position before the first simulated season.
type OpeningConfig struct {
	Cash      decimal.Decimal  `yaml:"cash"`
	BankDebt  *decimal.Decimal `yaml:"bank_debt,omitempty"` // defaults to the bank pool's total value
	Land      decimal.Decimal  `yaml:"land"`
	Machinery decimal.Decimal  `yaml:"machinery"`
	Other     decimal.Decimal  `yaml:"other"`
}

// BalanceSheetConfig holds the reconciliation approximations.
type BalanceSheetConfig struct {
	CurrentRatio   decimal.Decimal `yaml:"current_ratio"`
	ReceivablesPct decimal.Decimal `yaml:"receivables_pct"`
	InventoryPct   decimal.Decimal `yaml:"inventory_pct"`
	ShareCapital   decimal.Decimal `yaml:"share_capital"`
}

// DataConfig points at the input files, relative to the project root.
type DataConfig struct {
	Debts  string `yaml:"debts"`
	Series string `yaml:"series"`
}

// CacheConfig enables the Redis memo cache when Address is set.
type CacheConfig struct {
	Address  string        `yaml:"address,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// DatabaseConfig switches debt loading to PostgreSQL when DSN is set.
type DatabaseConfig struct {
	DSN            string `yaml:"dsn,omitempty"`
	OrganizationID string `yaml:"organization_id,omitempty"`
	MaxConnections int    `yaml:"max_connections,omitempty"`
}

// LoggingConfig controls zap output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads a furrow.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project: ten
// seasons from 2021/22, simulated from 2024/25, with a cash floor of 10%
// of revenue.
func Default(organization, scenario string) *Config {
	return &Config{
		Organization: OrganizationConfig{Name: organization, Scenario: scenario},
		Horizon: HorizonConfig{
			First:        "2021/22",
			Count:        10,
			SimulateFrom: "2024/25",
		},
		Currency: CurrencyConfig{FXRate: debtpool.DefaultFXRate},
		CashPolicy: CashPolicyConfig{
			Enabled:  true,
			Kind:     "revenue_percent",
			Value:    decimal.RequireFromString("0.10"),
			Priority: "preserve_cash",
		},
		Baseline: BaselineConfig{Reference: "2024/25", From: "2024/25"},
		BalanceSheet: BalanceSheetConfig{
			CurrentRatio:   decimal.RequireFromString("0.30"),
			ReceivablesPct: decimal.RequireFromString("0.15"),
			InventoryPct:   decimal.RequireFromString("0.10"),
		},
		Data: DataConfig{
			Debts:  "data/debts.csv",
			Series: "data/series.csv",
		},
		Cache:   CacheConfig{TTL: 10 * time.Minute},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Periods resolves the horizon into an ordered period list.
func (c *Config) Periods() ([]model.Period, error) {
	if len(c.Horizon.Periods) > 0 {
		out := make([]model.Period, 0, len(c.Horizon.Periods))
		for _, s := range c.Horizon.Periods {
			p, err := period.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("horizon: %w", err)
			}
			out = append(out, p)
		}
		return out, nil
	}
	first, err := period.Parse(c.Horizon.First)
	if err != nil {
		return nil, fmt.Errorf("horizon: %w", err)
	}
	return period.Range(first, c.Horizon.Count)
}

// Bootstrap returns how many leading periods are not simulated.
func (c *Config) Bootstrap(idx *period.Index) (int, error) {
	if c.Horizon.SimulateFrom == "" {
		return 0, nil
	}
	from, err := period.Parse(c.Horizon.SimulateFrom)
	if err != nil {
		return 0, fmt.Errorf("simulate_from: %w", err)
	}
	return idx.CountBefore(from)
}

// Policy converts the cash policy section into the engine's type.
func (c *Config) Policy() (model.CashPolicy, error) {
	kind, err := model.ParsePolicyKind(c.CashPolicy.Kind)
	if err != nil {
		return model.CashPolicy{}, err
	}
	priority, err := model.ParsePriority(c.CashPolicy.Priority)
	if err != nil {
		return model.CashPolicy{}, err
	}
	p := model.CashPolicy{
		Enabled:  c.CashPolicy.Enabled,
		Kind:     kind,
		Value:    c.CashPolicy.Value,
		Priority: priority,
	}
	return p, p.Validate()
}

// BalanceSheetOptions converts the balance sheet section.
func (c *Config) BalanceSheetOptions() balancesheet.Options {
	return balancesheet.Options{
		CurrentRatio:   c.BalanceSheet.CurrentRatio,
		ReceivablesPct: c.BalanceSheet.ReceivablesPct,
		InventoryPct:   c.BalanceSheet.InventoryPct,
		ShareCapital:   c.BalanceSheet.ShareCapital,
	}
}

// OpeningAssets returns the opening fixed assets by class.
func (c *Config) OpeningAssets() map[model.AssetClass]decimal.Decimal {
	return map[model.AssetClass]decimal.Decimal{
		model.AssetLand:      c.Opening.Land,
		model.AssetMachinery: c.Opening.Machinery,
		model.AssetOther:     c.Opening.Other,
	}
}

// FXRate returns the configured rate or DefaultFXRate when unset.
func (c *Config) FXRate() decimal.Decimal {
	if c.Currency.FXRate.IsZero() {
		return debtpool.DefaultFXRate
	}
	return c.Currency.FXRate
}

// Validate reports every configuration problem found.
func (c *Config) Validate() error {
	var errs []error
	if c.Organization.Name == "" {
		errs = append(errs, errors.New("organization.name is required"))
	}
	periods, err := c.Periods()
	if err != nil {
		errs = append(errs, err)
	} else if idx, err := period.NewIndex(periods); err != nil {
		errs = append(errs, err)
	} else if _, err := c.Bootstrap(idx); err != nil {
		errs = append(errs, err)
	}
	if c.Currency.FXRate.IsNegative() {
		errs = append(errs, fmt.Errorf("currency.fx_rate %s is negative", c.Currency.FXRate))
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if err := c.BalanceSheetOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("balance_sheet: %w", err))
	}
	if c.Baseline.Reference != "" {
		if _, err := period.Parse(c.Baseline.Reference); err != nil {
			errs = append(errs, fmt.Errorf("baseline.reference: %w", err))
		}
		if _, err := period.Parse(c.baselineFrom()); err != nil {
			errs = append(errs, fmt.Errorf("baseline.from: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) baselineFrom() string {
	if c.Baseline.From == "" {
		return c.Baseline.Reference
	}
	return c.Baseline.From
}

// BaselineRule returns the normalized reference and start seasons, or empty
// periods when no reference is configured.
func (c *Config) BaselineRule() (reference, from model.Period, err error) {
	if c.Baseline.Reference == "" {
		return "", "", nil
	}
	if reference, err = period.Parse(c.Baseline.Reference); err != nil {
		return "", "", err
	}
	if from, err = period.Parse(c.baselineFrom()); err != nil {
		return "", "", err
	}
	return reference, from, nil
}
