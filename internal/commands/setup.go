package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/furrow-dev/furrow/internal/cache"
	"github.com/furrow-dev/furrow/internal/config"
	"github.com/furrow-dev/furrow/internal/importer"
	"github.com/furrow-dev/furrow/internal/logging"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
	"github.com/furrow-dev/furrow/internal/projection"
	"github.com/furrow-dev/furrow/internal/store"
)

const defaultScenario = "base"

// project is a loaded furrow project: its root, validated config and logger.
type project struct {
	root   string
	cfg    *config.Config
	logger *zap.Logger
}

// openProject loads .env and furrow.yaml from repo, applies environment
// overrides and validates the result.
func openProject(repo string) (*project, error) {
	root, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := config.LoadDotEnv(root); err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &project{root: root, cfg: cfg, logger: logger}, nil
}

// scenario converts the config into a projection scenario.
func (p *project) scenario(clip bool) (projection.Scenario, error) {
	cfg := p.cfg
	periods, err := cfg.Periods()
	if err != nil {
		return projection.Scenario{}, err
	}
	idx, err := period.NewIndex(periods)
	if err != nil {
		return projection.Scenario{}, err
	}
	bootstrap, err := cfg.Bootstrap(idx)
	if err != nil {
		return projection.Scenario{}, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return projection.Scenario{}, err
	}
	reference, from, err := cfg.BaselineRule()
	if err != nil {
		return projection.Scenario{}, err
	}

	name := cfg.Organization.Scenario
	if name == "" {
		name = defaultScenario
	}
	return projection.Scenario{
		Organization:      cfg.Organization.Name,
		Name:              name,
		Periods:           periods,
		Bootstrap:         bootstrap,
		Policy:            policy,
		FXRate:            cfg.FXRate(),
		BlendedRate:       cfg.DebtService.BlendedRate,
		Clip:              cfg.Horizon.Clip || clip,
		OpeningCash:       cfg.Opening.Cash,
		OpeningBankDebt:   cfg.Opening.BankDebt,
		OpeningAssets:     cfg.OpeningAssets(),
		BaselineReference: reference,
		BaselineFrom:      from,
		BalanceSheet:      cfg.BalanceSheetOptions(),
	}, nil
}

// debtSource reads debts from PostgreSQL when a DSN is configured and from
// the debts CSV otherwise. The returned func releases the connection.
func (p *project) debtSource(ctx context.Context) (projection.DebtSource, func(), error) {
	db := p.cfg.Database
	if db.DSN == "" {
		return importer.NewDebtFile(p.root, p.cfg.Data.Debts), func() {}, nil
	}

	client, err := store.NewPostgres(db.DSN, db.MaxConnections)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	orgID := db.OrganizationID
	if orgID == "" {
		orgID = p.cfg.Organization.Name
	}
	p.logger.Debug("loading debts from postgres", zap.String("organization_id", orgID))
	return store.NewDebtStore(client.DB, orgID), func() { client.Close() }, nil
}

func (p *project) seriesSource() projection.SeriesSource {
	return importer.NewSeriesFile(p.root, p.cfg.Data.Series)
}

// memo connects to Redis when an address is configured. An unreachable
// server disables memoization rather than failing the run.
func (p *project) memo(ctx context.Context) (projection.Memo, func()) {
	c := p.cfg.Cache
	if c.Address == "" {
		return nil, func() {}
	}
	m := cache.NewMemo(cache.NewRedis(c.Address, c.Password, c.DB), c.TTL)
	if err := m.Ping(ctx); err != nil {
		p.logger.Warn("memo cache unavailable", zap.String("address", c.Address), zap.Error(err))
		m.Close()
		return nil, func() {}
	}
	return m, func() { m.Close() }
}

func policyLabel(p model.CashPolicy) string {
	if !p.Enabled {
		return "DISABLED"
	}
	return fmt.Sprintf("%s/%s", p.Kind, p.Priority)
}
