package projection

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/furrow-dev/furrow/internal/logging"
	"github.com/furrow-dev/furrow/internal/metrics"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/waterfall"
)

// DebtSource supplies raw debt instruments.
type DebtSource interface {
	LoadDebts(ctx context.Context) ([]model.DebtInstrument, error)
}

// SeriesSource supplies per-period revenue, cost and investment.
type SeriesSource interface {
	LoadSeries(ctx context.Context) (model.Series, error)
}

// Memo stores encoded results. Implementations must be safe for
// concurrent use.
type Memo interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, key string) error
}

// Fetch loads debts and series concurrently. The simulation itself does no
// I/O, so this is the only place a run waits on anything.
func Fetch(ctx context.Context, debts DebtSource, series SeriesSource) (Inputs, error) {
	var in Inputs
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := debts.LoadDebts(ctx)
		if err != nil {
			return fmt.Errorf("loading debts: %w", err)
		}
		in.Debts = d
		return nil
	})
	g.Go(func() error {
		s, err := series.LoadSeries(ctx)
		if err != nil {
			return fmt.Errorf("loading series: %w", err)
		}
		in.Series = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// Key fingerprints organization, scenario and policy together with the
// remaining scenario settings and the inputs, so a changed input never
// hits a stale entry.
func Key(sc Scenario, in Inputs) (string, error) {
	payload, err := json.Marshal(struct {
		Scenario Scenario
		Inputs   Inputs
	}{sc, in})
	if err != nil {
		return "", fmt.Errorf("encoding memo key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s/%s/%s/%s", sc.Organization, sc.Name, sc.Policy.Kind, hex.EncodeToString(sum[:16])), nil
}

// Runner wraps Run with input fetching, memoization, logging and metrics.
// A Runner holds no per-run state and may be shared across goroutines.
type Runner struct {
	// Refresh drops the memoized entry for a run's key and recomputes it.
	Refresh bool

	memo   Memo
	logger *zap.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. memo may be nil to disable memoization.
func NewRunner(memo Memo, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{memo: memo, logger: logger, now: time.Now}
}

// Project fetches inputs, then returns a memoized result or runs the
// pipeline and stores the outcome.
func (r *Runner) Project(ctx context.Context, sc Scenario, debts DebtSource, series SeriesSource) (*Result, error) {
	start := r.now()
	log := r.logger.With(zap.String("organization", sc.Organization), zap.String("scenario", sc.Name))

	res, status, err := r.project(ctx, sc, debts, series, log)
	metrics.ProjectionRuns.WithLabelValues(status).Inc()
	metrics.ProjectionDuration.WithLabelValues(sc.Name).Observe(r.now().Sub(start).Seconds())
	if err != nil {
		log.Error("projection failed", zap.Error(err))
		return nil, err
	}

	metrics.FinalBankDebt.WithLabelValues(sc.Organization, sc.Name).Set(res.Totals.FinalBankDebt.InexactFloat64())
	log.Info("projection complete",
		zap.String("run_id", res.RunID),
		zap.String("status", status),
		zap.Int("periods", len(res.States)),
		zap.Int("alerts", res.Totals.Alerts),
		logging.Decimal("final_cash", res.Totals.FinalCash),
		logging.Decimal("final_bank_debt", res.Totals.FinalBankDebt),
	)
	return res, nil
}

func (r *Runner) project(ctx context.Context, sc Scenario, debts DebtSource, series SeriesSource, log *zap.Logger) (*Result, string, error) {
	in, err := Fetch(ctx, debts, series)
	if err != nil {
		return nil, metrics.StatusFailed, err
	}
	log.Debug("inputs loaded", zap.Int("instruments", len(in.Debts)), zap.Int("series_periods", len(in.Series.Periods())))

	key, err := Key(sc, in)
	if err != nil {
		return nil, metrics.StatusFailed, err
	}

	if r.Refresh {
		r.invalidate(ctx, key, log)
	} else if res, ok := r.lookup(ctx, key, log); ok {
		// Every run gets its own id, even when its result is reused.
		res.RunID = uuid.NewString()
		return res, metrics.StatusCached, nil
	}

	res, err := Run(sc, in)
	if err != nil {
		return nil, metrics.StatusFailed, err
	}
	res.RunID = uuid.NewString()

	for _, st := range waterfall.Alerts(res.States) {
		log.Warn("cash below policy minimum",
			zap.String("period", string(st.Period)),
			logging.Decimal("ending_cash", st.EndingCash),
			logging.Decimal("minimum_cash", st.MinimumCash),
			logging.Decimal("shortfall", st.Shortfall),
		)
	}
	metrics.PolicyAlerts.WithLabelValues(sc.Name).Add(float64(res.Totals.Alerts))

	r.store(ctx, key, res, log)
	return res, metrics.StatusOK, nil
}

// lookup treats every memo failure as a miss; the memo is an optimization.
func (r *Runner) lookup(ctx context.Context, key string, log *zap.Logger) (*Result, bool) {
	if r.memo == nil {
		return nil, false
	}
	data, ok, err := r.memo.Get(ctx, key)
	if err != nil {
		log.Warn("memo lookup failed", zap.Error(err))
		metrics.MemoLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok {
		metrics.MemoLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		log.Warn("memo entry unreadable", zap.Error(err))
		metrics.MemoLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.MemoLookups.WithLabelValues("hit").Inc()
	log.Debug("memo hit", zap.String("cached_run_id", res.RunID))
	return &res, true
}

func (r *Runner) invalidate(ctx context.Context, key string, log *zap.Logger) {
	if r.memo == nil {
		return
	}
	if err := r.memo.Invalidate(ctx, key); err != nil {
		log.Warn("memo invalidate failed", zap.Error(err))
		return
	}
	metrics.MemoLookups.WithLabelValues("refresh").Inc()
	log.Debug("memo entry dropped", zap.String("key", key))
}

func (r *Runner) store(ctx context.Context, key string, res *Result, log *zap.Logger) {
	if r.memo == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		log.Warn("encoding result for memo", zap.Error(err))
		return
	}
	if err := r.memo.Put(ctx, key, data); err != nil {
		log.Warn("memo store failed", zap.Error(err))
	}
}
