package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/logger"
	"github.com/autotradehub/autotradehub-backend/pkg/metrics"
)

// errDryRun forces a rollback after a rule has counted its would-be changes.
var errDryRun = errors.New("dry run rollback")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RuleResult is the outcome of one rule within a run.
type RuleResult struct {
	Rule      string `json:"rule"`
	RowsFixed int64  `json:"rows_fixed"`
	Failed    bool   `json:"failed"`
}

// Summary reports a full reconciliation run.
type Summary struct {
	Results    []RuleResult `json:"results"`
	TotalFixed int64        `json:"total_fixed"`
	DryRun     bool         `json:"dry_run"`
}

// Runner executes the rule set. Each rule runs in its own transaction so one
// failing rule cannot poison the others.
type Runner struct {
	tx      txRunner
	rules   []Rule
	metrics *metrics.ReconcileMetrics
	log     *logger.Logger
	dryRun  bool
}

// NewRunner builds a reconciliation runner.
func NewRunner(tx txRunner, rules []Rule, m *metrics.ReconcileMetrics, log *logger.Logger, dryRun bool) (*Runner, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one rule required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Runner{tx: tx, rules: rules, metrics: m, log: log, dryRun: dryRun}, nil
}

// Run executes every rule in order, continuing past failures. The returned
// error aggregates every rule failure; the summary always covers all rules.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{DryRun: r.dryRun}
	var runErr error

	for _, rule := range r.rules {
		start := time.Now()
		fixed, err := r.applyRule(ctx, rule)
		r.metrics.ObserveDuration(rule.Name(), time.Since(start))

		result := RuleResult{Rule: rule.Name(), RowsFixed: fixed}
		logCtx := r.log.WithFields(ctx, map[string]any{
			"rule":       rule.Name(),
			"rows_fixed": fixed,
			"dry_run":    r.dryRun,
		})

		if err != nil {
			result.Failed = true
			r.metrics.IncFailure(rule.Name())
			r.log.Error(logCtx, "reconciliation rule failed", err)
			runErr = multierr.Append(runErr, fmt.Errorf("rule %s: %w", rule.Name(), err))
		} else {
			r.metrics.AddRowsFixed(rule.Name(), fixed)
			summary.TotalFixed += fixed
			r.log.Info(logCtx, "reconciliation rule applied")
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, runErr
}

func (r *Runner) applyRule(ctx context.Context, rule Rule) (int64, error) {
	var fixed int64
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := rule.Apply(ctx, tx)
		if err != nil {
			return err
		}
		fixed = n
		if r.dryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return fixed, nil
	}
	return fixed, err
}
