package market

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/mortgagewatch/pkg/models"
)

// RateSource supplies the current mortgage rate.
type RateSource interface {
	FetchMortgageRate(ctx context.Context) (models.RateQuote, error)
}

// YieldSource supplies the current benchmark yield.
type YieldSource interface {
	FetchTreasuryYield(ctx context.Context) (models.YieldQuote, error)
}

// Reconciler combines the rate and yield sources into one snapshot.
type Reconciler struct {
	rate     RateSource
	yield    YieldSource
	reporter Reporter
	now      func() time.Time
}

// NewReconciler creates a reconciler. A nil reporter logs warnings.
func NewReconciler(rate RateSource, yield YieldSource, reporter Reporter) *Reconciler {
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Reconciler{
		rate:     rate,
		yield:    yield,
		reporter: reporter,
		now:      time.Now,
	}
}

// WithReporter returns a copy of r that reports to rep.
func (r *Reconciler) WithReporter(rep Reporter) *Reconciler {
	c := *r
	c.reporter = rep
	return &c
}

// GetLiveSnapshot fetches rate and yield concurrently. It never fails: a
// source that errors leaves its field nil and reports one warning.
func (r *Reconciler) GetLiveSnapshot(ctx context.Context) models.MarketSnapshot {
	rep := r.reporter
	snap := models.MarketSnapshot{TakenAt: r.now()}

	// Each goroutine writes only its own field and always returns nil, so
	// one failure never cancels the other fetch.
	var g errgroup.Group
	g.Go(func() error {
		y, err := r.yield.FetchTreasuryYield(ctx)
		if err != nil {
			rep.Report(NewWarning(SectionYield, err))
			return nil
		}
		snap.Yield = &y
		return nil
	})
	g.Go(func() error {
		q, err := r.rate.FetchMortgageRate(ctx)
		if err != nil {
			rep.Report(NewWarning(SectionRate, err))
			return nil
		}
		snap.Rate = &q
		return nil
	})
	_ = g.Wait()

	return snap
}
