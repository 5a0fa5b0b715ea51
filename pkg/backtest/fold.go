// Package backtest drives the rolling-origin (walk-forward) loop: each fold
// re-slices the log to an earlier as-of origin, rebuilds features and labels
// for a train/test window pair, and hands the next origin to the caller.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"churn-backtest/pkg/aggregate"
	"churn-backtest/pkg/database"
	"churn-backtest/pkg/features"
	"churn-backtest/pkg/labels"
	"churn-backtest/pkg/models"
)

var (
	// ErrEmptyFold reports a fold whose feature window holds no
	// transactions. The fold carries a valid NextOrigin, so the caller can
	// skip it and keep walking.
	ErrEmptyFold = errors.New("backtest: empty fold")

	// ErrInsufficientHistory reports that the requested windows extend
	// before the earliest available transaction.
	ErrInsufficientHistory = errors.New("backtest: insufficient history")
)

// Fold is one train/test unit of the walk-forward backtest. Train and Test
// are labeled feature tables covering the full client universe. NextOrigin
// is the as-of origin for the next (earlier) fold.
type Fold struct {
	Train      *features.Table
	Test       *features.Table
	TrainStamp time.Time
	TestStamp  time.Time
	NextOrigin time.Time
}

// Pipeline runs successive folds over an immutable transaction store. The
// client universe is computed once, from the full store, and reused
// unchanged by every fold of the run.
type Pipeline struct {
	store     *database.Store
	universe  []string
	threshold int // days
	verbose   bool
}

func New(store *database.Store, thresholdDays int, verbose bool) *Pipeline {
	return &Pipeline{
		store:     store,
		universe:  store.Clients(),
		threshold: thresholdDays,
		verbose:   verbose,
	}
}

// Universe returns the run's fixed client universe, sorted.
func (p *Pipeline) Universe() []string { return p.universe }

// RunFold computes one fold. A zero origin means the first fold: the full
// store is used and test_stamp is the latest aggregated day minus the
// threshold. A non-zero origin truncates the log strictly before it and
// sets test_stamp = origin − threshold exactly, so successive origins step
// back by one full window and a fold's train feature window becomes the
// next fold's test feature window.
//
// Test features cover [train_stamp, test_stamp) with historical cutoff
// test_stamp; train features cover [lowest_stamp, train_stamp) with cutoff
// train_stamp. No feature ever sees data at or after its label's decision
// point. Test labels come from activity at/after test_stamp inside this
// fold's slice; train labels from activity in [train_stamp, test_stamp).
func (p *Pipeline) RunFold(ctx context.Context, origin time.Time) (*Fold, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := p.store.All()
	if !origin.IsZero() {
		view = p.store.Before(origin)
	}
	if len(view) == 0 {
		return nil, fmt.Errorf("%w: no transactions before %s",
			ErrInsufficientHistory, origin.Format("2006-01-02"))
	}

	daily := aggregate.Daily(view)
	if len(daily) == 0 {
		return nil, fmt.Errorf("%w: no purchase activity in slice", ErrInsufficientHistory)
	}

	var testStamp time.Time
	if origin.IsZero() {
		last, _ := aggregate.MaxDate(daily)
		testStamp = last.AddDate(0, 0, -p.threshold)
	} else {
		testStamp = origin.AddDate(0, 0, -p.threshold)
	}
	trainStamp := testStamp.AddDate(0, 0, -p.threshold)
	lowestStamp := trainStamp.AddDate(0, 0, -p.threshold)

	earliest := view[0].DateOrder
	if lowestStamp.Before(earliest) {
		return nil, fmt.Errorf("%w: train window starts %s, data starts %s",
			ErrInsufficientHistory,
			lowestStamp.Format("2006-01-02"), earliest.Format("2006-01-02"))
	}

	if p.verbose {
		log.Printf("[DEBUG] windows: train=[%s;%s) test=[%s;%s)",
			lowestStamp.Format("2006-01-02"), trainStamp.Format("2006-01-02"),
			trainStamp.Format("2006-01-02"), testStamp.Format("2006-01-02"))
	}

	// On an empty window the fold still carries its stamps, so the caller
	// can skip it and continue from NextOrigin.
	skeleton := &Fold{TrainStamp: trainStamp, TestStamp: testStamp, NextOrigin: testStamp}

	test, err := p.buildSplit(daily, view, trainStamp, testStamp,
		aggregate.ActiveClients(aggregate.From(daily, testStamp)))
	if err != nil {
		return skeleton, err
	}
	train, err := p.buildSplit(daily, view, lowestStamp, trainStamp,
		aggregate.ActiveClients(aggregate.Between(daily, trainStamp, testStamp)))
	if err != nil {
		return skeleton, err
	}

	return &Fold{
		Train:      train,
		Test:       test,
		TrainStamp: trainStamp,
		TestStamp:  testStamp,
		NextOrigin: testStamp,
	}, nil
}

// buildSplit assembles one labeled table: the four feature steps over the
// window [min, max) with historical cutoff max, then the label join over
// the run universe against the forward-window active set.
func (p *Pipeline) buildSplit(daily []aggregate.Row, view []models.Transaction, min, max time.Time, active map[string]bool) (*features.Table, error) {
	x := features.Exogenous(daily, min, max)
	if x.Len() == 0 {
		return nil, fmt.Errorf("%w: window [%s;%s)", ErrEmptyFold,
			min.Format("2006-01-02"), max.Format("2006-01-02"))
	}
	x = features.HistoricalBuyRatio(daily, x, max)
	x = features.AvgBuyTime(daily, x, max)
	x = features.LifetimeReturns(view, x, max)
	x = features.WindowReturns(view, x, min, max)

	y := labels.Build(p.universe, active)
	return x.JoinLabels(y), nil
}
