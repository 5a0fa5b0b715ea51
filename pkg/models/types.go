package models

import (
	"time"
)

/*
LOAD → plain types for the raw transaction log.
*/

// Transaction is one row of the transaction log as read from the CSV file or
// the database. Identifying fields the pipeline never uses (invoice date,
// branch, product) are dropped at load time. DateOrder is truncated to UTC
// day granularity; windows and aggregates all operate at day resolution.
type Transaction struct {
	ClientID     string
	DateOrder    time.Time
	SalesNet     float64 // signed; negative = return
	Quantity     float64 // signed
	OrderChannel string
}

/*
COMPUTE → per-fold summary exported by the evaluation loop.
*/

// FoldSummary holds the metrics computed for one backtest fold.
type FoldSummary struct {
	Fold        int
	TestStamp   time.Time
	TrainRows   int
	TestRows    int
	ChurnRate   float64 // realized churn rate of the test table
	BalancedAcc float64
	AUROC       float64
	Skipped     bool // empty fold, no usable rows, no metrics
}

/*
CONFIG → global parameters.
*/

// Config carries the run parameters passed to the backtest pipeline.
type Config struct {
	ThresholdDays int     // window length and churn horizon, in days
	Folds         int     // number of walk-forward folds
	Cutoff        float64 // decision threshold on predicted churn probability
	Verbose       bool    // detailed per-fold logs
}
