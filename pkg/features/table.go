// Package features derives the per-client feature table of a window: sums
// of window activity, ratios against pre-window history, purchase timing,
// and return behavior at two lookback horizons.
package features

import (
	"math"
	"sort"

	"churn-backtest/pkg/labels"
)

// Row holds the feature values computed for one client. Ratio features stay
// NaN when the client has no history before the cutoff; the consumer
// decides how to impute them.
type Row struct {
	SalesNet       float64            // window sum
	Quantity       float64            // window sum
	Channels       map[string]float64 // window order count per channel
	PercSalesNet   float64            // window / lifetime ratio
	PercQuantity   float64
	PercNrOrders   float64
	AvgBuyDays     float64 // mean days between purchase days
	ReturnCount    float64 // lifetime through the cutoff
	RetPct         float64
	ReturnCountNow float64 // within the feature window
	RetPctNow      float64
	Churn          bool

	// Window order count; consumed by the ratio step and then excluded
	// from the emitted schema.
	nrOrders float64
}

// Table is a per-client feature table keyed by client_id. It is built by
// Exogenous and augmented in place by the other builder steps, each output
// feeding the next (a reducer over the same table).
type Table struct {
	clients  []string
	rows     map[string]*Row
	channels []string
	labeled  bool
}

func (t *Table) Len() int { return len(t.clients) }

// Clients returns the table's client ids, sorted.
func (t *Table) Clients() []string { return t.clients }

// Row returns the feature row for clientID.
func (t *Table) Row(clientID string) (*Row, bool) {
	r, ok := t.rows[clientID]
	return r, ok
}

// Channels returns the channel column names observed in this table, sorted.
func (t *Table) Channels() []string { return t.channels }

// Labeled reports whether JoinLabels has run.
func (t *Table) Labeled() bool { return t.labeled }

// ChurnRate returns the realized churn rate of a labeled table.
func (t *Table) ChurnRate() float64 {
	if len(t.clients) == 0 {
		return 0
	}
	n := 0
	for _, id := range t.clients {
		if t.rows[id].Churn {
			n++
		}
	}
	return float64(n) / float64(len(t.clients))
}

// JoinLabels joins the full-universe label set onto the table. The label
// set is the spine of the join: every universe client ends up with exactly
// one row. Clients with no window activity are filled explicitly — zero
// sums, counts and channels, NaN ratios and purchase interval. Feature
// rows for clients outside the universe default to churned (no forward
// activity is known for them).
func (t *Table) JoinLabels(set *labels.Set) *Table {
	for _, id := range set.Clients() {
		if _, ok := t.rows[id]; !ok {
			t.rows[id] = &Row{
				PercSalesNet: math.NaN(),
				PercQuantity: math.NaN(),
				PercNrOrders: math.NaN(),
				AvgBuyDays:   math.NaN(),
			}
		}
	}
	t.reindex()
	for _, id := range t.clients {
		churn, ok := set.Churn(id)
		if !ok {
			churn = true
		}
		t.rows[id].Churn = churn
	}
	t.labeled = true
	return t
}

// NumericColumns is the fixed (non-channel) part of the emitted schema, in
// matrix order. Channel columns are inserted after "quantity".
var NumericColumns = []string{
	"sales_net", "quantity",
	"perc_sales_net", "perc_quantity", "perc_nr_orders",
	"avg_time_purchase",
	"return_count", "ret_pct",
	"return_count_now", "ret_pct_now",
}

// ColumnNames returns the full emitted schema for the given channel union.
func ColumnNames(channels []string) []string {
	cols := make([]string, 0, len(NumericColumns)+len(channels))
	cols = append(cols, "sales_net", "quantity")
	cols = append(cols, channels...)
	cols = append(cols, NumericColumns[2:]...)
	return cols
}

// Matrix flattens the table into a feature matrix and label vector, one row
// per client in Clients() order. The channel columns are taken from the
// supplied union so that train and test matrices of a fold share one
// schema; channels missing from a row are zero-filled.
func (t *Table) Matrix(channels []string) ([][]float64, []bool) {
	x := make([][]float64, 0, len(t.clients))
	y := make([]bool, 0, len(t.clients))
	for _, id := range t.clients {
		r := t.rows[id]
		row := make([]float64, 0, len(NumericColumns)+len(channels))
		row = append(row, r.SalesNet, r.Quantity)
		for _, ch := range channels {
			row = append(row, r.Channels[ch])
		}
		row = append(row,
			r.PercSalesNet, r.PercQuantity, r.PercNrOrders,
			r.AvgBuyDays,
			r.ReturnCount, r.RetPct,
			r.ReturnCountNow, r.RetPctNow,
		)
		x = append(x, row)
		y = append(y, r.Churn)
	}
	return x, y
}

// UnionChannels merges channel name lists into one sorted, de-duplicated
// schema. Used to reconcile train and test tables of a fold.
func UnionChannels(lists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, ch := range list {
			seen[ch] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for ch := range seen {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// reindex rebuilds the sorted client index and the channel union after rows
// were added.
func (t *Table) reindex() {
	t.clients = t.clients[:0]
	chans := make(map[string]struct{})
	for id, r := range t.rows {
		t.clients = append(t.clients, id)
		for ch := range r.Channels {
			chans[ch] = struct{}{}
		}
	}
	sort.Strings(t.clients)
	t.channels = t.channels[:0]
	for ch := range chans {
		t.channels = append(t.channels, ch)
	}
	sort.Strings(t.channels)
}
