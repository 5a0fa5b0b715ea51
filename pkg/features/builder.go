package features

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"churn-backtest/pkg/aggregate"
	"churn-backtest/pkg/models"
)

// Exogenous seeds the feature table from the daily aggregate restricted to
// [min, max): one row per client active in the window, numeric columns and
// channel counts summed. Clients with no activity in the window are absent
// here; they enter the table only through the label join.
func Exogenous(daily []aggregate.Row, min, max time.Time) *Table {
	t := &Table{rows: make(map[string]*Row)}
	for _, d := range aggregate.Between(daily, min, max) {
		r, ok := t.rows[d.ClientID]
		if !ok {
			r = &Row{Channels: make(map[string]float64)}
			t.rows[d.ClientID] = r
		}
		r.SalesNet += d.SalesNet
		r.Quantity += d.Quantity
		r.nrOrders += d.NrOrders
		for ch, n := range d.Channels {
			r.Channels[ch] += n
		}
	}
	t.reindex()
	return t
}

// HistoricalBuyRatio divides each client's window sums of sales_net,
// quantity and order count by their all-time sums through max (exclusive),
// writing the three ratio columns. Clients with no pre-cutoff history keep
// NaN ratios; that signal is preserved, never zeroed. The raw window order
// count is consumed here and dropped from the emitted schema.
func HistoricalBuyRatio(daily []aggregate.Row, x *Table, max time.Time) *Table {
	type sums struct{ sales, quantity, orders float64 }
	all := make(map[string]*sums)
	for _, d := range aggregate.Until(daily, max) {
		s, ok := all[d.ClientID]
		if !ok {
			s = &sums{}
			all[d.ClientID] = s
		}
		s.sales += d.SalesNet
		s.quantity += d.Quantity
		s.orders += d.NrOrders
	}

	for _, id := range x.clients {
		r := x.rows[id]
		s, ok := all[id]
		if !ok {
			r.PercSalesNet = math.NaN()
			r.PercQuantity = math.NaN()
			r.PercNrOrders = math.NaN()
			continue
		}
		r.PercSalesNet = r.SalesNet / s.sales
		r.PercQuantity = r.Quantity / s.quantity
		r.PercNrOrders = r.nrOrders / s.orders
	}
	return x
}

// AvgBuyTime computes each client's mean gap, in days, between consecutive
// purchase days strictly before max. The daily aggregate is already one row
// per (day, client), so each row is one purchase-day event. A client with a
// single purchase day has no defined gap and is excluded from the means;
// clients in x without a mean are filled with the population mean of the
// per-client averages (NaN when no client has one).
func AvgBuyTime(daily []aggregate.Row, x *Table, max time.Time) *Table {
	days := make(map[string][]time.Time)
	for _, d := range aggregate.Until(daily, max) {
		// rows are date-sorted, so each client's day list stays ordered
		days[d.ClientID] = append(days[d.ClientID], d.Date)
	}

	means := make(map[string]float64, len(days))
	var pop []float64
	ids := make([]string, 0, len(days))
	for id := range days {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ds := days[id]
		if len(ds) < 2 {
			continue
		}
		var gaps []float64
		for i := 1; i < len(ds); i++ {
			gaps = append(gaps, ds[i].Sub(ds[i-1]).Hours()/24)
		}
		m := stat.Mean(gaps, nil)
		means[id] = m
		pop = append(pop, m)
	}
	global := math.NaN()
	if len(pop) > 0 {
		global = stat.Mean(pop, nil)
	}

	for _, id := range x.clients {
		if m, ok := means[id]; ok {
			x.rows[id].AvgBuyDays = m
		} else {
			x.rows[id].AvgBuyDays = global
		}
	}
	return x
}

// LifetimeReturns computes the all-time return behavior through max
// (exclusive): per-client counts of return rows (sales_net < 0) and the
// return rate against purchase rows (sales_net > 0). The raw log is used
// here, not the daily aggregate — daily summation erases the sign, and a
// day holding both a sale and a return must count as one of each.
func LifetimeReturns(log []models.Transaction, x *Table, max time.Time) *Table {
	counts := returnCounts(txUntil(log, max))
	for _, id := range x.clients {
		c := counts[id]
		x.rows[id].ReturnCount = c.returns
		x.rows[id].RetPct = c.rate()
	}
	return x
}

// WindowReturns is the windowed variant of LifetimeReturns, restricted to
// [min, max) and written to the *_now columns.
func WindowReturns(log []models.Transaction, x *Table, min, max time.Time) *Table {
	counts := returnCounts(txBetween(log, min, max))
	for _, id := range x.clients {
		c := counts[id]
		x.rows[id].ReturnCountNow = c.returns
		x.rows[id].RetPctNow = c.rate()
	}
	return x
}

type retCount struct {
	returns   float64
	purchases float64
}

// rate is returns per purchase, kept in [0, 1]: zero purchases (the 0/0
// case included) yield 0, and the ratio is capped at 1.
func (c retCount) rate() float64 {
	if c.purchases == 0 {
		return 0
	}
	return math.Min(1, c.returns/c.purchases)
}

func returnCounts(txs []models.Transaction) map[string]retCount {
	counts := make(map[string]retCount)
	for _, tx := range txs {
		c := counts[tx.ClientID]
		switch {
		case tx.SalesNet < 0:
			c.returns++
		case tx.SalesNet > 0:
			c.purchases++
		default:
			continue
		}
		counts[tx.ClientID] = c
	}
	return counts
}

// txUntil returns the transactions strictly before max. The log must be
// date-sorted, as the store keeps it.
func txUntil(txs []models.Transaction, max time.Time) []models.Transaction {
	hi := sort.Search(len(txs), func(i int) bool {
		return !txs[i].DateOrder.Before(max)
	})
	return txs[:hi]
}

// txBetween returns the transactions with min <= DateOrder < max.
func txBetween(txs []models.Transaction, min, max time.Time) []models.Transaction {
	head := txUntil(txs, max)
	lo := sort.Search(len(head), func(i int) bool {
		return !head[i].DateOrder.Before(min)
	})
	return head[lo:]
}
