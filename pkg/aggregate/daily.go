// Package aggregate collapses the raw transaction log into one row per
// (client, day), the input of every downstream feature computation.
package aggregate

import (
	"sort"
	"time"

	"churn-backtest/pkg/models"
)

// Row is one (client, day) aggregate over pure-sale transactions
// (sales_net > 0). Channels maps each order channel observed that day to
// its order count; the channel dimension of the schema is derived from the
// data at run time, not fixed. Rows are unique per (Date, ClientID).
type Row struct {
	Date     time.Time
	ClientID string
	SalesNet float64
	Quantity float64
	NrOrders float64
	Channels map[string]float64
}

// Transaction dates are day-truncated UTC wall-clock values, so they are
// safe to use directly as map keys.
type dayClient struct {
	day      time.Time
	clientID string
}

// Daily filters the log to sales_net > 0 and groups it by (day, client),
// summing sales_net, quantity, the per-channel order counts, and a constant
// 1 per transaction (NrOrders), so NrOrders is the day's order count.
// Output is sorted by (Date, ClientID).
func Daily(txs []models.Transaction) []Row {
	grouped := make(map[dayClient]*Row)
	for _, tx := range txs {
		if tx.SalesNet <= 0 {
			continue
		}
		key := dayClient{day: tx.DateOrder, clientID: tx.ClientID}
		row, ok := grouped[key]
		if !ok {
			row = &Row{
				Date:     tx.DateOrder,
				ClientID: tx.ClientID,
				Channels: make(map[string]float64),
			}
			grouped[key] = row
		}
		row.SalesNet += tx.SalesNet
		row.Quantity += tx.Quantity
		row.NrOrders++
		row.Channels[tx.OrderChannel]++
	}

	rows := make([]Row, 0, len(grouped))
	for _, row := range grouped {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].ClientID < rows[j].ClientID
	})
	return rows
}

// Between returns the rows with min <= Date < max. Rows must be sorted by
// date, as Daily produces them.
func Between(rows []Row, min, max time.Time) []Row {
	lo := sort.Search(len(rows), func(i int) bool {
		return !rows[i].Date.Before(min)
	})
	hi := sort.Search(len(rows), func(i int) bool {
		return !rows[i].Date.Before(max)
	})
	return rows[lo:hi]
}

// Until returns the rows with Date strictly before max. Rows must be
// sorted by date.
func Until(rows []Row, max time.Time) []Row {
	hi := sort.Search(len(rows), func(i int) bool {
		return !rows[i].Date.Before(max)
	})
	return rows[:hi]
}

// From returns the rows with Date >= min. Rows must be sorted by date.
func From(rows []Row, min time.Time) []Row {
	lo := sort.Search(len(rows), func(i int) bool {
		return !rows[i].Date.Before(min)
	})
	return rows[lo:]
}

// MaxDate returns the latest date of rows; ok is false for no rows.
func MaxDate(rows []Row) (time.Time, bool) {
	if len(rows) == 0 {
		return time.Time{}, false
	}
	return rows[len(rows)-1].Date, true
}

// ActiveClients returns the set of clients appearing in rows.
func ActiveClients(rows []Row) map[string]bool {
	active := make(map[string]bool)
	for _, row := range rows {
		active[row.ClientID] = true
	}
	return active
}
