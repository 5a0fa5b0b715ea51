package database

import (
	"sort"
	"time"

	"churn-backtest/pkg/models"
)

// Store is the immutable transaction log, sorted by order date. It is
// loaded once per run; folds read it through zero-copy prefix views.
type Store struct {
	txs []models.Transaction
}

// NewStore copies and sorts the transactions by (date, client). The input
// slice is not retained.
func NewStore(txs []models.Transaction) *Store {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].DateOrder.Equal(sorted[j].DateOrder) {
			return sorted[i].DateOrder.Before(sorted[j].DateOrder)
		}
		return sorted[i].ClientID < sorted[j].ClientID
	})
	return &Store{txs: sorted}
}

func (s *Store) Len() int { return len(s.txs) }

// All returns the full log. Callers must not mutate the returned slice.
func (s *Store) All() []models.Transaction { return s.txs }

// Before returns the transactions with DateOrder strictly before t, as a
// prefix view of the sorted log.
func (s *Store) Before(t time.Time) []models.Transaction {
	idx := sort.Search(len(s.txs), func(i int) bool {
		return !s.txs[i].DateOrder.Before(t)
	})
	return s.txs[:idx]
}

// MinDate returns the earliest order date; ok is false for an empty store.
func (s *Store) MinDate() (time.Time, bool) {
	if len(s.txs) == 0 {
		return time.Time{}, false
	}
	return s.txs[0].DateOrder, true
}

// MaxDate returns the latest order date; ok is false for an empty store.
func (s *Store) MaxDate() (time.Time, bool) {
	if len(s.txs) == 0 {
		return time.Time{}, false
	}
	return s.txs[len(s.txs)-1].DateOrder, true
}

// Clients returns the distinct client ids of the log, sorted. This is the
// client universe of the run: every client ever appearing in the log,
// returns-only clients included.
func (s *Store) Clients() []string {
	seen := make(map[string]struct{})
	for _, tx := range s.txs {
		seen[tx.ClientID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
