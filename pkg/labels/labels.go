// Package labels builds the churn label table for a fold.
package labels

import (
	"sort"
)

// Set holds exactly one churn label per client of the run's universe.
type Set struct {
	clients []string
	churn   map[string]bool
}

// Build computes churn labels for the full universe: a client churns iff it
// is absent from active, the set of clients transacting in the forward
// window that follows the feature window. Duplicate universe entries are
// collapsed so every client carries exactly one label.
func Build(universe []string, active map[string]bool) *Set {
	churn := make(map[string]bool, len(universe))
	for _, id := range universe {
		churn[id] = !active[id]
	}
	clients := make([]string, 0, len(churn))
	for id := range churn {
		clients = append(clients, id)
	}
	sort.Strings(clients)
	return &Set{clients: clients, churn: churn}
}

func (s *Set) Len() int { return len(s.clients) }

// Clients returns the labeled client ids, sorted.
func (s *Set) Clients() []string { return s.clients }

// Churn reports the label for clientID; ok is false for clients outside
// the universe.
func (s *Set) Churn(clientID string) (churn, ok bool) {
	churn, ok = s.churn[clientID]
	return churn, ok
}

// Rate returns the fraction of churned clients.
func (s *Set) Rate() float64 {
	if len(s.clients) == 0 {
		return 0
	}
	n := 0
	for _, c := range s.churn {
		if c {
			n++
		}
	}
	return float64(n) / float64(len(s.clients))
}
