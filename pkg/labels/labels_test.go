package labels

import (
	"testing"
)

func TestBuild_OneRowPerClient(t *testing.T) {
	s := Build([]string{"a", "b", "c"}, map[string]bool{"b": true})
	if s.Len() != 3 {
		t.Fatalf("got %d rows, want 3", s.Len())
	}
	for id, want := range map[string]bool{"a": true, "b": false, "c": true} {
		got, ok := s.Churn(id)
		if !ok {
			t.Fatalf("missing label for %s", id)
		}
		if got != want {
			t.Fatalf("%s: churn=%v, want %v", id, got, want)
		}
	}
}

func TestBuild_DuplicatesCollapsed(t *testing.T) {
	s := Build([]string{"a", "a", "b"}, nil)
	if s.Len() != 2 {
		t.Fatalf("duplicate universe entries must collapse: got %d rows, want 2", s.Len())
	}
}

func TestBuild_UnknownClient(t *testing.T) {
	s := Build([]string{"a"}, nil)
	if _, ok := s.Churn("ghost"); ok {
		t.Fatal("client outside the universe must report ok=false")
	}
}

func TestRate(t *testing.T) {
	s := Build([]string{"a", "b", "c", "d"}, map[string]bool{"a": true})
	if got := s.Rate(); got != 0.75 {
		t.Fatalf("rate: got %v, want 0.75", got)
	}
	if got := Build(nil, nil).Rate(); got != 0 {
		t.Fatalf("empty set rate: got %v, want 0", got)
	}
}
