package features

import (
	"math"
	"testing"

	"churn-backtest/pkg/aggregate"
	"churn-backtest/pkg/labels"
	"churn-backtest/pkg/models"
)

func TestJoinLabels_UniverseCoverage(t *testing.T) {
	daily := aggregate.Daily([]models.Transaction{
		sale("a", 5, 10, 1, "online"),
	})
	x := Exogenous(daily, day(0), day(10))
	y := labels.Build([]string{"a", "b", "c"}, map[string]bool{"a": true})
	x = x.JoinLabels(y)

	if x.Len() != 3 {
		t.Fatalf("labeled table must cover the universe: got %d rows, want 3", x.Len())
	}
	if !x.Labeled() {
		t.Fatal("table not marked labeled")
	}
	a, _ := x.Row("a")
	if a.Churn {
		t.Fatal("active client labeled churned")
	}
	b, _ := x.Row("b")
	if !b.Churn {
		t.Fatal("inactive client not labeled churned")
	}
	// filler row policy: zero sums, NaN ratios and interval
	if b.SalesNet != 0 || b.ReturnCount != 0 {
		t.Fatalf("filler row not zeroed: %+v", b)
	}
	if !math.IsNaN(b.PercSalesNet) || !math.IsNaN(b.AvgBuyDays) {
		t.Fatalf("filler row ratios must stay NaN: %+v", b)
	}
}

func TestJoinLabels_ClientOutsideUniverseDefaultsChurned(t *testing.T) {
	daily := aggregate.Daily([]models.Transaction{
		sale("stray", 5, 10, 1, "online"),
	})
	x := Exogenous(daily, day(0), day(10))
	x = x.JoinLabels(labels.Build([]string{"other"}, nil))
	r, _ := x.Row("stray")
	if !r.Churn {
		t.Fatal("client outside the universe must default to churned")
	}
}

func TestMatrix_ChannelUnionZeroFill(t *testing.T) {
	daily := aggregate.Daily([]models.Transaction{
		sale("a", 5, 10, 1, "online"),
		sale("b", 6, 20, 2, "phone"),
	})
	x := Exogenous(daily, day(0), day(10))
	x = x.JoinLabels(labels.Build([]string{"a", "b"}, map[string]bool{"a": true, "b": true}))

	channels := UnionChannels(x.Channels(), []string{"store"})
	rows, y := x.Matrix(channels)
	if len(rows) != 2 || len(y) != 2 {
		t.Fatalf("got %d rows / %d labels, want 2 / 2", len(rows), len(y))
	}
	wantCols := len(NumericColumns) + len(channels)
	if len(rows[0]) != wantCols {
		t.Fatalf("got %d columns, want %d", len(rows[0]), wantCols)
	}
	// clients sorted: rows[0] = a. channels sorted: online, phone, store at
	// offsets 2..4.
	if rows[0][2] != 1 || rows[0][3] != 0 || rows[0][4] != 0 {
		t.Fatalf("channel one-hot wrong for a: %v", rows[0][2:5])
	}
	if rows[1][2] != 0 || rows[1][3] != 1 || rows[1][4] != 0 {
		t.Fatalf("channel one-hot wrong for b: %v", rows[1][2:5])
	}
}

func TestUnionChannels(t *testing.T) {
	got := UnionChannels([]string{"b", "a"}, []string{"a", "c"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected union: %v", got)
	}
}

func TestColumnNames(t *testing.T) {
	cols := ColumnNames([]string{"online"})
	if cols[0] != "sales_net" || cols[2] != "online" || cols[len(cols)-1] != "ret_pct_now" {
		t.Fatalf("unexpected schema: %v", cols)
	}
	if len(cols) != len(NumericColumns)+1 {
		t.Fatalf("got %d columns, want %d", len(cols), len(NumericColumns)+1)
	}
}
