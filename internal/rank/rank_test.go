package rank

import (
	"math"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		profit   float64
		id       string
		progress float64
	}{
		{-50, "rookie", 0},
		{0, "rookie", 0},
		{50, "rookie", 50},
		{100, "apprentice", 0},
		{750, "pro", 100.0 / 6},
		{1999.99, "pro", 99.9993333},
		{2000, "elite", 0},
		{7500, "master", 50},
		{10000, "baron", 100},
		{250000, "baron", 100},
	}
	for _, tt := range tests {
		s := Lookup(tt.profit)
		if s.Current.ID != tt.id {
			t.Errorf("Lookup(%v) = %s, want %s", tt.profit, s.Current.ID, tt.id)
		}
		if math.Abs(s.Progress-tt.progress) > 1e-6 {
			t.Errorf("Lookup(%v) progress = %.4f, want %.4f", tt.profit, s.Progress, tt.progress)
		}
	}
}

func TestLookup_ProgressTowardElite(t *testing.T) {
	s := Lookup(750)
	if s.Current.MinProfit != 500 || s.Next == nil || s.Next.MinProfit != 2000 {
		t.Fatalf("standing = %+v", s)
	}
	if got := math.Round(s.Progress*100) / 100; got != 16.67 {
		t.Errorf("progress = %.2f%%, want 16.67%%", got)
	}
	if s.ToNext != 1250 {
		t.Errorf("to next = %.2f, want 1250", s.ToNext)
	}
}

func TestLookup_TopRank(t *testing.T) {
	s := Lookup(12000)
	if !s.Top() || s.Progress != 100 || s.ToNext != 0 {
		t.Errorf("top standing = %+v", s)
	}
}

func TestRanksAscending(t *testing.T) {
	for i := 1; i < len(Ranks); i++ {
		if Ranks[i].MinProfit <= Ranks[i-1].MinProfit {
			t.Errorf("rank %s not above %s", Ranks[i].ID, Ranks[i-1].ID)
		}
	}
}
