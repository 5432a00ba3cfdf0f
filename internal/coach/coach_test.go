package coach

import (
	"math/rand/v2"
	"testing"

	"BankrollSentinel/internal/model"
)

func TestForSession(t *testing.T) {
	tests := []struct {
		name string
		last *model.DailySession
		want Mood
	}{
		{"no history", nil, MoodNeutral},
		{"win", &model.DailySession{Status: model.StatusWin}, MoodWin},
		{"loss", &model.DailySession{Status: model.StatusLoss}, MoodLoss},
		{"break even", &model.DailySession{Status: model.StatusBreakEven}, MoodBreakEven},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ForSession(tt.last)
			if msg.Mood != tt.want {
				t.Errorf("mood = %s, want %s", msg.Mood, tt.want)
			}
			if msg.Title == "" || msg.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestCommandments(t *testing.T) {
	if len(Commandments) != 10 {
		t.Errorf("got %d commandments, want 10", len(Commandments))
	}
}

func TestFeed_Distinct(t *testing.T) {
	c := New(rand.New(rand.NewPCG(1, 2)))
	feed := c.Feed(FeedSize)
	if len(feed) != FeedSize {
		t.Fatalf("feed size = %d, want %d", len(feed), FeedSize)
	}
	seen := map[string]bool{}
	for _, tip := range feed {
		if seen[tip.Title] {
			t.Errorf("duplicate tip %q", tip.Title)
		}
		seen[tip.Title] = true
	}
	if got := len(c.Feed(100)); got != len(KnowledgeBase) {
		t.Errorf("oversized feed = %d, want %d", got, len(KnowledgeBase))
	}
	if got := len(c.Feed(-1)); got != 0 {
		t.Errorf("negative feed = %d, want 0", got)
	}
}

func TestFeed_SameSeedSameDraw(t *testing.T) {
	a := New(rand.New(rand.NewPCG(7, 7))).Feed(FeedSize)
	b := New(rand.New(rand.NewPCG(7, 7))).Feed(FeedSize)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs: %q vs %q", i, a[i].Title, b[i].Title)
		}
	}
}

func TestTip_CoversKnowledgeBase(t *testing.T) {
	c := New(rand.New(rand.NewPCG(3, 4)))
	seen := map[string]bool{}
	for range 2000 {
		seen[c.Tip().Title] = true
	}
	if len(seen) != len(KnowledgeBase) {
		t.Errorf("drew %d distinct tips out of %d", len(seen), len(KnowledgeBase))
	}
}
