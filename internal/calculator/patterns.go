package calculator

import (
	"fmt"
	"slices"
	"time"

	"BankrollSentinel/internal/model"
)

// MinRateSamples is the number of rounds a bucket needs before its win rate
// is ranked.
const MinRateSamples = 2

// Bucket accumulates the rounds that fell into one time slot.
type Bucket struct {
	Index  int
	Label  string
	Profit float64
	Wins   int
	Total  int
}

// Rate is the win percentage of the bucket, 0 when empty.
func (b Bucket) Rate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Total) * 100
}

func (b *Bucket) add(r model.Round) {
	b.Profit += r.Profit
	b.Total++
	if r.Win {
		b.Wins++
	}
}

// Patterns is the pattern radar: every historical round bucketed by time.
type Patterns struct {
	Rounds     int
	Hours      []Bucket // 24, hour of day
	FiveMinute []Bucket // 12, 5-minute slot within the hour
	Weekdays   []Bucket // 7, Sunday first
	MonthDays  []Bucket // 31, day of month
}

// BuildPatterns flattens the rounds of every session and buckets them by the
// local time of each round in loc.
func BuildPatterns(sessions []model.DailySession, loc *time.Location) Patterns {
	if loc == nil {
		loc = time.Local
	}
	p := Patterns{
		Hours:      newBuckets(24, func(i int) string { return fmt.Sprintf("%02dh", i) }),
		FiveMinute: newBuckets(12, func(i int) string { return fmt.Sprintf(":%02d", i*5) }),
		Weekdays:   newBuckets(7, func(i int) string { return time.Weekday(i).String()[:3] }),
		MonthDays:  newBuckets(31, func(i int) string { return fmt.Sprintf("%d", i+1) }),
	}
	for _, s := range sessions {
		for _, r := range s.RoundsDetail {
			t := r.Time().In(loc)
			p.Hours[t.Hour()].add(r)
			p.FiveMinute[t.Minute()/5].add(r)
			p.Weekdays[int(t.Weekday())].add(r)
			p.MonthDays[t.Day()-1].add(r)
			p.Rounds++
		}
	}
	return p
}

func newBuckets(n int, label func(int) string) []Bucket {
	out := make([]Bucket, n)
	for i := range out {
		out[i] = Bucket{Index: i, Label: label(i)}
	}
	return out
}

// BestByProfit returns the non-empty bucket with the highest profit.
// Ties go to the earliest slot.
func BestByProfit(buckets []Bucket) (Bucket, bool) {
	return pick(buckets, 1, func(a, b Bucket) float64 { return b.Profit - a.Profit })
}

// WorstByProfit returns the non-empty bucket with the lowest profit.
func WorstByProfit(buckets []Bucket) (Bucket, bool) {
	return pick(buckets, 1, func(a, b Bucket) float64 { return a.Profit - b.Profit })
}

// BestByRate returns the bucket with the highest win rate among those with
// at least MinRateSamples rounds.
func BestByRate(buckets []Bucket) (Bucket, bool) {
	return pick(buckets, MinRateSamples, func(a, b Bucket) float64 { return b.Rate() - a.Rate() })
}

// WorstByRate returns the bucket with the lowest win rate among those with
// at least MinRateSamples rounds.
func WorstByRate(buckets []Bucket) (Bucket, bool) {
	return pick(buckets, MinRateSamples, func(a, b Bucket) float64 { return a.Rate() - b.Rate() })
}

func pick(buckets []Bucket, minTotal int, diff func(a, b Bucket) float64) (Bucket, bool) {
	eligible := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Total >= minTotal {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) == 0 {
		return Bucket{}, false
	}
	slices.SortStableFunc(eligible, func(a, b Bucket) int {
		switch d := diff(a, b); {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
		return 0
	})
	return eligible[0], true
}
