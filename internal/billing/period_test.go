package billing

import (
	"testing"
	"time"
)

func TestRemainingDaysRoundsUp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{"ninety full days", now.Add(90 * 24 * time.Hour), 90},
		{"fraction of a day counts as one", now.Add(2 * time.Hour), 1},
		{"exact day boundary", now.Add(24 * time.Hour), 1},
		{"one day and a bit", now.Add(25 * time.Hour), 2},
		{"already past", now.Add(-time.Hour), 0},
		{"ends exactly now", now, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemainingDays(tc.end, now); got != tc.expected {
				t.Fatalf("RemainingDays = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestRemainingDaysStrictlyDecreases(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.Add(90 * 24 * time.Hour)

	prev := RemainingDays(end, now)
	for i := 1; i <= 90; i++ {
		got := RemainingDays(end, now.Add(time.Duration(i)*24*time.Hour))
		if got >= prev {
			t.Fatalf("remaining days did not decrease at day %d: %d >= %d", i, got, prev)
		}
		prev = got
	}
	if prev != 0 {
		t.Fatalf("expected 0 at period end, got %d", prev)
	}
}

func TestHasExpiredBoundary(t *testing.T) {
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if HasExpired(end, end) {
		t.Fatal("a period ending exactly now is not yet expired")
	}
	if !HasExpired(end, end.Add(time.Second)) {
		t.Fatal("one second past the end must be expired")
	}
	if HasExpired(end, end.Add(-time.Second)) {
		t.Fatal("a second before the end is not expired")
	}
}
