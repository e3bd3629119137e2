package billing

import "time"

const day = 24 * time.Hour

// RemainingDays reports how many whole days are left before periodEnd,
// rounding up so a period ending later today still counts as one day. Past
// periods report exactly 0, never a negative number.
func RemainingDays(periodEnd, now time.Time) int {
	remaining := periodEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / day)
	if remaining%day != 0 {
		days++
	}
	return days
}

// HasExpired reports whether now is strictly past periodEnd. A period ending
// exactly now is still live until the next instant.
func HasExpired(periodEnd, now time.Time) bool {
	return now.After(periodEnd)
}
