package pricing

import (
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
)

// The ladder is flat up to BaseUserLimit users, then grows linearly. Amounts
// are whole currency units, the same unit the rest of the product displays.
const (
	BaseAmount    int64 = 249
	BaseUserLimit       = 5
	PerUserAmount int64 = 50
)

// Price maps an active user count to the total billable amount. It is the
// single source of truth: both the cached Subscription.TotalAmount and the
// standalone price preview go through here.
func Price(userCount int) (int64, error) {
	if userCount < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "userCount must be at least 1").
			WithDetails(map[string]any{"field": "userCount", "min": 1})
	}
	if userCount <= BaseUserLimit {
		return BaseAmount, nil
	}
	return BaseAmount + int64(userCount-BaseUserLimit)*PerUserAmount, nil
}
