package enums

// ExpiryWarning grades how loudly the dashboard should warn about an
// approaching period end. Thresholds follow the product UI: 7, 3 and 1 days.
type ExpiryWarning string

const (
	ExpiryWarningNone     ExpiryWarning = "none"
	ExpiryWarningWarning  ExpiryWarning = "warning"
	ExpiryWarningUrgent   ExpiryWarning = "urgent"
	ExpiryWarningCritical ExpiryWarning = "critical"
)

// String implements fmt.Stringer.
func (w ExpiryWarning) String() string {
	return string(w)
}

// ExpiryWarningForDays maps remaining whole days to a warning level.
func ExpiryWarningForDays(days int) ExpiryWarning {
	switch {
	case days <= 0 || days > 7:
		return ExpiryWarningNone
	case days <= 1:
		return ExpiryWarningCritical
	case days <= 3:
		return ExpiryWarningUrgent
	default:
		return ExpiryWarningWarning
	}
}
