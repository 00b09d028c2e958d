package ledger

// Thresholds is the externally configured per-product limit set. Zero,
// absent or negative values mean "not configured" and never trigger a flag.
type Thresholds struct {
	ReorderPoint float64
	SafetyStock  float64
}

// configured treats non-positive thresholds as unset, which also covers the
// invalid-negative-configuration case.
func configured(v float64) bool { return v > 0 }

// StockStatus is the classification of a stock position.
type StockStatus struct {
	BelowReorder bool   `json:"below_reorder"`
	BelowSafety  bool   `json:"below_safety"`
	Reason       string `json:"reason,omitempty"`
}

// ClassifyStock compares an available quantity against configured thresholds.
// A reorder-point breach is reported before a safety-stock breach when both
// hold.
func ClassifyStock(pos Position, t Thresholds) StockStatus {
	status := StockStatus{
		BelowReorder: configured(t.ReorderPoint) && pos.Available < t.ReorderPoint,
		BelowSafety:  configured(t.SafetyStock) && pos.Available < t.SafetyStock,
	}
	switch {
	case status.BelowReorder:
		status.Reason = "below reorder point"
	case status.BelowSafety:
		status.Reason = "below safety stock"
	}
	return status
}

// PaymentStatus classifies a payment account.
type PaymentStatus string

const (
	// PaymentSettled means the expected total is fully covered.
	PaymentSettled PaymentStatus = "SETTLED"
	// PaymentPartial means some but not all of the expected total is paid.
	PaymentPartial PaymentStatus = "PARTIAL"
	// PaymentUnpaid means an invoiced supply has received no payment.
	PaymentUnpaid PaymentStatus = "UNPAID"
	// PaymentNoActivity means nothing was invoiced and nothing paid. It is
	// deliberately distinct from SETTLED so an empty supply never shows a
	// misleading paid badge.
	PaymentNoActivity PaymentStatus = "NO_ACTIVITY"
)

// ClassifyPayment derives the settlement status of a payment position.
func ClassifyPayment(pos Position) PaymentStatus {
	switch {
	case pos.ExpectedTotal == 0 && pos.PaidTotal == 0:
		return PaymentNoActivity
	case pos.Outstanding <= 0:
		return PaymentSettled
	case pos.PaidTotal > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// DaysOfCover estimates how long the available quantity lasts at the given
// average daily usage. Zero usage yields zero cover rather than infinity.
func DaysOfCover(available, dailyUsage float64) float64 {
	if dailyUsage <= 0 {
		return 0
	}
	return Round2(available / dailyUsage)
}

// WithinCoverWindow reports whether the days of cover fall at or under the
// caller-supplied window. Stateless per evaluation.
func WithinCoverWindow(available, dailyUsage, windowDays float64) bool {
	if dailyUsage <= 0 || windowDays <= 0 {
		return false
	}
	return DaysOfCover(available, dailyUsage) <= windowDays
}
