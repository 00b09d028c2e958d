// Package ledger reduces dated supply-chain transactions into per-account
// running balances and threshold-classified positions. It is a pure read-side
// materializer: it never writes to the backing store and keeps no state
// between invocations.
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// Kind enumerates supported transaction categories.
type Kind string

const (
	// KindReceipt represents an inbound supply receipt.
	KindReceipt Kind = "RECEIPT"
	// KindRejection removes quantity rejected at quality inspection.
	KindRejection Kind = "REJECTION"
	// KindQualityHold tracks quantity held back pending inspection.
	KindQualityHold Kind = "QUALITY_HOLD"
	// KindShipment represents an outbound customer shipment.
	KindShipment Kind = "SHIPMENT"
	// KindTransferOut moves stock out of a warehouse.
	KindTransferOut Kind = "TRANSFER_OUT"
	// KindTransferIn moves stock into a warehouse.
	KindTransferIn Kind = "TRANSFER_IN"
	// KindConsumption records raw material consumed by a processing run.
	KindConsumption Kind = "CONSUMPTION"
	// KindPayment records a payment against a supply document.
	KindPayment Kind = "PAYMENT"
)

// SourceRef points back at the upstream record a transaction was built from.
// It exists for drill-through only and never participates in computation.
type SourceRef struct {
	Table string `json:"table"`
	ID    int64  `json:"id"`
}

func (r SourceRef) String() string {
	return fmt.Sprintf("%s/%d", r.Table, r.ID)
}

// Transaction is the canonical, immutable event shape every raw source record
// is normalized into. Quantity is always a non-negative magnitude; the reducer
// applies the sign from Kind.
type Transaction struct {
	ID         string
	AccountKey string
	OccurredAt time.Time
	Kind       Kind
	Quantity   float64
	ProductID  int64
	Warehouse  int64
	SupplyID   int64
	SourceRef  SourceRef
}

// RunningBalanceEntry is one audit-trail row: the transaction plus the
// balance after applying it, in chronological order.
type RunningBalanceEntry struct {
	Transaction  Transaction
	BalanceAfter float64
}

// Position is the derived point-in-time snapshot for one account. Stock
// accounts use OnHand/OnHold/Available; payment accounts use the expected,
// paid and outstanding totals.
type Position struct {
	AccountKey    string
	OnHand        float64
	OnHold        float64
	Available     float64
	ExpectedTotal float64
	PaidTotal     float64
	Outstanding   float64
	LastMovement  time.Time
}

// IsPayment reports whether the position belongs to a payment account.
func (p Position) IsPayment() bool {
	return p.ExpectedTotal != 0 || p.PaidTotal != 0
}

// SourceError records a recoverable upstream failure, tagged with the source
// collection it came from. Errors accumulate alongside the result; they never
// replace it.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("ledger: source %s: %v", e.Source, e.Err)
}

func (e SourceError) Unwrap() error { return e.Err }

// ErrOverpayment indicates a proposed payment exceeds the outstanding
// balance. The reducer never raises it; registration callers check it before
// recording a new payment.
var ErrOverpayment = errors.New("ledger: payment exceeds outstanding balance")
