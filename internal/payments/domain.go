// Package payments materializes supply settlement state: expected totals
// from invoiced line items, payments applied against them, and the resulting
// outstanding balances.
package payments

import (
	"errors"
	"time"
)

// Payment is a recorded payment against a supply document.
type Payment struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	SupplyID  int64     `json:"supply_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Note      string    `json:"note,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterPaymentInput captures a payment registration request.
type RegisterPaymentInput struct {
	SupplyID int64     `json:"supply_id" validate:"required,gt=0"`
	Amount   float64   `json:"amount" validate:"required,gt=0"`
	Method   string    `json:"method" validate:"required,oneof=transfer cash cheque"`
	Note     string    `json:"note" validate:"max=500"`
	PaidAt   time.Time `json:"paid_at"`
}

// SettlementRow is the projected table row for one supply document.
type SettlementRow struct {
	AccountKey    string     `json:"account_key"`
	SupplyID      int64      `json:"supply_id"`
	SupplyNumber  string     `json:"supply_number"`
	ExpectedTotal float64    `json:"expected_total"`
	PaidTotal     float64    `json:"paid_total"`
	Outstanding   float64    `json:"outstanding"`
	Status        string     `json:"status"`
	LastPaymentAt *time.Time `json:"last_payment_at,omitempty"`
}

// SettlementView is the settlement dashboard payload.
type SettlementView struct {
	Rows       []SettlementRow `json:"rows"`
	Errors     []string        `json:"errors,omitempty"`
	ComputedAt time.Time       `json:"computed_at"`
}

// HistoryEntry is one row of a supply's payment running balance, counting
// down from the expected total. Overpaid marks the entry that drove the
// balance negative.
type HistoryEntry struct {
	TxID         string    `json:"tx_id"`
	PaidAt       time.Time `json:"paid_at"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balance_after"`
	Overpaid     bool      `json:"overpaid,omitempty"`
	SourceRef    string    `json:"source_ref"`
}

// History is the drill-through payload for one supply document.
type History struct {
	SupplyID      int64          `json:"supply_id"`
	ExpectedTotal float64        `json:"expected_total"`
	Entries       []HistoryEntry `json:"entries"`
}

var (
	// ErrSupplyNotFound indicates an unknown supply document.
	ErrSupplyNotFound = errors.New("payments: supply not found")
	// ErrDuplicateNumber indicates a payment number collision.
	ErrDuplicateNumber = errors.New("payments: duplicate payment number")
)
