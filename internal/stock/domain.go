// Package stock materializes the warehouse stock dashboard from raw movement
// records: supply batches, shipments, transfers and processing runs.
package stock

import (
	"time"

	"github.com/provender-erp/provender/internal/ledger"
)

// Overview is the computed dashboard payload: one row per product+warehouse
// account plus any soft errors encountered while fetching sources.
type Overview struct {
	Rows        []Row     `json:"rows"`
	Errors      []string  `json:"errors,omitempty"`
	ComputedAt  time.Time `json:"computed_at"`
	AccountKeys []string  `json:"-"`
}

// Row is the projected table row for one stock account.
type Row struct {
	AccountKey   string  `json:"account_key"`
	ProductID    int64   `json:"product_id"`
	ProductCode  string  `json:"product_code"`
	ProductName  string  `json:"product_name"`
	Warehouse    string  `json:"warehouse"`
	Unit         string  `json:"unit"`
	OnHand       float64 `json:"on_hand"`
	OnHold       float64 `json:"on_hold"`
	Available    float64 `json:"available"`
	DisplayQty   string  `json:"display_qty"`
	BelowReorder bool    `json:"below_reorder"`
	BelowSafety  bool    `json:"below_safety"`
	Reason       string  `json:"reason,omitempty"`
}

// CardEntry is one drill-through row of an account's running balance.
type CardEntry struct {
	TxID         string    `json:"tx_id"`
	Kind         string    `json:"kind"`
	OccurredAt   time.Time `json:"occurred_at"`
	Quantity     float64   `json:"quantity"`
	BalanceAfter float64   `json:"balance_after"`
	SourceRef    string    `json:"source_ref"`
}

// Card is the audit trail for one account.
type Card struct {
	AccountKey string      `json:"account_key"`
	Entries    []CardEntry `json:"entries"`
}

// Unassigned reports whether an account key sits in the quarantined bucket.
func Unassigned(key string) bool {
	return len(key) > len(ledger.UnassignedSegment) &&
		key[len(key)-len(ledger.UnassignedSegment):] == ledger.UnassignedSegment
}
