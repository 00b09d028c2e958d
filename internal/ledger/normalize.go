package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw source shapes as fetched from the backing store. Nullable columns are
// pointers; adapters coerce them before any arithmetic so the reducer only
// ever sees finite numbers.

// SupplyBatch is one received batch on a supply document.
type SupplyBatch struct {
	ID          int64
	SupplyID    *int64
	ProductID   *int64
	WarehouseID *int64
	Received    *float64
	Accepted    *float64
	Rejected    *float64
	Status      string
	ReceivedAt  *time.Time
	CreatedAt   time.Time
}

// ShipmentLine is one outbound shipment line.
type ShipmentLine struct {
	ID          int64
	ProductID   *int64
	WarehouseID *int64
	Qty         *float64
	ShippedAt   *time.Time
	CreatedAt   time.Time
}

// TransferRecord moves stock between two warehouses.
type TransferRecord struct {
	ID           int64
	ProductID    *int64
	SrcWarehouse *int64
	DstWarehouse *int64
	Qty          *float64
	MovedAt      *time.Time
	CreatedAt    time.Time
}

// ProcessRun consumes raw material from a warehouse during processing.
type ProcessRun struct {
	ID          int64
	ProductID   *int64
	WarehouseID *int64
	QtyConsumed *float64
	StartedAt   *time.Time
	CreatedAt   time.Time
}

// PaymentRecord is a payment applied to a supply document.
type PaymentRecord struct {
	ID        int64
	SupplyID  *int64
	Amount    *float64
	PaidAt    *time.Time
	CreatedAt time.Time
}

// Batch statuses whose unaccepted remainder is treated as held pending
// inspection. The inference is a documented approximation: the source has no
// explicit held-quantity column.
var holdStatuses = map[string]bool{
	"pending":    true,
	"inspection": true,
	"quarantine": true,
}

const statusFailed = "failed"

// coerce turns a nullable numeric column into a finite, non-negative
// magnitude. Null and non-finite values become 0 so downstream math is
// NaN-free by construction.
func coerce(v *float64) float64 {
	if v == nil {
		return 0
	}
	return sanitize(*v)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	return v
}

// CoerceNumeric parses a free-form numeric string the way coerce treats
// nullable columns: anything unparseable is 0, never NaN.
func CoerceNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// occurred picks the event timestamp, falling back to the record's creation
// time when the source left it null.
func occurred(at *time.Time, created time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return *at
	}
	return created
}

func txID(table string, id int64) string {
	return fmt.Sprintf("%s:%d", table, id)
}

// NormalizeBatches maps supply batches into canonical transactions. Each
// batch yields a receipt for the full received quantity, a rejection for any
// rejected quantity, and an inferred quality hold depending on status.
// Batches without a resolvable product are dropped: fabricating an account
// for unknown data would corrupt every downstream position.
func NormalizeBatches(batches []SupplyBatch) []Transaction {
	out := make([]Transaction, 0, len(batches))
	for _, b := range batches {
		if b.ProductID == nil || *b.ProductID == 0 {
			continue
		}
		at := occurred(b.ReceivedAt, b.CreatedAt)
		ref := SourceRef{Table: "supply_batches", ID: b.ID}
		base := Transaction{
			OccurredAt: at,
			ProductID:  *b.ProductID,
			Warehouse:  derefID(b.WarehouseID),
			SupplyID:   derefID(b.SupplyID),
			SourceRef:  ref,
		}

		received := coerce(b.Received)
		rejected := coerce(b.Rejected)

		rx := base
		rx.ID = txID("supply_batches", b.ID)
		rx.Kind = KindReceipt
		rx.Quantity = received
		out = append(out, rx)

		if rejected > 0 {
			rj := base
			rj.ID = txID("supply_batches.rejected", b.ID)
			rj.Kind = KindRejection
			rj.Quantity = rejected
			out = append(out, rj)
		}

		if held := inferredHold(b); held > 0 {
			hd := base
			hd.ID = txID("supply_batches.hold", b.ID)
			hd.Kind = KindQualityHold
			hd.Quantity = held
			out = append(out, hd)
		}
	}
	return out
}

// inferredHold derives the held quantity from batch status. Hold statuses
// hold whatever was received but neither accepted nor rejected; a failed
// batch holds its rejected quantity pending return.
func inferredHold(b SupplyBatch) float64 {
	status := strings.ToLower(strings.TrimSpace(b.Status))
	switch {
	case holdStatuses[status]:
		return math.Max(coerce(b.Received)-coerce(b.Accepted)-coerce(b.Rejected), 0)
	case status == statusFailed:
		return math.Max(coerce(b.Rejected), 0)
	default:
		return 0
	}
}

// NormalizeShipments maps shipment lines into outbound transactions.
func NormalizeShipments(lines []ShipmentLine) []Transaction {
	out := make([]Transaction, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == nil || *l.ProductID == 0 {
			continue
		}
		out = append(out, Transaction{
			ID:         txID("shipment_lines", l.ID),
			OccurredAt: occurred(l.ShippedAt, l.CreatedAt),
			Kind:       KindShipment,
			Quantity:   coerce(l.Qty),
			ProductID:  *l.ProductID,
			Warehouse:  derefID(l.WarehouseID),
			SourceRef:  SourceRef{Table: "shipment_lines", ID: l.ID},
		})
	}
	return out
}

// NormalizeTransfers splits each transfer into a transfer-out at the source
// warehouse and a transfer-in at the destination.
func NormalizeTransfers(transfers []TransferRecord) []Transaction {
	out := make([]Transaction, 0, 2*len(transfers))
	for _, t := range transfers {
		if t.ProductID == nil || *t.ProductID == 0 {
			continue
		}
		at := occurred(t.MovedAt, t.CreatedAt)
		qty := coerce(t.Qty)
		ref := SourceRef{Table: "stock_transfers", ID: t.ID}
		out = append(out, Transaction{
			ID:         txID("stock_transfers.out", t.ID),
			OccurredAt: at,
			Kind:       KindTransferOut,
			Quantity:   qty,
			ProductID:  *t.ProductID,
			Warehouse:  derefID(t.SrcWarehouse),
			SourceRef:  ref,
		})
		out = append(out, Transaction{
			ID:         txID("stock_transfers.in", t.ID),
			OccurredAt: at,
			Kind:       KindTransferIn,
			Quantity:   qty,
			ProductID:  *t.ProductID,
			Warehouse:  derefID(t.DstWarehouse),
			SourceRef:  ref,
		})
	}
	return out
}

// NormalizeProcessRuns maps processing consumption into transactions.
func NormalizeProcessRuns(runs []ProcessRun) []Transaction {
	out := make([]Transaction, 0, len(runs))
	for _, r := range runs {
		if r.ProductID == nil || *r.ProductID == 0 {
			continue
		}
		out = append(out, Transaction{
			ID:         txID("process_runs", r.ID),
			OccurredAt: occurred(r.StartedAt, r.CreatedAt),
			Kind:       KindConsumption,
			Quantity:   coerce(r.QtyConsumed),
			ProductID:  *r.ProductID,
			Warehouse:  derefID(r.WarehouseID),
			SourceRef:  SourceRef{Table: "process_runs", ID: r.ID},
		})
	}
	return out
}

// NormalizePayments maps payments into transactions. Payments without a
// resolvable supply document are dropped.
func NormalizePayments(payments []PaymentRecord) []Transaction {
	out := make([]Transaction, 0, len(payments))
	for _, p := range payments {
		if p.SupplyID == nil || *p.SupplyID == 0 {
			continue
		}
		out = append(out, Transaction{
			ID:         txID("supply_payments", p.ID),
			OccurredAt: occurred(p.PaidAt, p.CreatedAt),
			Kind:       KindPayment,
			Quantity:   coerce(p.Amount),
			SupplyID:   *p.SupplyID,
			SourceRef:  SourceRef{Table: "supply_payments", ID: p.ID},
		})
	}
	return out
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
