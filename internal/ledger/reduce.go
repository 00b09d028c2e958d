package ledger

import (
	"math"
	"sort"
)

// delta returns the signed balance effect of a transaction. The sign
// convention is fixed per kind; quality holds never touch the primary
// balance and are accumulated separately as OnHold.
func delta(tx Transaction) float64 {
	qty := tx.Quantity
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		qty = 0
	}
	switch tx.Kind {
	case KindReceipt, KindTransferIn:
		return qty
	case KindShipment, KindTransferOut, KindConsumption, KindRejection, KindPayment:
		return -qty
	default:
		return 0
	}
}

// SortChronological orders transactions by (occurredAt, id) in place-safe
// fashion, returning a new slice. The id tie-break makes the order
// deterministic for any permutation of the same input.
func SortChronological(txs []Transaction) []Transaction {
	sorted := append([]Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// ReduceStock folds one stock account's transactions into a position and its
// running-balance audit trail. Accumulation runs at full precision; rounding
// happens only on emitted values.
func ReduceStock(key string, txs []Transaction) (Position, []RunningBalanceEntry) {
	sorted := SortChronological(txs)
	entries := make([]RunningBalanceEntry, 0, len(sorted))

	pos := Position{AccountKey: key}
	var balance, hold float64
	for _, tx := range sorted {
		if tx.Kind == KindQualityHold {
			hold += sanitizeSigned(tx.Quantity)
		} else {
			balance += delta(tx)
		}
		entries = append(entries, RunningBalanceEntry{
			Transaction:  tx,
			BalanceAfter: Round2(balance),
		})
		if tx.OccurredAt.After(pos.LastMovement) {
			pos.LastMovement = tx.OccurredAt
		}
	}

	pos.OnHand = Round2(balance)
	pos.OnHold = Round2(hold)
	pos.Available = Round2(math.Max(balance-hold, 0))
	return pos, entries
}

// ReducePayment folds one payment account's transactions. Payments count
// down from the externally supplied expected total rather than up from zero.
// PaidTotal is reported raw even when it exceeds the expected total; only
// Outstanding is floored at zero for display.
func ReducePayment(key string, txs []Transaction, expectedTotal float64) (Position, []RunningBalanceEntry) {
	expected := sanitizeSigned(expectedTotal)
	sorted := SortChronological(txs)
	entries := make([]RunningBalanceEntry, 0, len(sorted))

	pos := Position{AccountKey: key, ExpectedTotal: Round2(expected)}
	balance := expected
	var paid float64
	for _, tx := range sorted {
		d := delta(tx)
		balance += d
		paid -= d
		entries = append(entries, RunningBalanceEntry{
			Transaction:  tx,
			BalanceAfter: Round2(balance),
		})
		if tx.OccurredAt.After(pos.LastMovement) {
			pos.LastMovement = tx.OccurredAt
		}
	}

	pos.PaidTotal = Round2(paid)
	pos.Outstanding = Round2(math.Max(expected-paid, 0))
	return pos, entries
}

// Round2 rounds an emitted quantity to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sanitizeSigned(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
