package ledger

// Snapshot is the fixed input set for one engine invocation: every source
// collection already fetched, plus the dimension lookups and the caller
// computed expected totals per supply. Fetch failures are carried in as
// source errors with the affected collection left empty.
type Snapshot struct {
	Batches     []SupplyBatch
	Shipments   []ShipmentLine
	Transfers   []TransferRecord
	ProcessRuns []ProcessRun
	Payments    []PaymentRecord

	Lookups        Lookups
	ExpectedTotals map[int64]float64

	Errors []SourceError
}

// Result is the materialized output of one invocation: current positions,
// per-account running-balance trails, and the accumulated soft errors.
type Result struct {
	Positions map[string]Position
	Ledgers   map[string][]RunningBalanceEntry
	Stock     map[string]StockStatus
	Payments  map[string]PaymentStatus
	Errors    []SourceError
}

// Compute runs the full normalize → key → reduce → classify pipeline over a
// snapshot. It is side-effect free: safe to run concurrently, one invocation
// per request.
func Compute(snap Snapshot) Result {
	txs := make([]Transaction, 0,
		len(snap.Batches)*2+len(snap.Shipments)+len(snap.Transfers)*2+len(snap.ProcessRuns)+len(snap.Payments))
	txs = append(txs, NormalizeBatches(snap.Batches)...)
	txs = append(txs, NormalizeShipments(snap.Shipments)...)
	txs = append(txs, NormalizeTransfers(snap.Transfers)...)
	txs = append(txs, NormalizeProcessRuns(snap.ProcessRuns)...)
	txs = append(txs, NormalizePayments(snap.Payments)...)
	txs = KeyTransactions(txs, snap.Lookups)

	stockAccounts := make(map[string][]Transaction)
	paymentAccounts := make(map[string][]Transaction)
	paymentSupply := make(map[string]int64)
	for _, tx := range txs {
		if tx.Kind == KindPayment {
			paymentAccounts[tx.AccountKey] = append(paymentAccounts[tx.AccountKey], tx)
			paymentSupply[tx.AccountKey] = tx.SupplyID
		} else {
			stockAccounts[tx.AccountKey] = append(stockAccounts[tx.AccountKey], tx)
		}
	}
	// Supplies with an expected total but no payment yet still surface as
	// accounts, otherwise unpaid invoices would be invisible.
	for supplyID := range snap.ExpectedTotals {
		key := PaymentKey(supplyID)
		if _, ok := paymentAccounts[key]; !ok {
			paymentAccounts[key] = nil
			paymentSupply[key] = supplyID
		}
	}

	res := Result{
		Positions: make(map[string]Position, len(stockAccounts)+len(paymentAccounts)),
		Ledgers:   make(map[string][]RunningBalanceEntry, len(stockAccounts)+len(paymentAccounts)),
		Stock:     make(map[string]StockStatus, len(stockAccounts)),
		Payments:  make(map[string]PaymentStatus, len(paymentAccounts)),
		Errors:    append([]SourceError(nil), snap.Errors...),
	}

	for key, accountTxs := range stockAccounts {
		pos, entries := ReduceStock(key, accountTxs)
		res.Positions[key] = pos
		res.Ledgers[key] = entries
		res.Stock[key] = ClassifyStock(pos, thresholdsFor(accountTxs, snap.Lookups))
	}

	for key, accountTxs := range paymentAccounts {
		expected := snap.ExpectedTotals[paymentSupply[key]]
		pos, entries := ReducePayment(key, accountTxs, expected)
		res.Positions[key] = pos
		res.Ledgers[key] = entries
		res.Payments[key] = ClassifyPayment(pos)
	}

	return res
}

// thresholdsFor resolves the product threshold configuration for one stock
// account. Accounts keyed to an unknown product stay unconfigured.
func thresholdsFor(txs []Transaction, lookups Lookups) Thresholds {
	if len(txs) == 0 {
		return Thresholds{}
	}
	product, ok := lookups.Product(txs[0].ProductID).Get()
	if !ok {
		return Thresholds{}
	}
	return Thresholds{ReorderPoint: product.ReorderPoint, SafetyStock: product.SafetyStock}
}
