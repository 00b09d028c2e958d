package ledger

import "strconv"

// UnassignedSegment marks a key segment whose join target could not be
// resolved. Partial data degrades to a visible quarantined bucket instead of
// failing the whole batch.
const UnassignedSegment = "none"

// Dimension entity shapes the keyer and classifier need. They are deliberately
// minimal copies of the masterdata models so the engine stays import-free of
// the persistence layer.

// ProductInfo carries the per-product threshold configuration.
type ProductInfo struct {
	ID           int64
	Code         string
	Name         string
	UnitID       int64
	ReorderPoint float64
	SafetyStock  float64
}

// WarehouseInfo identifies a warehouse dimension row.
type WarehouseInfo struct {
	ID   int64
	Code string
	Name string
}

// UnitInfo identifies a unit of measure.
type UnitInfo struct {
	ID   int64
	Code string
}

// SupplyInfo identifies a supply document header.
type SupplyInfo struct {
	ID          int64
	Number      string
	SupplierID  int64
	WarehouseID int64
}

// Lookups holds the id→entity maps built once per invocation from the fetched
// reference sets.
type Lookups struct {
	Products   map[int64]ProductInfo
	Warehouses map[int64]WarehouseInfo
	Units      map[int64]UnitInfo
	Supplies   map[int64]SupplyInfo
}

// Ref is the tagged result of a one-level join: either Found or Missing.
type Ref[T any] struct {
	value T
	ok    bool
}

// Found wraps a resolved join target.
func Found[T any](v T) Ref[T] { return Ref[T]{value: v, ok: true} }

// Missing is the absent join result.
func Missing[T any]() Ref[T] { return Ref[T]{} }

// Get returns the value and whether it was found.
func (r Ref[T]) Get() (T, bool) { return r.value, r.ok }

// Product resolves a product id against the lookup set.
func (l Lookups) Product(id int64) Ref[ProductInfo] {
	if p, ok := l.Products[id]; ok {
		return Found(p)
	}
	return Missing[ProductInfo]()
}

// Warehouse resolves a warehouse id against the lookup set.
func (l Lookups) Warehouse(id int64) Ref[WarehouseInfo] {
	if w, ok := l.Warehouses[id]; ok {
		return Found(w)
	}
	return Missing[WarehouseInfo]()
}

// Supply resolves a supply id against the lookup set.
func (l Lookups) Supply(id int64) Ref[SupplyInfo] {
	if s, ok := l.Supplies[id]; ok {
		return Found(s)
	}
	return Missing[SupplyInfo]()
}

// StockKey builds the product+warehouse aggregation key. The warehouse
// segment degrades to the unassigned marker when the id is null or the
// dimension row is gone.
func StockKey(productID int64, warehouseID int64, lookups Lookups) string {
	wh := UnassignedSegment
	if warehouseID != 0 {
		if _, ok := lookups.Warehouse(warehouseID).Get(); ok {
			wh = strconv.FormatInt(warehouseID, 10)
		}
	}
	return strconv.FormatInt(productID, 10) + ":" + wh
}

// PaymentKey builds the supply-document aggregation key.
func PaymentKey(supplyID int64) string {
	return "supply:" + strconv.FormatInt(supplyID, 10)
}

// KeyTransactions derives the account key for every transaction. Keying is a
// pure function of the transaction and the lookup maps.
func KeyTransactions(txs []Transaction, lookups Lookups) []Transaction {
	keyed := make([]Transaction, len(txs))
	for i, tx := range txs {
		if tx.Kind == KindPayment {
			tx.AccountKey = PaymentKey(tx.SupplyID)
		} else {
			tx.AccountKey = StockKey(tx.ProductID, tx.Warehouse, lookups)
		}
		keyed[i] = tx
	}
	return keyed
}
