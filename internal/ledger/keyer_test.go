package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testLookups() Lookups {
	return Lookups{
		Products: map[int64]ProductInfo{
			7: {ID: 7, Code: "FLR-01", Name: "Rye Flour", ReorderPoint: 200, SafetyStock: 80},
		},
		Warehouses: map[int64]WarehouseInfo{
			1: {ID: 1, Code: "WH-MAIN"},
		},
		Supplies: map[int64]SupplyInfo{
			9: {ID: 9, Number: "SUP-0009", WarehouseID: 1},
		},
	}
}

func TestStockKey(t *testing.T) {
	lookups := testLookups()
	require.Equal(t, "7:1", StockKey(7, 1, lookups))
}

func TestStockKeyUnresolvedWarehouseDegrades(t *testing.T) {
	lookups := testLookups()
	// Deleted warehouse and null warehouse both land in the quarantined
	// bucket instead of failing the batch.
	require.Equal(t, "7:none", StockKey(7, 99, lookups))
	require.Equal(t, "7:none", StockKey(7, 0, lookups))
}

func TestStockKeyEmptyWarehouseLookup(t *testing.T) {
	lookups := testLookups()
	lookups.Warehouses = map[int64]WarehouseInfo{}
	require.Equal(t, "7:none", StockKey(7, 1, lookups))
}

func TestKeyTransactionsIsPure(t *testing.T) {
	lookups := testLookups()
	txs := []Transaction{
		{ID: "a", Kind: KindReceipt, ProductID: 7, Warehouse: 1},
		{ID: "b", Kind: KindPayment, SupplyID: 9},
	}
	first := KeyTransactions(txs, lookups)
	second := KeyTransactions(txs, lookups)
	require.Equal(t, first, second)
	require.Equal(t, "7:1", first[0].AccountKey)
	require.Equal(t, "supply:9", first[1].AccountKey)
	// Input slice stays untouched.
	require.Empty(t, txs[0].AccountKey)
}

func TestRef(t *testing.T) {
	lookups := testLookups()

	p, ok := lookups.Product(7).Get()
	require.True(t, ok)
	require.Equal(t, "FLR-01", p.Code)

	_, ok = lookups.Product(404).Get()
	require.False(t, ok)

	_, ok = Missing[WarehouseInfo]().Get()
	require.False(t, ok)
	w, ok := Found(WarehouseInfo{ID: 2}).Get()
	require.True(t, ok)
	require.Equal(t, int64(2), w.ID)
}
