package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/provender-erp/provender/internal/ledger"
	"github.com/provender-erp/provender/internal/masterdata"
)

func ptr[T any](v T) *T { return &v }

type memoryMovementRepo struct {
	batches   []ledger.SupplyBatch
	shipments []ledger.ShipmentLine
	transfers []ledger.TransferRecord
	runs      []ledger.ProcessRun
	fail      map[string]error
}

func (r *memoryMovementRepo) ListBatches(ctx context.Context) ([]ledger.SupplyBatch, error) {
	if err := r.fail["supply_batches"]; err != nil {
		return nil, err
	}
	return r.batches, nil
}

func (r *memoryMovementRepo) ListShipments(ctx context.Context) ([]ledger.ShipmentLine, error) {
	if err := r.fail["shipment_lines"]; err != nil {
		return nil, err
	}
	return r.shipments, nil
}

func (r *memoryMovementRepo) ListTransfers(ctx context.Context) ([]ledger.TransferRecord, error) {
	if err := r.fail["stock_transfers"]; err != nil {
		return nil, err
	}
	return r.transfers, nil
}

func (r *memoryMovementRepo) ListProcessRuns(ctx context.Context) ([]ledger.ProcessRun, error) {
	if err := r.fail["process_runs"]; err != nil {
		return nil, err
	}
	return r.runs, nil
}

type memoryRefRepo struct {
	set  masterdata.ReferenceSet
	fail map[string]error
}

func (r *memoryRefRepo) ListProducts(ctx context.Context) ([]masterdata.Product, error) {
	if err := r.fail["products"]; err != nil {
		return nil, err
	}
	return r.set.Products, nil
}

func (r *memoryRefRepo) ListWarehouses(ctx context.Context) ([]masterdata.Warehouse, error) {
	if err := r.fail["warehouses"]; err != nil {
		return nil, err
	}
	return r.set.Warehouses, nil
}

func (r *memoryRefRepo) ListUnits(ctx context.Context) ([]masterdata.Unit, error) {
	if err := r.fail["units"]; err != nil {
		return nil, err
	}
	return r.set.Units, nil
}

func (r *memoryRefRepo) ListSupplies(ctx context.Context) ([]masterdata.Supply, error) {
	if err := r.fail["supplies"]; err != nil {
		return nil, err
	}
	return r.set.Supplies, nil
}

func fixtureRepos() (*memoryMovementRepo, *memoryRefRepo) {
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	movements := &memoryMovementRepo{
		batches: []ledger.SupplyBatch{
			{ID: 1, SupplyID: ptr(int64(9)), ProductID: ptr(int64(7)), WarehouseID: ptr(int64(1)),
				Received: ptr(100.0), Accepted: ptr(100.0), Status: "accepted", CreatedAt: base},
		},
		shipments: []ledger.ShipmentLine{
			{ID: 1, ProductID: ptr(int64(7)), WarehouseID: ptr(int64(1)), Qty: ptr(30.0), CreatedAt: base.Add(time.Hour)},
		},
	}
	refs := &memoryRefRepo{
		set: masterdata.ReferenceSet{
			Products: []masterdata.Product{
				{ID: 7, Code: "FLR-01", Name: "Rye Flour", UnitID: 1, ReorderPoint: 200, SafetyStock: 40},
			},
			Warehouses: []masterdata.Warehouse{{ID: 1, Code: "WH-MAIN", Name: "Main"}},
			Units:      []masterdata.Unit{{ID: 1, Code: "kg", Name: "Kilogram"}},
		},
	}
	return movements, refs
}

func TestOverviewProjectsClassifiedRows(t *testing.T) {
	movements, refs := fixtureRepos()
	svc := NewService(movements, refs, nil, nil, nil)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.Rows, 1)

	row := overview.Rows[0]
	require.Equal(t, "7:1", row.AccountKey)
	require.Equal(t, "FLR-01", row.ProductCode)
	require.Equal(t, "Main", row.Warehouse)
	require.Equal(t, 70.0, row.OnHand)
	require.Equal(t, 70.0, row.Available)
	require.True(t, row.BelowReorder)
	require.Equal(t, "below reorder point", row.Reason)
	require.Equal(t, "70.00 kg", row.DisplayQty)
}

func TestOverviewDegradesWhenWarehouseFetchFails(t *testing.T) {
	movements, refs := fixtureRepos()
	refs.fail = map[string]error{"warehouses": errors.New("connection refused")}
	svc := NewService(movements, refs, nil, nil, nil)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err, "a partial fetch failure never blanks the dashboard")
	require.Len(t, overview.Rows, 1)
	require.Equal(t, "7:none", overview.Rows[0].AccountKey)
	require.Equal(t, "Unassigned", overview.Rows[0].Warehouse)
	require.Len(t, overview.Errors, 1)
	require.Contains(t, overview.Errors[0], "warehouses")
}

func TestOverviewUsesSnapshotCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)

	movements, refs := fixtureRepos()
	svc := NewService(movements, refs, cache, nil, nil)
	ctx := context.Background()

	first, err := svc.Overview(ctx)
	require.NoError(t, err)

	// Mutating the source after the first compute must not change the
	// cached payload until the version is bumped.
	movements.shipments = nil
	second, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, first.Rows, second.Rows)

	require.NoError(t, svc.Invalidate(ctx))
	third, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, 100.0, third.Rows[0].OnHand)
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	movements, refs := fixtureRepos()
	svc := NewService(movements, refs, nil, nil, nil)

	require.NoError(t, svc.Invalidate(context.Background()))
}

func TestCardDrillThrough(t *testing.T) {
	movements, refs := fixtureRepos()
	svc := NewService(movements, refs, nil, nil, nil)

	card, err := svc.Card(context.Background(), "7:1")
	require.NoError(t, err)
	require.Len(t, card.Entries, 2)
	require.Equal(t, 100.0, card.Entries[0].BalanceAfter)
	require.Equal(t, 70.0, card.Entries[1].BalanceAfter)
	require.Equal(t, "supply_batches/1", card.Entries[0].SourceRef)

	_, err = svc.Card(context.Background(), "404:none")
	require.ErrorIs(t, err, ErrAccountNotFound)
}
