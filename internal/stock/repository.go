package stock

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/provender-erp/provender/internal/ledger"
)

// RepositoryPort fetches the raw movement collections. Each method returns a
// finite, already-materialized slice; the engine never streams.
type RepositoryPort interface {
	ListBatches(ctx context.Context) ([]ledger.SupplyBatch, error)
	ListShipments(ctx context.Context) ([]ledger.ShipmentLine, error)
	ListTransfers(ctx context.Context) ([]ledger.TransferRecord, error)
	ListProcessRuns(ctx context.Context) ([]ledger.ProcessRun, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed movement repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) ListBatches(ctx context.Context) ([]ledger.SupplyBatch, error) {
	const query = `SELECT id, supply_id, product_id, warehouse_id,
		received_qty, accepted_qty, rejected_qty, COALESCE(status, ''), received_at, created_at
		FROM supply_batches ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []ledger.SupplyBatch
	for rows.Next() {
		var b ledger.SupplyBatch
		if err := rows.Scan(&b.ID, &b.SupplyID, &b.ProductID, &b.WarehouseID,
			&b.Received, &b.Accepted, &b.Rejected, &b.Status, &b.ReceivedAt, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *repository) ListShipments(ctx context.Context) ([]ledger.ShipmentLine, error) {
	const query = `SELECT id, product_id, warehouse_id, qty, shipped_at, created_at
		FROM shipment_lines ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ledger.ShipmentLine
	for rows.Next() {
		var l ledger.ShipmentLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.Qty, &l.ShippedAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) ListTransfers(ctx context.Context) ([]ledger.TransferRecord, error) {
	const query = `SELECT id, product_id, src_warehouse_id, dst_warehouse_id, qty, moved_at, created_at
		FROM stock_transfers ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []ledger.TransferRecord
	for rows.Next() {
		var t ledger.TransferRecord
		if err := rows.Scan(&t.ID, &t.ProductID, &t.SrcWarehouse, &t.DstWarehouse, &t.Qty, &t.MovedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (r *repository) ListProcessRuns(ctx context.Context) ([]ledger.ProcessRun, error) {
	const query = `SELECT id, product_id, warehouse_id, qty_consumed, started_at, created_at
		FROM process_runs ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ledger.ProcessRun
	for rows.Next() {
		var p ledger.ProcessRun
		if err := rows.Scan(&p.ID, &p.ProductID, &p.WarehouseID, &p.QtyConsumed, &p.StartedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, p)
	}
	return runs, rows.Err()
}
