package masterdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads dimension reference sets from the backing store.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	ListSupplies(ctx context.Context) ([]Supply, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	const query = `SELECT id, code, name, unit_id,
		COALESCE(reorder_point, 0), COALESCE(safety_stock, 0),
		is_active, created_at, updated_at
		FROM products ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.UnitID, &p.ReorderPoint, &p.SafetyStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	const query = `SELECT id, code, name, COALESCE(address, ''), created_at, updated_at FROM warehouses ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (r *repository) ListUnits(ctx context.Context) ([]Unit, error) {
	const query = `SELECT id, code, name FROM units ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Code, &u.Name); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *repository) ListSupplies(ctx context.Context) ([]Supply, error) {
	const query = `SELECT id, number, supplier_id, COALESCE(warehouse_id, 0), ordered_at, created_at FROM supplies ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []Supply
	for rows.Next() {
		var s Supply
		if err := rows.Scan(&s.ID, &s.Number, &s.SupplierID, &s.WarehouseID, &s.OrderedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		supplies = append(supplies, s)
	}
	return supplies, rows.Err()
}
