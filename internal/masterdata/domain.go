// Package masterdata serves the dimension reference sets the ledger engine
// joins against: products, warehouses, units and supply documents.
package masterdata

import (
	"time"

	"github.com/provender-erp/provender/internal/ledger"
)

// Product is a processed or raw good, carrying its threshold configuration.
type Product struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	UnitID       int64     `json:"unit_id"`
	ReorderPoint float64   `json:"reorder_point"`
	SafetyStock  float64   `json:"safety_stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Warehouse is a storage location.
type Warehouse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit is a unit of measure.
type Unit struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Supply is a supply document header.
type Supply struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	SupplierID  int64     `json:"supplier_id"`
	WarehouseID int64     `json:"warehouse_id"`
	OrderedAt   time.Time `json:"ordered_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReferenceSet bundles one fetched snapshot of every dimension collection.
type ReferenceSet struct {
	Products   []Product
	Warehouses []Warehouse
	Units      []Unit
	Supplies   []Supply
}

// Lookups builds the id→entity maps the engine's keyer and classifier
// consume. Built once per invocation from the fetched snapshot.
func (s ReferenceSet) Lookups() ledger.Lookups {
	lookups := ledger.Lookups{
		Products:   make(map[int64]ledger.ProductInfo, len(s.Products)),
		Warehouses: make(map[int64]ledger.WarehouseInfo, len(s.Warehouses)),
		Units:      make(map[int64]ledger.UnitInfo, len(s.Units)),
		Supplies:   make(map[int64]ledger.SupplyInfo, len(s.Supplies)),
	}
	for _, p := range s.Products {
		lookups.Products[p.ID] = ledger.ProductInfo{
			ID:           p.ID,
			Code:         p.Code,
			Name:         p.Name,
			UnitID:       p.UnitID,
			ReorderPoint: p.ReorderPoint,
			SafetyStock:  p.SafetyStock,
		}
	}
	for _, w := range s.Warehouses {
		lookups.Warehouses[w.ID] = ledger.WarehouseInfo{ID: w.ID, Code: w.Code, Name: w.Name}
	}
	for _, u := range s.Units {
		lookups.Units[u.ID] = ledger.UnitInfo{ID: u.ID, Code: u.Code}
	}
	for _, sp := range s.Supplies {
		lookups.Supplies[sp.ID] = ledger.SupplyInfo{
			ID:          sp.ID,
			Number:      sp.Number,
			SupplierID:  sp.SupplierID,
			WarehouseID: sp.WarehouseID,
		}
	}
	return lookups
}
