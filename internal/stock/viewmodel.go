package stock

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/provender-erp/provender/internal/ledger"
)

// ErrAccountNotFound indicates a drill-through request for an unknown
// account key.
var ErrAccountNotFound = errors.New("stock: account not found")

var printer = message.NewPrinter(language.English)

// project renders classified positions into the dashboard table. Rows are
// sorted by product code then warehouse for a stable presentation order.
func project(res ledger.Result, lookups ledger.Lookups) Overview {
	overview := Overview{
		Rows:       make([]Row, 0, len(res.Stock)),
		ComputedAt: time.Now().UTC(),
	}

	for key, status := range res.Stock {
		pos := res.Positions[key]
		row := Row{
			AccountKey:   key,
			OnHand:       pos.OnHand,
			OnHold:       pos.OnHold,
			Available:    pos.Available,
			BelowReorder: status.BelowReorder,
			BelowSafety:  status.BelowSafety,
			Reason:       status.Reason,
		}
		row.ProductID = productIDFromKey(key)
		unitCode := ""
		if product, ok := lookups.Product(row.ProductID).Get(); ok {
			row.ProductCode = product.Code
			row.ProductName = product.Name
			if unit, ok := lookups.Units[product.UnitID]; ok {
				unitCode = unit.Code
			}
		} else {
			row.ProductCode = "#" + strconv.FormatInt(row.ProductID, 10)
			row.ProductName = "Unknown product"
		}
		row.Unit = unitCode
		row.Warehouse = warehouseLabel(key, lookups)
		row.DisplayQty = strings.TrimSpace(printer.Sprintf("%.2f %s", row.Available, unitCode))
		overview.Rows = append(overview.Rows, row)
		overview.AccountKeys = append(overview.AccountKeys, key)
	}

	for _, e := range res.Errors {
		overview.Errors = append(overview.Errors, e.Error())
	}

	sort.Slice(overview.Rows, func(i, j int) bool {
		if overview.Rows[i].ProductCode != overview.Rows[j].ProductCode {
			return overview.Rows[i].ProductCode < overview.Rows[j].ProductCode
		}
		return overview.Rows[i].Warehouse < overview.Rows[j].Warehouse
	})
	sort.Strings(overview.AccountKeys)
	return overview
}

func productIDFromKey(key string) int64 {
	head, _, ok := strings.Cut(key, ":")
	if !ok {
		return 0
	}
	return parseInt(head)
}

func warehouseLabel(key string, lookups ledger.Lookups) string {
	_, tail, ok := strings.Cut(key, ":")
	if !ok || tail == ledger.UnassignedSegment {
		return "Unassigned"
	}
	if wh, ok := lookups.Warehouse(parseInt(tail)).Get(); ok {
		if wh.Name != "" {
			return wh.Name
		}
		return wh.Code
	}
	return "Unassigned"
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
