package stock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/provender-erp/provender/internal/ledger"
	"github.com/provender-erp/provender/internal/masterdata"
	"github.com/provender-erp/provender/internal/observability"
)

// Service recomputes the stock dashboard from a fresh snapshot of the
// backing store on every call. It holds no derived state between runs, so
// concurrent invocations need no locking.
type Service struct {
	repo    RepositoryPort
	refdata masterdata.Repository
	cache   *Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService wires the stock dashboard service.
func NewService(repo RepositoryPort, refdata masterdata.Repository, cache *Cache, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, refdata: refdata, cache: cache, metrics: metrics, logger: logger}
}

// snapshot fans out the source and dimension fetches concurrently and joins
// them once all have returned. A failed fetch leaves its collection empty
// and records a source error; it never aborts the computation.
func (s *Service) snapshot(ctx context.Context) ledger.Snapshot {
	var (
		mu   sync.Mutex
		snap ledger.Snapshot
		refs masterdata.ReferenceSet
	)

	record := func(source string, err error) {
		s.logger.Warn("source fetch failed", slog.String("source", source), slog.Any("error", err))
		s.metrics.CountSourceError(source)
		mu.Lock()
		snap.Errors = append(snap.Errors, ledger.SourceError{Source: source, Err: err})
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		batches, err := s.repo.ListBatches(ctx)
		if err != nil {
			record("supply_batches", err)
			return nil
		}
		snap.Batches = batches
		return nil
	})
	g.Go(func() error {
		shipments, err := s.repo.ListShipments(ctx)
		if err != nil {
			record("shipment_lines", err)
			return nil
		}
		snap.Shipments = shipments
		return nil
	})
	g.Go(func() error {
		transfers, err := s.repo.ListTransfers(ctx)
		if err != nil {
			record("stock_transfers", err)
			return nil
		}
		snap.Transfers = transfers
		return nil
	})
	g.Go(func() error {
		runs, err := s.repo.ListProcessRuns(ctx)
		if err != nil {
			record("process_runs", err)
			return nil
		}
		snap.ProcessRuns = runs
		return nil
	})
	g.Go(func() error {
		products, err := s.refdata.ListProducts(ctx)
		if err != nil {
			record("products", err)
			return nil
		}
		refs.Products = products
		return nil
	})
	g.Go(func() error {
		warehouses, err := s.refdata.ListWarehouses(ctx)
		if err != nil {
			record("warehouses", err)
			return nil
		}
		refs.Warehouses = warehouses
		return nil
	})
	g.Go(func() error {
		units, err := s.refdata.ListUnits(ctx)
		if err != nil {
			record("units", err)
			return nil
		}
		refs.Units = units
		return nil
	})
	g.Go(func() error {
		supplies, err := s.refdata.ListSupplies(ctx)
		if err != nil {
			record("supplies", err)
			return nil
		}
		refs.Supplies = supplies
		return nil
	})
	_ = g.Wait()

	snap.Lookups = refs.Lookups()
	return snap
}

// Overview computes (or serves from cache) the classified stock table.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	loader := func(ctx context.Context) (any, error) {
		return s.computeOverview(ctx), nil
	}

	if s.cache == nil {
		value, _ := loader(ctx)
		return value.(Overview), nil
	}

	key, err := s.cache.BuildKey(ctx, "stock", "overview")
	if err != nil {
		// Cache trouble must not blank the dashboard.
		s.logger.Warn("stock cache unavailable", slog.Any("error", err))
		return s.computeOverview(ctx), nil
	}
	var overview Overview
	if err := s.cache.FetchJSON(ctx, key, &overview, loader); err != nil {
		s.logger.Warn("stock cache fetch failed", slog.Any("error", err))
		return s.computeOverview(ctx), nil
	}
	return overview, nil
}

func (s *Service) computeOverview(ctx context.Context) Overview {
	start := time.Now()
	snap := s.snapshot(ctx)
	res := ledger.Compute(snap)
	s.metrics.ObserveRecompute("stock", time.Since(start), len(res.Positions))
	return project(res, snap.Lookups)
}

// Card returns the running-balance drill-through for one account. The trail
// is recomputed from source on every request, like every other view.
func (s *Service) Card(ctx context.Context, accountKey string) (Card, error) {
	snap := s.snapshot(ctx)
	res := ledger.Compute(snap)
	entries, ok := res.Ledgers[accountKey]
	if !ok {
		return Card{}, ErrAccountNotFound
	}
	card := Card{AccountKey: accountKey, Entries: make([]CardEntry, 0, len(entries))}
	for _, e := range entries {
		card.Entries = append(card.Entries, CardEntry{
			TxID:         e.Transaction.ID,
			Kind:         string(e.Transaction.Kind),
			OccurredAt:   e.Transaction.OccurredAt,
			Quantity:     ledger.Round2(e.Transaction.Quantity),
			BalanceAfter: e.BalanceAfter,
			SourceRef:    e.Transaction.SourceRef.String(),
		})
	}
	return card, nil
}

// Invalidate bumps the snapshot cache version after upstream writes.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}
