package payments

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/provender-erp/provender/internal/ledger"
	"github.com/provender-erp/provender/internal/masterdata"
	"github.com/provender-erp/provender/internal/observability"
)

// SupplyPort is the slice of masterdata the settlement view needs.
type SupplyPort interface {
	ListSupplies(ctx context.Context) ([]masterdata.Supply, error)
}

// Service computes settlement state and registers payments. Reads are pure
// recomputations; the single write path performs the overpayment pre-check
// the reducer deliberately does not.
type Service struct {
	repo     RepositoryPort
	supplies SupplyPort
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the payments service.
func NewService(repo RepositoryPort, supplies SupplyPort, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, supplies: supplies, metrics: metrics, logger: logger, now: time.Now}
}

// snapshot fans out the payment, expected-total and supply fetches. Failed
// fetches degrade to empty collections with a recorded source error.
func (s *Service) snapshot(ctx context.Context) (ledger.Snapshot, map[int64]masterdata.Supply) {
	var (
		mu       sync.Mutex
		snap     ledger.Snapshot
		supplies []masterdata.Supply
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
		payments, err := s.repo.ListPayments(ctx)
		if err != nil {
			record("supply_payments", err)
			return nil
		}
		snap.Payments = payments
		return nil
	})
	g.Go(func() error {
		totals, err := s.repo.ExpectedTotals(ctx)
		if err != nil {
			record("supply_lines", err)
			return nil
		}
		snap.ExpectedTotals = totals
		return nil
	})
	g.Go(func() error {
		list, err := s.supplies.ListSupplies(ctx)
		if err != nil {
			record("supplies", err)
			return nil
		}
		supplies = list
		return nil
	})
	_ = g.Wait()

	byID := make(map[int64]masterdata.Supply, len(supplies))
	refs := masterdata.ReferenceSet{Supplies: supplies}
	for _, sp := range supplies {
		byID[sp.ID] = sp
	}
	snap.Lookups = refs.Lookups()
	return snap, byID
}

// Settlements computes the settlement dashboard for every supply document.
func (s *Service) Settlements(ctx context.Context) (SettlementView, error) {
	start := time.Now()
	snap, supplies := s.snapshot(ctx)
	res := ledger.Compute(snap)
	s.metrics.ObserveRecompute("payments", time.Since(start), len(res.Positions))

	view := SettlementView{
		Rows:       make([]SettlementRow, 0, len(res.Payments)),
		ComputedAt: time.Now().UTC(),
	}
	for key, status := range res.Payments {
		pos := res.Positions[key]
		supplyID := supplyIDFromKey(key)
		row := SettlementRow{
			AccountKey:    key,
			SupplyID:      supplyID,
			ExpectedTotal: pos.ExpectedTotal,
			PaidTotal:     pos.PaidTotal,
			Outstanding:   pos.Outstanding,
			Status:        string(status),
		}
		if supply, ok := supplies[supplyID]; ok {
			row.SupplyNumber = supply.Number
		}
		if !pos.LastMovement.IsZero() {
			last := pos.LastMovement
			row.LastPaymentAt = &last
		}
		view.Rows = append(view.Rows, row)
	}
	for _, e := range res.Errors {
		view.Errors = append(view.Errors, e.Error())
	}
	sort.Slice(view.Rows, func(i, j int) bool {
		return view.Rows[i].SupplyID < view.Rows[j].SupplyID
	})
	return view, nil
}

// History returns the payment running balance for one supply document, with
// entries that drove the balance negative marked as overpaid.
func (s *Service) History(ctx context.Context, supplyID int64) (History, error) {
	snap, _ := s.snapshot(ctx)
	res := ledger.Compute(snap)

	key := ledger.PaymentKey(supplyID)
	entries, ok := res.Ledgers[key]
	if !ok {
		return History{}, ErrSupplyNotFound
	}

	history := History{
		SupplyID:      supplyID,
		ExpectedTotal: res.Positions[key].ExpectedTotal,
		Entries:       make([]HistoryEntry, 0, len(entries)),
	}
	for _, e := range entries {
		history.Entries = append(history.Entries, HistoryEntry{
			TxID:         e.Transaction.ID,
			PaidAt:       e.Transaction.OccurredAt,
			Amount:       ledger.Round2(e.Transaction.Quantity),
			BalanceAfter: e.BalanceAfter,
			Overpaid:     e.BalanceAfter < 0,
			SourceRef:    e.Transaction.SourceRef.String(),
		})
	}
	return history, nil
}

// RegisterPayment records a payment after checking it does not exceed the
// supply's outstanding balance. This is the caller-side guard: the reducer
// itself folds whatever it is given.
func (s *Service) RegisterPayment(ctx context.Context, input RegisterPaymentInput) (Payment, error) {
	snap, supplies := s.snapshot(ctx)
	if _, ok := supplies[input.SupplyID]; !ok {
		return Payment{}, ErrSupplyNotFound
	}

	res := ledger.Compute(snap)
	pos := res.Positions[ledger.PaymentKey(input.SupplyID)]
	if input.Amount > pos.Outstanding {
		return Payment{}, fmt.Errorf("%w: amount %.2f, outstanding %.2f",
			ledger.ErrOverpayment, input.Amount, pos.Outstanding)
	}

	now := s.now()
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	payment := Payment{
		Number:    paymentNumber(),
		SupplyID:  input.SupplyID,
		Amount:    input.Amount,
		Method:    input.Method,
		Note:      input.Note,
		PaidAt:    paidAt,
		CreatedAt: now,
	}
	return s.repo.InsertPayment(ctx, payment)
}

func paymentNumber() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}

func supplyIDFromKey(key string) int64 {
	_, tail, ok := strings.Cut(key, ":")
	if !ok {
		return 0
	}
	id, _ := strconv.ParseInt(tail, 10, 64)
	return id
}
