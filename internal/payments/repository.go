package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/provender-erp/provender/internal/ledger"
)

const uniqueViolation = "23505"

// RepositoryPort abstracts payment reads and writes.
type RepositoryPort interface {
	ListPayments(ctx context.Context) ([]ledger.PaymentRecord, error)
	// ExpectedTotals computes the invoiced total per supply from its line
	// items. The engine treats the result as externally supplied input.
	ExpectedTotals(ctx context.Context) (map[int64]float64, error)
	InsertPayment(ctx context.Context, payment Payment) (Payment, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the pgx-backed payments repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) ListPayments(ctx context.Context) ([]ledger.PaymentRecord, error) {
	const query = `SELECT id, supply_id, amount, paid_at, created_at FROM supply_payments ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []ledger.PaymentRecord
	for rows.Next() {
		var p ledger.PaymentRecord
		if err := rows.Scan(&p.ID, &p.SupplyID, &p.Amount, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) ExpectedTotals(ctx context.Context) (map[int64]float64, error) {
	const query = `SELECT supply_id, COALESCE(SUM(price * qty), 0)
		FROM supply_lines GROUP BY supply_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int64]float64)
	for rows.Next() {
		var supplyID int64
		var total float64
		if err := rows.Scan(&supplyID, &total); err != nil {
			return nil, err
		}
		totals[supplyID] = total
	}
	return totals, rows.Err()
}

func (r *repository) InsertPayment(ctx context.Context, payment Payment) (Payment, error) {
	const query = `INSERT INTO supply_payments (number, supply_id, amount, method, note, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		payment.Number, payment.SupplyID, payment.Amount, payment.Method,
		payment.Note, payment.PaidAt, payment.CreatedAt).Scan(&payment.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Payment{}, ErrDuplicateNumber
		}
		return Payment{}, err
	}
	return payment, nil
}
