package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketlevy/internal/ledger/models"
	"marketlevy/internal/ledger/store"
	sqlitedb "marketlevy/internal/platform/storage/sqlite"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
	txcontext "marketlevy/pkg/platform/tx"
)

const paymentColumns = `
	id, trader_id, market_id, collector_id, amount, period, payment_date,
	billing_window_start, billing_window_end, status, transaction_reference,
	notes, rejection_reason, confirmed_by, rejected_by, settled_at, created_at, updated_at`

// SQLite reports the indexed columns of a violated unique index.
const (
	windowColumns    = "levy_payments.trader_id, levy_payments.billing_window_start"
	referenceColumns = "levy_payments.transaction_reference"
)

// SQLiteLedger is the embedded single-node ledger. It shares the unique
// indexes of the Postgres schema.
type SQLiteLedger struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

func (s *SQLiteLedger) Create(ctx context.Context, p *models.LevyPayment) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO levy_payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.TraderID.String(), p.MarketID.String(), p.CollectorID.String(),
		p.Amount.String(), string(p.Period), sqlitedb.ToMillis(p.PaymentDate),
		sqlitedb.ToMillis(p.BillingWindowStart), sqlitedb.ToMillis(p.BillingWindowEnd),
		string(p.Status), p.TransactionReference,
		p.Notes, p.RejectionReason, nullUser(p.ConfirmedBy), nullUser(p.RejectedBy), nullMillis(p.SettledAt),
		sqlitedb.ToMillis(p.CreatedAt), sqlitedb.ToMillis(p.UpdatedAt),
	)
	switch {
	case err == nil:
		return nil
	case sqlitedb.IsUniqueViolation(err, windowColumns):
		return store.ErrWindowTaken
	case sqlitedb.IsUniqueViolation(err, referenceColumns):
		return store.ErrReferenceTaken
	case sqlitedb.IsUniqueViolation(err, ""):
		return fmt.Errorf("insert levy payment: %w", sentinel.ErrConflict)
	default:
		return fmt.Errorf("insert levy payment: %w", err)
	}
}

func (s *SQLiteLedger) FindByID(ctx context.Context, paymentID id.PaymentID) (*models.LevyPayment, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM levy_payments WHERE id = ?`, paymentID.String())
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find levy payment: %w", err)
	}
	return p, nil
}

func (s *SQLiteLedger) FindActiveInWindow(ctx context.Context, traderID id.TraderID, w models.Window) ([]*models.LevyPayment, error) {
	return s.query(ctx, "find payments in window", `
		SELECT `+paymentColumns+` FROM levy_payments
		WHERE trader_id = ? AND status <> 'rejected'
		  AND payment_date >= ? AND payment_date < ?
		ORDER BY (status IN ('successful', 'paid')) DESC, payment_date DESC`,
		traderID.String(), sqlitedb.ToMillis(w.Start), sqlitedb.ToMillis(w.End))
}

func (s *SQLiteLedger) ListByTrader(ctx context.Context, traderID id.TraderID, from, to time.Time) ([]*models.LevyPayment, error) {
	return s.query(ctx, "list payments", `
		SELECT `+paymentColumns+` FROM levy_payments
		WHERE trader_id = ? AND payment_date >= ? AND payment_date < ?
		ORDER BY payment_date DESC, created_at DESC`,
		traderID.String(), sqlitedb.ToMillis(from), sqlitedb.ToMillis(to))
}

func (s *SQLiteLedger) LatestSettled(ctx context.Context, traderID id.TraderID) (*models.LevyPayment, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM levy_payments
		WHERE trader_id = ? AND status IN ('successful', 'paid')
		ORDER BY payment_date DESC
		LIMIT 1`, traderID.String())
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest settled payment: %w", err)
	}
	return p, nil
}

func (s *SQLiteLedger) UpdateStatus(ctx context.Context, p *models.LevyPayment) error {
	exec := txcontext.Exec(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE levy_payments
		SET status = ?, rejection_reason = ?, confirmed_by = ?, rejected_by = ?,
		    settled_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(p.Status), p.RejectionReason, nullUser(p.ConfirmedBy), nullUser(p.RejectedBy),
		nullMillis(p.SettledAt), sqlitedb.ToMillis(p.UpdatedAt), p.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update levy payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update levy payment rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM levy_payments WHERE id = ?)`, p.ID.String()).Scan(&exists); err != nil {
		return fmt.Errorf("check levy payment: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// SumSettled adds amounts in Go; SQLite's SUM over TEXT would go through
// floating point.
func (s *SQLiteLedger) SumSettled(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT amount FROM levy_payments
		WHERE status IN ('successful', 'paid') AND payment_date >= ? AND payment_date < ?`,
		sqlitedb.ToMillis(from), sqlitedb.ToMillis(to))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum settled payments: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("sum settled payments: %w", err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("sum settled payments: %w", err)
	}
	return total, nil
}

func (s *SQLiteLedger) CountSettled(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "count settled payments", `
		SELECT COUNT(*) FROM levy_payments
		WHERE status IN ('successful', 'paid') AND payment_date >= ? AND payment_date < ?`, from, to)
}

func (s *SQLiteLedger) CountPayingTraders(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "count paying traders", `
		SELECT COUNT(DISTINCT trader_id) FROM levy_payments
		WHERE status IN ('successful', 'paid') AND payment_date >= ? AND payment_date < ?`, from, to)
}

func (s *SQLiteLedger) count(ctx context.Context, op, query string, from, to time.Time) (int64, error) {
	var n int64
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		sqlitedb.ToMillis(from), sqlitedb.ToMillis(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *SQLiteLedger) query(ctx context.Context, op, query string, args ...any) ([]*models.LevyPayment, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*models.LevyPayment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(row scanner) (*models.LevyPayment, error) {
	var (
		p                                        models.LevyPayment
		paymentID, traderID, marketID, collector uuid.UUID
		period, status                           string
		paymentDate, windowStart, windowEnd      int64
		createdAt, updatedAt                     int64
		confirmedBy, rejectedBy                  uuid.NullUUID
		settledAt                                sql.NullInt64
	)
	if err := row.Scan(
		&paymentID, &traderID, &marketID, &collector, &p.Amount, &period, &paymentDate,
		&windowStart, &windowEnd, &status, &p.TransactionReference,
		&p.Notes, &p.RejectionReason, &confirmedBy, &rejectedBy, &settledAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	p.ID = id.PaymentID(paymentID)
	p.TraderID = id.TraderID(traderID)
	p.MarketID = id.MarketID(marketID)
	p.CollectorID = id.AgentID(collector)
	p.Period = models.Period(period)
	p.Status = models.Status(status)
	p.PaymentDate = sqlitedb.FromMillis(paymentDate)
	p.BillingWindowStart = sqlitedb.FromMillis(windowStart)
	p.BillingWindowEnd = sqlitedb.FromMillis(windowEnd)
	p.CreatedAt = sqlitedb.FromMillis(createdAt)
	p.UpdatedAt = sqlitedb.FromMillis(updatedAt)
	p.ConfirmedBy = userPtr(confirmedBy)
	p.RejectedBy = userPtr(rejectedBy)
	if settledAt.Valid {
		t := sqlitedb.FromMillis(settledAt.Int64)
		p.SettledAt = &t
	}
	return &p, nil
}

func nullUser(u *id.UserID) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: u.String(), Valid: true}
}

func userPtr(n uuid.NullUUID) *id.UserID {
	if !n.Valid {
		return nil
	}
	u := id.UserID(n.UUID)
	return &u
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: sqlitedb.ToMillis(*t), Valid: true}
}
