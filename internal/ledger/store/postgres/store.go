package postgres

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
	pgdb "marketlevy/internal/platform/storage/postgres"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
	txcontext "marketlevy/pkg/platform/tx"
)

const paymentColumns = `
	id, trader_id, market_id, collector_id, amount, period, payment_date,
	billing_window_start, billing_window_end, status, transaction_reference,
	notes, rejection_reason, confirmed_by, rejected_by, settled_at, created_at, updated_at`

// PostgresLedger persists levy payments. Duplicate protection lives in the
// partial unique index on (trader_id, billing_window_start); this store only
// translates its violations.
type PostgresLedger struct {
	db *sql.DB
}

func New(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (s *PostgresLedger) Create(ctx context.Context, p *models.LevyPayment) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO levy_payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID.String(), p.TraderID.String(), p.MarketID.String(), p.CollectorID.String(),
		p.Amount, string(p.Period), p.PaymentDate,
		p.BillingWindowStart, p.BillingWindowEnd, string(p.Status), p.TransactionReference,
		p.Notes, p.RejectionReason, nullUser(p.ConfirmedBy), nullUser(p.RejectedBy), p.SettledAt,
		p.CreatedAt, p.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case pgdb.IsUniqueViolation(err, store.IndexTraderWindow):
		return store.ErrWindowTaken
	case pgdb.IsUniqueViolation(err, store.IndexReference):
		return store.ErrReferenceTaken
	case pgdb.IsUniqueViolation(err, ""):
		return fmt.Errorf("insert levy payment: %w", sentinel.ErrConflict)
	default:
		return fmt.Errorf("insert levy payment: %w", err)
	}
}

func (s *PostgresLedger) FindByID(ctx context.Context, paymentID id.PaymentID) (*models.LevyPayment, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM levy_payments WHERE id = $1`, paymentID.String())
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find levy payment: %w", err)
	}
	return p, nil
}

func (s *PostgresLedger) FindActiveInWindow(ctx context.Context, traderID id.TraderID, w models.Window) ([]*models.LevyPayment, error) {
	return s.query(ctx, "find payments in window", `
		SELECT `+paymentColumns+` FROM levy_payments
		WHERE trader_id = $1 AND status <> 'rejected'
		  AND payment_date >= $2 AND payment_date < $3
		ORDER BY (status IN ('successful', 'paid')) DESC, payment_date DESC`,
		traderID.String(), w.Start, w.End)
}

func (s *PostgresLedger) ListByTrader(ctx context.Context, traderID id.TraderID, from, to time.Time) ([]*models.LevyPayment, error) {
	return s.query(ctx, "list payments", `
		SELECT `+paymentColumns+` FROM levy_payments
		WHERE trader_id = $1 AND payment_date >= $2 AND payment_date < $3
		ORDER BY payment_date DESC, created_at DESC`,
		traderID.String(), from, to)
}

func (s *PostgresLedger) LatestSettled(ctx context.Context, traderID id.TraderID) (*models.LevyPayment, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM levy_payments
		WHERE trader_id = $1 AND status IN ('successful', 'paid')
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

// UpdateStatus is a conditional update: the row must still be pending. When
// nothing matched, a second read tells a missing row from a lost race.
func (s *PostgresLedger) UpdateStatus(ctx context.Context, p *models.LevyPayment) error {
	exec := txcontext.Exec(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE levy_payments
		SET status = $2, rejection_reason = $3, confirmed_by = $4, rejected_by = $5,
		    settled_at = $6, updated_at = $7
		WHERE id = $1 AND status = 'pending'`,
		p.ID.String(), string(p.Status), p.RejectionReason,
		nullUser(p.ConfirmedBy), nullUser(p.RejectedBy), p.SettledAt, p.UpdatedAt,
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
		`SELECT EXISTS (SELECT 1 FROM levy_payments WHERE id = $1)`, p.ID.String()).Scan(&exists); err != nil {
		return fmt.Errorf("check levy payment: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresLedger) SumSettled(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM levy_payments
		WHERE status IN ('successful', 'paid') AND payment_date >= $1 AND payment_date < $2`,
		from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum settled payments: %w", err)
	}
	return total, nil
}

func (s *PostgresLedger) CountSettled(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "count settled payments", `
		SELECT COUNT(*) FROM levy_payments
		WHERE status IN ('successful', 'paid') AND payment_date >= $1 AND payment_date < $2`, from, to)
}

func (s *PostgresLedger) CountPayingTraders(ctx context.Context, from, to time.Time) (int64, error) {
	return s.count(ctx, "count paying traders", `
		SELECT COUNT(DISTINCT trader_id) FROM levy_payments
		WHERE status IN ('successful', 'paid') AND payment_date >= $1 AND payment_date < $2`, from, to)
}

func (s *PostgresLedger) count(ctx context.Context, op, query string, from, to time.Time) (int64, error) {
	var n int64
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *PostgresLedger) query(ctx context.Context, op, query string, args ...any) ([]*models.LevyPayment, error) {
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
		confirmedBy, rejectedBy                  uuid.NullUUID
		settledAt                                sql.NullTime
	)
	if err := row.Scan(
		&paymentID, &traderID, &marketID, &collector, &p.Amount, &period, &p.PaymentDate,
		&p.BillingWindowStart, &p.BillingWindowEnd, &status, &p.TransactionReference,
		&p.Notes, &p.RejectionReason, &confirmedBy, &rejectedBy, &settledAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.ID = id.PaymentID(paymentID)
	p.TraderID = id.TraderID(traderID)
	p.MarketID = id.MarketID(marketID)
	p.CollectorID = id.AgentID(collector)
	p.Period = models.Period(period)
	p.Status = models.Status(status)
	p.ConfirmedBy = userPtr(confirmedBy)
	p.RejectedBy = userPtr(rejectedBy)
	if settledAt.Valid {
		t := settledAt.Time
		p.SettledAt = &t
	}
	return &p, nil
}

func nullUser(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func userPtr(n uuid.NullUUID) *id.UserID {
	if !n.Valid {
		return nil
	}
	u := id.UserID(n.UUID)
	return &u
}
