package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

// execer is satisfied by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresLedger credits the clubs table with server-side arithmetic.
type PostgresLedger struct {
	db     execer
	logger *slog.Logger
}

func NewPostgresLedger(pool *pgxpool.Pool, logger *slog.Logger) *PostgresLedger {
	return &PostgresLedger{db: pool, logger: logger}
}

// Connect opens a pgx pool for the ledger database and verifies it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create ledger pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping ledger database: %w", err)
	}
	return pool, nil
}

// creditSQL records the credit key and bumps the balance in one statement.
// A key already present inserts nothing, so the update matches no row.
const creditSQL = `
	WITH credit AS (
		INSERT INTO club_credits (credit_key, club_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (credit_key) DO NOTHING
		RETURNING club_id, amount
	)
	UPDATE clubs SET balance = clubs.balance + credit.amount, updated_at = now()
	FROM credit
	WHERE clubs.id = credit.club_id`

func (l *PostgresLedger) CreditBalance(ctx context.Context, key uuid.UUID, clubID int, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	tag, err := l.db.Exec(ctx, creditSQL, key, clubID, amount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("%w: club %d", ErrClubNotFound, clubID)
		}
		return fmt.Errorf("credit club %d: %w", clubID, err)
	}
	if tag.RowsAffected() == 0 {
		l.logger.Info("club credit already applied", "club_id", clubID, "credit_key", key)
		return nil
	}
	l.logger.Debug("club balance credited", "club_id", clubID, "amount", amount)
	return nil
}
