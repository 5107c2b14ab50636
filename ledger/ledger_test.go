package ledger

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerConcurrentCredits(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.CreditBalance(ctx, uuid.New(), 7, 100))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5000), l.Balance(7))
	assert.Zero(t, l.Balance(8))
}

func TestMemoryLedgerRejectsNonPositive(t *testing.T) {
	l := NewMemoryLedger()
	assert.ErrorIs(t, l.CreditBalance(context.Background(), uuid.New(), 1, 0), ErrInvalidAmount)
	assert.ErrorIs(t, l.CreditBalance(context.Background(), uuid.New(), 1, -5), ErrInvalidAmount)
}

func TestMemoryLedgerIgnoresRepeatedKey(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	key := uuid.New()

	require.NoError(t, l.CreditBalance(ctx, key, 4, 300))
	require.NoError(t, l.CreditBalance(ctx, key, 4, 300))
	require.NoError(t, l.CreditBalance(ctx, uuid.New(), 4, 50))

	assert.Equal(t, int64(350), l.Balance(4))
}

type fakeExec struct {
	sql  string
	args []any
	tag  pgconn.CommandTag
	err  error
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return f.tag, f.err
}

func TestPostgresLedgerCredit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	key := uuid.New()

	t.Run("records the key and increments in place", func(t *testing.T) {
		exec := &fakeExec{tag: pgconn.NewCommandTag("UPDATE 1")}
		l := &PostgresLedger{db: exec, logger: logger}

		require.NoError(t, l.CreditBalance(context.Background(), key, 3, 250))
		assert.Contains(t, exec.sql, "ON CONFLICT (credit_key) DO NOTHING")
		assert.Contains(t, exec.sql, "balance = clubs.balance + credit.amount")
		assert.Equal(t, []any{key, 3, int64(250)}, exec.args)
	})

	t.Run("repeated key is acknowledged", func(t *testing.T) {
		exec := &fakeExec{tag: pgconn.NewCommandTag("UPDATE 0")}
		l := &PostgresLedger{db: exec, logger: logger}

		assert.NoError(t, l.CreditBalance(context.Background(), key, 3, 250))
	})

	t.Run("unknown club", func(t *testing.T) {
		exec := &fakeExec{err: &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "club_credits_club_id_fkey"}}
		l := &PostgresLedger{db: exec, logger: logger}

		err := l.CreditBalance(context.Background(), key, 3, 250)
		assert.ErrorIs(t, err, ErrClubNotFound)
	})
}
