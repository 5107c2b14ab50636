package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresStore implements Store on database/sql with the lib/pq driver.
type PostgresStore struct {
	*postgresCupRepository
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		postgresCupRepository: &postgresCupRepository{exec: db},
		db:                    db,
		logger:                logger,
	}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repo CupRepository) error) (txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(ctx, &postgresCupRepository{exec: tx})
	return txErr
}

// postgresCupRepository runs every query on exec, which is the pool outside a
// transaction and the *sql.Tx inside one.
type postgresCupRepository struct {
	exec SQLExecutor
}
