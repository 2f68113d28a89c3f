package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

const (
	selectCounterSQL = `
        SELECT year, sequence_value, last_updated, version
        FROM quotation_counters
        WHERE counter_key = $1
    `
	insertCounterSQL = `
        INSERT INTO quotation_counters (counter_key, year, sequence_value, last_updated, version)
        VALUES ($1, $2, $3, $4, 1)
        ON CONFLICT (counter_key) DO NOTHING
    `
	updateCounterSQL = `
        UPDATE quotation_counters
        SET year = $2, sequence_value = $3, last_updated = $4, version = version + 1
        WHERE counter_key = $1 AND version = $5
    `
)

type PostgresCounterStore struct {
	db     *sql.DB
	policy RetryPolicy
	logger *logrus.Logger
}

func NewPostgresCounterStore(db *sql.DB, policy RetryPolicy, logger *logrus.Logger) *PostgresCounterStore {
	return &PostgresCounterStore{db: db, policy: policy, logger: logger}
}

func (s *PostgresCounterStore) Get(ctx context.Context, key string) (*model.QuotationCounter, error) {
	var c model.QuotationCounter
	err := s.db.QueryRowContext(ctx, selectCounterSQL, key).Scan(&c.Year, &c.SequenceValue, &c.LastUpdated, &c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get counter: %w", err)
	}
	return &c, nil
}

func (s *PostgresCounterStore) Update(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error) {
	return runWithRetry(ctx, s.policy, s.logger, key, func(ctx context.Context) (*model.QuotationCounter, error) {
		return s.updateOnce(ctx, key, fn)
	})
}

func (s *PostgresCounterStore) updateOnce(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyPgError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	// Bloqueamos la fila del año mientras dure la transacción
	var current *model.QuotationCounter
	var stored model.QuotationCounter
	err = tx.QueryRowContext(ctx, selectCounterSQL+" FOR UPDATE", key).
		Scan(&stored.Year, &stored.SequenceValue, &stored.LastUpdated, &stored.Version)
	switch {
	case err == nil:
		current = &stored
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, classifyPgError(fmt.Errorf("failed to lock counter: %w", err))
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	var res sql.Result
	if current == nil {
		next.Version = 1
		res, err = tx.ExecContext(ctx, insertCounterSQL, key, next.Year, next.SequenceValue, next.LastUpdated)
	} else {
		next.Version = current.Version + 1
		res, err = tx.ExecContext(ctx, updateCounterSQL, key, next.Year, next.SequenceValue, next.LastUpdated, current.Version)
	}
	if err != nil {
		return nil, classifyPgError(fmt.Errorf("failed to write counter: %w", err))
	}

	// Sin filas afectadas: otra transacción creó o modificó el contador primero
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	} else if affected == 0 {
		return nil, errConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyPgError(fmt.Errorf("failed to commit counter: %w", err))
	}
	return &next, nil
}

// classifyPgError marca como conflicto los errores que Postgres resuelve repitiendo la transacción
func classifyPgError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "serialization_failure", "deadlock_detected", "unique_violation":
			return fmt.Errorf("%w: %w", errConflict, err)
		}
	}
	return err
}
