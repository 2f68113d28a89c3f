package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// SQLiteCounterStore contador para despliegues de un solo nodo
type SQLiteCounterStore struct {
	db     *sql.DB
	policy RetryPolicy
	logger *logrus.Logger
}

func NewSQLiteCounterStore(db *sql.DB, policy RetryPolicy, logger *logrus.Logger) *SQLiteCounterStore {
	return &SQLiteCounterStore{db: db, policy: policy, logger: logger}
}

func (s *SQLiteCounterStore) Get(ctx context.Context, key string) (*model.QuotationCounter, error) {
	c, err := scanSQLiteCounter(s.db.QueryRowContext(ctx,
		`SELECT year, sequence_value, last_updated, version FROM quotation_counters WHERE counter_key = ?`, key))
	if err != nil {
		return nil, fmt.Errorf("failed to get counter: %w", err)
	}
	return c, nil
}

func (s *SQLiteCounterStore) Update(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error) {
	return runWithRetry(ctx, s.policy, s.logger, key, func(ctx context.Context) (*model.QuotationCounter, error) {
		c, err := s.updateOnce(ctx, key, fn)
		if err != nil && isSQLiteBusy(err) {
			return nil, fmt.Errorf("%w: %w", errConflict, err)
		}
		return c, err
	})
}

func (s *SQLiteCounterStore) updateOnce(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanSQLiteCounter(tx.QueryRowContext(ctx,
		`SELECT year, sequence_value, last_updated, version FROM quotation_counters WHERE counter_key = ?`, key))
	if err != nil {
		return nil, fmt.Errorf("failed to read counter: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	var res sql.Result
	if current == nil {
		next.Version = 1
		res, err = tx.ExecContext(ctx, `
			INSERT INTO quotation_counters (counter_key, year, sequence_value, last_updated, version)
			VALUES (?, ?, ?, ?, 1)
			ON CONFLICT (counter_key) DO NOTHING`,
			key, next.Year, next.SequenceValue, next.LastUpdated.UnixNano())
	} else {
		next.Version = current.Version + 1
		res, err = tx.ExecContext(ctx, `
			UPDATE quotation_counters
			SET year = ?, sequence_value = ?, last_updated = ?, version = version + 1
			WHERE counter_key = ? AND version = ?`,
			next.Year, next.SequenceValue, next.LastUpdated.UnixNano(), key, current.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write counter: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	} else if affected == 0 {
		return nil, errConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit counter: %w", err)
	}
	return &next, nil
}

func scanSQLiteCounter(row *sql.Row) (*model.QuotationCounter, error) {
	var c model.QuotationCounter
	var updated int64
	if err := row.Scan(&c.Year, &c.SequenceValue, &updated, &c.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.LastUpdated = time.Unix(0, updated).UTC()
	return &c, nil
}
