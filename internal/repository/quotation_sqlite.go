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

type SQLiteQuotationRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewSQLiteQuotationRepository(db *sql.DB, logger *logrus.Logger) *SQLiteQuotationRepository {
	return &SQLiteQuotationRepository{db: db, logger: logger}
}

func (r *SQLiteQuotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	cols, err := encodeQuotation(q)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO quotations (`+quotationSelectColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID.String(), q.Number, q.CustomerName, q.CustomerPhone, q.CustomerEmail, q.Interest,
		cols.category, cols.categoryScore, cols.categoryMethod, string(q.Status), q.Reason,
		cols.lender, cols.alternatives, q.DailyBudget, q.DownPayment, q.TermMonths,
		cols.affordability, q.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create quotation: %w", err)
	}
	return nil
}

func (r *SQLiteQuotationRepository) GetByNumber(ctx context.Context, number string) (*model.Quotation, error) {
	q, err := scanSQLiteQuotation(r.db.QueryRowContext(ctx,
		`SELECT `+quotationSelectColumns+` FROM quotations WHERE number = ?`, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return q, nil
}

func (r *SQLiteQuotationRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Quotation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+quotationSelectColumns+`
        FROM quotations
        WHERE created_at >= ? AND created_at < ?
        ORDER BY created_at, number`, from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query quotations: %w", err)
	}
	defer rows.Close()

	quotations := make([]model.Quotation, 0)
	for rows.Next() {
		q, err := scanSQLiteQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotations: %w", err)
	}
	return quotations, nil
}

func scanSQLiteQuotation(row rowScanner) (*model.Quotation, error) {
	var q model.Quotation
	var cols quotationColumns
	var status string
	var created int64

	if err := row.Scan(
		&q.ID, &q.Number, &q.CustomerName, &q.CustomerPhone, &q.CustomerEmail, &q.Interest,
		&cols.category, &cols.categoryScore, &cols.categoryMethod, &status, &q.Reason,
		&cols.lender, &cols.alternatives, &q.DailyBudget, &q.DownPayment, &q.TermMonths,
		&cols.affordability, &created,
	); err != nil {
		return nil, err
	}

	q.Status = model.RoutingStatus(status)
	q.CreatedAt = time.Unix(0, created).UTC()
	if err := decodeQuotation(&q, cols); err != nil {
		return nil, err
	}
	return &q, nil
}
