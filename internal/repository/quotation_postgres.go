package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

const quotationSelectColumns = `
        id, number, customer_name, customer_phone, customer_email, interest,
        category, category_score, category_method, routing_status, routing_reason,
        lender, alternatives, daily_budget, down_payment, term_months, affordability, created_at
`

type PostgresQuotationRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgresQuotationRepository(db *sql.DB, logger *logrus.Logger) *PostgresQuotationRepository {
	return &PostgresQuotationRepository{db: db, logger: logger}
}

func (r *PostgresQuotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	cols, err := encodeQuotation(q)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO quotations (` + quotationSelectColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
    `

	_, err = r.db.ExecContext(
		ctx,
		query,
		q.ID,
		q.Number,
		q.CustomerName,
		q.CustomerPhone,
		q.CustomerEmail,
		q.Interest,
		cols.category,
		cols.categoryScore,
		cols.categoryMethod,
		string(q.Status),
		q.Reason,
		cols.lender,
		cols.alternatives,
		q.DailyBudget,
		q.DownPayment,
		q.TermMonths,
		cols.affordability,
		q.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("quotation %s already exists", q.Number)
		}
		return fmt.Errorf("failed to create quotation: %w", err)
	}

	return nil
}

func (r *PostgresQuotationRepository) GetByNumber(ctx context.Context, number string) (*model.Quotation, error) {
	query := `SELECT ` + quotationSelectColumns + ` FROM quotations WHERE number = $1`

	q, err := scanPostgresQuotation(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return q, nil
}

func (r *PostgresQuotationRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Quotation, error) {
	query := `SELECT ` + quotationSelectColumns + `
        FROM quotations
        WHERE created_at >= $1 AND created_at < $2
        ORDER BY created_at, number`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotations: %w", err)
	}
	defer rows.Close()

	quotations := make([]model.Quotation, 0)
	for rows.Next() {
		q, err := scanPostgresQuotation(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresQuotation(row rowScanner) (*model.Quotation, error) {
	var q model.Quotation
	var cols quotationColumns
	var status string

	if err := row.Scan(
		&q.ID,
		&q.Number,
		&q.CustomerName,
		&q.CustomerPhone,
		&q.CustomerEmail,
		&q.Interest,
		&cols.category,
		&cols.categoryScore,
		&cols.categoryMethod,
		&status,
		&q.Reason,
		&cols.lender,
		&cols.alternatives,
		&q.DailyBudget,
		&q.DownPayment,
		&q.TermMonths,
		&cols.affordability,
		&q.CreatedAt,
	); err != nil {
		return nil, err
	}

	q.Status = model.RoutingStatus(status)
	if err := decodeQuotation(&q, cols); err != nil {
		return nil, err
	}
	return &q, nil
}
