package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// QuotationRepository almacena las cotizaciones numeradas
type QuotationRepository interface {
	Create(ctx context.Context, q *model.Quotation) error
	// GetByNumber devuelve model.ErrQuotationNotFound si el número no existe
	GetByNumber(ctx context.Context, number string) (*model.Quotation, error)
	// ListCreatedBetween cotizaciones con from <= created_at < to, en orden de creación
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Quotation, error)
}

// quotationColumns partes de la cotización que se guardan fuera de las columnas planas
type quotationColumns struct {
	category       sql.NullString
	categoryScore  sql.NullFloat64
	categoryMethod sql.NullString
	lender         sql.NullString
	alternatives   sql.NullString
	affordability  string
}

func encodeQuotation(q *model.Quotation) (quotationColumns, error) {
	var cols quotationColumns
	if q.Category != nil {
		cols.category = sql.NullString{String: q.Category.Category, Valid: true}
		cols.categoryScore = sql.NullFloat64{Float64: q.Category.Score, Valid: true}
		cols.categoryMethod = sql.NullString{String: string(q.Category.Method), Valid: true}
	}
	if q.Lender != nil {
		b, err := json.Marshal(q.Lender)
		if err != nil {
			return cols, fmt.Errorf("failed to encode lender: %w", err)
		}
		cols.lender = sql.NullString{String: string(b), Valid: true}
	}
	if len(q.Alternatives) > 0 {
		b, err := json.Marshal(q.Alternatives)
		if err != nil {
			return cols, fmt.Errorf("failed to encode alternatives: %w", err)
		}
		cols.alternatives = sql.NullString{String: string(b), Valid: true}
	}
	b, err := json.Marshal(q.Affordability)
	if err != nil {
		return cols, fmt.Errorf("failed to encode affordability: %w", err)
	}
	cols.affordability = string(b)
	return cols, nil
}

func decodeQuotation(q *model.Quotation, cols quotationColumns) error {
	if cols.category.Valid {
		q.Category = &model.ClassificationResult{
			Category: cols.category.String,
			Score:    cols.categoryScore.Float64,
			Method:   model.MatchMethod(cols.categoryMethod.String),
		}
	}
	if cols.lender.Valid {
		q.Lender = &model.LenderOffer{}
		if err := json.Unmarshal([]byte(cols.lender.String), q.Lender); err != nil {
			return fmt.Errorf("failed to decode lender: %w", err)
		}
	}
	if cols.alternatives.Valid {
		if err := json.Unmarshal([]byte(cols.alternatives.String), &q.Alternatives); err != nil {
			return fmt.Errorf("failed to decode alternatives: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(cols.affordability), &q.Affordability); err != nil {
		return fmt.Errorf("failed to decode affordability: %w", err)
	}
	return nil
}

// MemoryQuotationRepository implementación en proceso para el backend memory y las pruebas
type MemoryQuotationRepository struct {
	mu         sync.RWMutex
	quotations map[string]model.Quotation
	logger     *logrus.Logger
}

func NewMemoryQuotationRepository(logger *logrus.Logger) *MemoryQuotationRepository {
	return &MemoryQuotationRepository{quotations: make(map[string]model.Quotation), logger: logger}
}

func (r *MemoryQuotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quotations[q.Number]; ok {
		return fmt.Errorf("quotation %s already exists", q.Number)
	}
	r.quotations[q.Number] = *q
	return nil
}

func (r *MemoryQuotationRepository) GetByNumber(ctx context.Context, number string) (*model.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quotations[number]
	if !ok {
		return nil, model.ErrQuotationNotFound
	}
	return &q, nil
}

func (r *MemoryQuotationRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Quotation, 0)
	for _, q := range r.quotations {
		if !q.CreatedAt.Before(from) && q.CreatedAt.Before(to) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
