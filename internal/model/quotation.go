package model

import (
	"time"

	"github.com/google/uuid"
)

// QuotationCounter registro versionado del consecutivo de cotizaciones de un año
type QuotationCounter struct {
	Year          int       `json:"year" db:"year"`
	SequenceValue int       `json:"sequence_value" db:"sequence_value"`
	LastUpdated   time.Time `json:"last_updated" db:"last_updated"`
	Version       int64     `json:"-" db:"-"`
}

// LenderOffer entidad elegida para la cotización
type LenderOffer struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	MonthlyInterestRate     float64 `json:"monthly_interest_rate"`
	MinDownPaymentPercent   float64 `json:"min_down_payment_percent"`
	DownPaymentBelowMinimum bool    `json:"down_payment_below_minimum"`
}

type Quotation struct {
	ID            uuid.UUID             `json:"id" db:"id"`
	Number        string                `json:"number,omitempty" db:"number"` // COT-2024-0001
	CustomerName  string                `json:"customer_name" db:"customer_name"`
	CustomerPhone string                `json:"customer_phone" db:"customer_phone"`
	CustomerEmail string                `json:"customer_email,omitempty" db:"customer_email"`
	Interest      string                `json:"interest" db:"interest"`
	Category      *ClassificationResult `json:"category,omitempty"`
	Status        RoutingStatus         `json:"status" db:"routing_status"`
	Reason        string                `json:"reason,omitempty" db:"routing_reason"`
	Lender        *LenderOffer          `json:"lender,omitempty"`
	Alternatives  []LenderOffer         `json:"alternatives,omitempty"`
	DailyBudget   float64               `json:"daily_budget" db:"daily_budget"`
	DownPayment   float64               `json:"down_payment" db:"down_payment"`
	TermMonths    int                   `json:"term_months" db:"term_months"`
	Affordability AffordabilityResult   `json:"affordability"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
}

// CreateQuotationRequest solicitud de cotización desde el formulario de financiación
type CreateQuotationRequest struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	Interest      string          `json:"interest"`
	Profile       BorrowerProfile `json:"profile"`
	DailyBudget   float64         `json:"daily_budget"`
	DownPayment   float64         `json:"down_payment"`
	TermMonths    *int            `json:"term_months,omitempty"`
}

// DailySummary resumen de las cotizaciones numeradas de un día
type DailySummary struct {
	Date       string         `json:"date"` // 2006-01-02
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	Numbers    []string       `json:"numbers"`
}
