package model

// RoutingStatus resultado global del enrutamiento de un solicitante
type RoutingStatus string

const (
	RoutingStatusEligible RoutingStatus = "Eligible"
	// RoutingStatusConditional está reservado; ninguna regla actual lo produce
	RoutingStatusConditional RoutingStatus = "Conditional"
	RoutingStatusRejected    RoutingStatus = "Rejected"
)

const (
	RoutingReasonUnderage         = "underage"
	RoutingReasonNoEligibleLender = "no_eligible_lender"
)

// BorrowerProfile datos del solicitante; no se persiste
type BorrowerProfile struct {
	Age               int    `json:"age"`
	MonthlyIncomeBand string `json:"monthly_income_band,omitempty"`
	EmploymentType    string `json:"employment_type,omitempty"`
	CreditBureauFlag  bool   `json:"credit_bureau_flag,omitempty"` // reportado en centrales de riesgo
}

// LendingEntity entidad financiera aliada, dato de referencia de solo lectura
type LendingEntity struct {
	ID                    string  `json:"id" yaml:"id"`
	Name                  string  `json:"name" yaml:"name"`
	MonthlyInterestRate   float64 `json:"monthly_interest_rate" yaml:"monthly_interest_rate"`
	MinDownPaymentPercent float64 `json:"min_down_payment_percent" yaml:"min_down_payment_percent"`
	MinAge                *int    `json:"min_age,omitempty" yaml:"min_age,omitempty"`
	MaxAge                *int    `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	AcceptsBureauFlagged  bool    `json:"accepts_bureau_flagged" yaml:"accepts_bureau_flagged"`
}

// RoutingResult partición de entidades para un perfil
type RoutingResult struct {
	Accepted []LendingEntity `json:"accepted"`
	Rejected []LendingEntity `json:"rejected"`
	Status   RoutingStatus   `json:"status"`
	Reason   string          `json:"reason,omitempty"`
}
