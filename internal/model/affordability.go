package model

// FinancialPolicy constantes de la política de financiación
type FinancialPolicy struct {
	MonthlyInterestRate float64 `json:"monthly_interest_rate" yaml:"monthly_interest_rate"` // tasa mensual r
	GuaranteeFeeRate    float64 `json:"guarantee_fee_rate" yaml:"guarantee_fee_rate"`       // comisión FNG g
	LifeInsuranceRate   float64 `json:"life_insurance_rate" yaml:"life_insurance_rate"`     // seguro de vida s
	DefaultTermMonths   int     `json:"default_term_months" yaml:"default_term_months"`
}

type AffordabilityInput struct {
	DailyBudget float64 `json:"daily_budget"`
	DownPayment float64 `json:"down_payment"`
	TermMonths  int     `json:"term_months"`
}

// AffordabilityResult montos en unidades enteras de moneda, siempre redondeados hacia abajo
type AffordabilityResult struct {
	MaxLoanPrincipal        int64 `json:"max_loan_principal"`
	MaxAssetPrice           int64 `json:"max_asset_price"`
	GrossFinancedAmount     int64 `json:"gross_financed_amount"`
	EstimatedMonthlyPayment int64 `json:"estimated_monthly_payment"`
}
