package service

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

const daysPerMonth = 30

// AffordabilitySolver invierte la fórmula de cuota fija para hallar el precio máximo
// que cubre un presupuesto diario.
type AffordabilitySolver struct {
	policy model.FinancialPolicy
	logger *logrus.Logger
}

func NewAffordabilitySolver(policy model.FinancialPolicy, logger *logrus.Logger) *AffordabilitySolver {
	return &AffordabilitySolver{policy: policy, logger: logger}
}

// DefaultTerm plazo que se aplica cuando la solicitud no lo trae
func (s *AffordabilitySolver) DefaultTerm() int {
	return s.policy.DefaultTermMonths
}

// AmortizationFactor r / (1 - (1+r)^-n); con r == 0 la cuota es 1/n
func AmortizationFactor(rate float64, termMonths int) float64 {
	if rate == 0 {
		return 1 / float64(termMonths)
	}
	// para plazos muy largos (1+r)^-n cae a 0 y el factor tiende a r
	discount := math.Pow(1+rate, -float64(termMonths))
	return rate / (1 - discount)
}

func (s *AffordabilitySolver) MaxAffordable(input model.AffordabilityInput) (model.AffordabilityResult, error) {
	if err := validateAffordability(input); err != nil {
		s.logger.WithError(err).Debug("Entrada de capacidad de pago inválida")
		return model.AffordabilityResult{}, err
	}

	target := input.DailyBudget * daysPerMonth
	totalFactor := AmortizationFactor(s.policy.MonthlyInterestRate, input.TermMonths) + s.policy.LifeInsuranceRate

	gross := math.Floor(target / totalFactor)
	net := math.Floor(gross / (1 + s.policy.GuaranteeFeeRate))
	maxPrice := math.Floor(net + input.DownPayment)

	if gross >= math.MaxInt64 || maxPrice >= math.MaxInt64 {
		return model.AffordabilityResult{}, fmt.Errorf("%w: budget out of range", model.ErrInvalidInput)
	}

	result := model.AffordabilityResult{
		MaxLoanPrincipal:        int64(net),
		MaxAssetPrice:           int64(maxPrice),
		GrossFinancedAmount:     int64(gross),
		EstimatedMonthlyPayment: int64(math.Floor(target)),
	}

	s.logger.WithFields(logrus.Fields{
		"daily_budget": input.DailyBudget,
		"term_months":  input.TermMonths,
		"max_price":    result.MaxAssetPrice,
	}).Debug("Capacidad de pago calculada")
	return result, nil
}

func validateAffordability(input model.AffordabilityInput) error {
	switch {
	case math.IsNaN(input.DailyBudget) || math.IsInf(input.DailyBudget, 0) || input.DailyBudget <= 0:
		return fmt.Errorf("%w: daily budget must be positive", model.ErrInvalidInput)
	case math.IsNaN(input.DownPayment) || math.IsInf(input.DownPayment, 0) || input.DownPayment < 0:
		return fmt.Errorf("%w: down payment must not be negative", model.ErrInvalidInput)
	// montos en pesos enteros; el piso no debe comerse parte de la cuota inicial
	case math.Trunc(input.DailyBudget) != input.DailyBudget:
		return fmt.Errorf("%w: daily budget must be a whole amount", model.ErrInvalidInput)
	case math.Trunc(input.DownPayment) != input.DownPayment:
		return fmt.Errorf("%w: down payment must be a whole amount", model.ErrInvalidInput)
	case input.TermMonths <= 0:
		return fmt.Errorf("%w: term must be positive", model.ErrInvalidInput)
	}
	return nil
}
