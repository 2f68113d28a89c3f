package service

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/config"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

func newDefaultSolver() *AffordabilitySolver {
	return NewAffordabilitySolver(config.DefaultCatalog().Policy, newTestLogger())
}

func TestMaxAffordable_Golden(t *testing.T) {
	res, err := newDefaultSolver().MaxAffordable(model.AffordabilityInput{
		DailyBudget: 20000,
		DownPayment: 500000,
		TermMonths:  48,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AffordabilityResult{
		MaxLoanPrincipal:        15127572,
		MaxAssetPrice:           15627572,
		GrossFinancedAmount:     18252929,
		EstimatedMonthlyPayment: 600000,
	}, res)
}

func TestMaxAffordable_Terms(t *testing.T) {
	testCases := []struct {
		term  int
		gross int64
		net   int64
	}{
		{12, 6320295, 5238102},
		{24, 11273597, 9343276},
		{36, 15172797, 12574835},
		{60, 20692750, 17149635},
		{72, 22629586, 18754836},
	}

	solver := newDefaultSolver()
	for _, tc := range testCases {
		res, err := solver.MaxAffordable(model.AffordabilityInput{DailyBudget: 20000, TermMonths: tc.term})
		require.NoError(t, err)
		assert.Equal(t, tc.gross, res.GrossFinancedAmount, "term %d", tc.term)
		assert.Equal(t, tc.net, res.MaxLoanPrincipal, "term %d", tc.term)
		assert.Equal(t, tc.net, res.MaxAssetPrice, "term %d", tc.term)
	}
}

func TestMaxAffordable_ZeroRate(t *testing.T) {
	policy := config.DefaultCatalog().Policy
	policy.MonthlyInterestRate = 0

	res, err := NewAffordabilitySolver(policy, newTestLogger()).MaxAffordable(model.AffordabilityInput{
		DailyBudget: 20000,
		DownPayment: 500000,
		TermMonths:  48,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(27323233), res.GrossFinancedAmount)
	assert.Equal(t, int64(22644814), res.MaxLoanPrincipal)
	assert.Equal(t, int64(23144814), res.MaxAssetPrice)
}

func TestAmortizationFactor(t *testing.T) {
	assert.InDelta(t, 0.03174543610432052, AmortizationFactor(0.0187, 48), 1e-12)
	assert.Equal(t, 0.25, AmortizationFactor(0, 4))
	// plazo extremo: el descuento cae a cero y el factor es la tasa
	assert.InDelta(t, 0.0187, AmortizationFactor(0.0187, 1_000_000), 1e-12)
}

func TestMaxAffordable_InvalidInput(t *testing.T) {
	testCases := []struct {
		name  string
		input model.AffordabilityInput
	}{
		{"zero budget", model.AffordabilityInput{DailyBudget: 0, TermMonths: 48}},
		{"negative budget", model.AffordabilityInput{DailyBudget: -1, TermMonths: 48}},
		{"NaN budget", model.AffordabilityInput{DailyBudget: math.NaN(), TermMonths: 48}},
		{"infinite budget", model.AffordabilityInput{DailyBudget: math.Inf(1), TermMonths: 48}},
		{"negative down payment", model.AffordabilityInput{DailyBudget: 10000, DownPayment: -5, TermMonths: 48}},
		{"zero term", model.AffordabilityInput{DailyBudget: 10000}},
		{"negative term", model.AffordabilityInput{DailyBudget: 10000, TermMonths: -12}},
		{"overflow", model.AffordabilityInput{DailyBudget: 1e300, TermMonths: 48}},
		{"fractional down payment", model.AffordabilityInput{DailyBudget: 20000, DownPayment: 100.5, TermMonths: 48}},
		{"fractional budget", model.AffordabilityInput{DailyBudget: 0.0001, TermMonths: 48}},
		{"fractional budget above one", model.AffordabilityInput{DailyBudget: 20000.25, DownPayment: 500000, TermMonths: 48}},
	}

	solver := newDefaultSolver()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := solver.MaxAffordable(tc.input)
			assert.True(t, errors.Is(err, model.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestMaxAffordableProperties(t *testing.T) {
	solver := newDefaultSolver()
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("price covers the down payment and payment is thirty days", prop.ForAll(
		func(daily, down int64, term int) bool {
			res, err := solver.MaxAffordable(model.AffordabilityInput{
				DailyBudget: float64(daily),
				DownPayment: float64(down),
				TermMonths:  term,
			})
			if err != nil {
				return false
			}
			return res.MaxAssetPrice >= down &&
				res.EstimatedMonthlyPayment == daily*daysPerMonth &&
				res.GrossFinancedAmount >= res.MaxLoanPrincipal
		},
		gen.Int64Range(1, 1_000_000),
		gen.Int64Range(0, 50_000_000),
		gen.IntRange(1, 120),
	))

	properties.Property("longer terms never lower the principal", prop.ForAll(
		func(daily int64, term int) bool {
			short, err1 := solver.MaxAffordable(model.AffordabilityInput{DailyBudget: float64(daily), TermMonths: term})
			long, err2 := solver.MaxAffordable(model.AffordabilityInput{DailyBudget: float64(daily), TermMonths: term + 12})
			return err1 == nil && err2 == nil && long.MaxLoanPrincipal >= short.MaxLoanPrincipal
		},
		gen.Int64Range(1, 1_000_000),
		gen.IntRange(1, 108),
	))

	properties.Property("fractional amounts are rejected", prop.ForAll(
		func(whole int64, fraction float64, onDownPayment bool) bool {
			input := model.AffordabilityInput{DailyBudget: 20000, DownPayment: 500000, TermMonths: 48}
			if onDownPayment {
				input.DownPayment = float64(whole) + fraction
			} else {
				input.DailyBudget = float64(whole) + fraction
			}
			_, err := solver.MaxAffordable(input)
			return errors.Is(err, model.ErrInvalidInput)
		},
		gen.Int64Range(0, 1_000_000),
		gen.Float64Range(0.01, 0.99),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
