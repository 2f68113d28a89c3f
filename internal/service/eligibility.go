package service

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

const legalAge = 18

// EligibilityRouter reparte las entidades aliadas entre aceptadas y rechazadas para un perfil
type EligibilityRouter struct {
	logger *logrus.Logger
}

func NewEligibilityRouter(logger *logrus.Logger) *EligibilityRouter {
	return &EligibilityRouter{logger: logger}
}

// Route las aceptadas quedan ordenadas por tasa ascendente; empates conservan el orden del catálogo
func (r *EligibilityRouter) Route(profile model.BorrowerProfile, lenders []model.LendingEntity) (model.RoutingResult, error) {
	if profile.Age < 0 {
		return model.RoutingResult{}, fmt.Errorf("%w: age must not be negative", model.ErrInvalidInput)
	}

	accepted := make([]model.LendingEntity, 0, len(lenders))
	rejected := make([]model.LendingEntity, 0, len(lenders))

	if profile.Age < legalAge {
		rejected = append(rejected, lenders...)
		r.logger.WithField("age", profile.Age).Debug("Solicitante menor de edad")
		return model.RoutingResult{
			Accepted: accepted,
			Rejected: rejected,
			Status:   model.RoutingStatusRejected,
			Reason:   model.RoutingReasonUnderage,
		}, nil
	}

	for _, lender := range lenders {
		if accepts(lender, profile) {
			accepted = append(accepted, lender)
		} else {
			rejected = append(rejected, lender)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].MonthlyInterestRate < accepted[j].MonthlyInterestRate
	})

	result := model.RoutingResult{Accepted: accepted, Rejected: rejected, Status: model.RoutingStatusEligible}
	if len(accepted) == 0 {
		result.Status = model.RoutingStatusRejected
		result.Reason = model.RoutingReasonNoEligibleLender
	}

	r.logger.WithFields(logrus.Fields{
		"age":      profile.Age,
		"accepted": len(accepted),
		"rejected": len(rejected),
		"status":   result.Status,
	}).Debug("Perfil enrutado")
	return result, nil
}

func accepts(lender model.LendingEntity, profile model.BorrowerProfile) bool {
	if lender.MinAge != nil && profile.Age < *lender.MinAge {
		return false
	}
	if lender.MaxAge != nil && profile.Age > *lender.MaxAge {
		return false
	}
	return !profile.CreditBureauFlag || lender.AcceptsBureauFlagged
}
