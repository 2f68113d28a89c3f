package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/repository"
)

// QuotationNotifier avisa al equipo comercial; EmailSender es la implementación de producción
type QuotationNotifier interface {
	SendQuotationNotification(q *model.Quotation) error
	SendDailySummary(summary *model.DailySummary) error
}

type QuotationService struct {
	financing *FinancingService
	sequencer *QuotationSequencer
	repo      repository.QuotationRepository
	notifier  QuotationNotifier
	now       func() time.Time
	loc       *time.Location // zona del negocio: año del consecutivo y día del resumen
	pending   sync.WaitGroup
	logger    *logrus.Logger
}

func NewQuotationService(
	financing *FinancingService,
	sequencer *QuotationSequencer,
	repo repository.QuotationRepository,
	notifier QuotationNotifier,
	loc *time.Location,
	logger *logrus.Logger,
) *QuotationService {
	if loc == nil {
		loc = time.UTC
	}
	return &QuotationService{
		financing: financing,
		sequencer: sequencer,
		repo:      repo,
		notifier:  notifier,
		now:       time.Now,
		loc:       loc,
		logger:    logger,
	}
}

// CreateQuotation clasifica el interés, enruta el perfil, calcula la capacidad de pago,
// numera y guarda la cotización. Un solicitante rechazado no consume número.
func (s *QuotationService) CreateQuotation(ctx context.Context, req model.CreateQuotationRequest) (*model.Quotation, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, fmt.Errorf("%w: customer name and phone are required", model.ErrInvalidInput)
	}

	engine := s.financing.Engine()
	input := model.AffordabilityInput{
		DailyBudget: req.DailyBudget,
		DownPayment: req.DownPayment,
		TermMonths:  engine.Term(req.TermMonths),
	}
	if err := validateAffordability(input); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"customer": req.CustomerName,
		"interest": req.Interest,
	}).Info("Solicitud de cotización recibida")

	q := &model.Quotation{
		ID:            uuid.New(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Interest:      req.Interest,
		Category:      engine.Classifier.Classify(req.Interest),
		DailyBudget:   input.DailyBudget,
		DownPayment:   input.DownPayment,
		TermMonths:    input.TermMonths,
		CreatedAt:     s.now().In(s.loc),
	}

	routing, err := engine.Route(req.Profile)
	if err != nil {
		return nil, err
	}
	q.Status = routing.Status
	q.Reason = routing.Reason
	if routing.Status == model.RoutingStatusRejected {
		s.logger.WithFields(logrus.Fields{
			"customer": q.CustomerName,
			"reason":   q.Reason,
		}).Info("Solicitud rechazada, no se asigna número")
		return q, nil
	}

	q.Affordability, err = engine.Solver.MaxAffordable(input)
	if err != nil {
		return nil, err
	}

	offers := lenderOffers(routing.Accepted, input.DownPayment, q.Affordability.MaxAssetPrice)
	q.Lender = &offers[0]
	q.Alternatives = offers[1:]

	q.Number, err = s.sequencer.NextQuoteID(ctx, q.CreatedAt.Year())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, q); err != nil {
		// el número ya se confirmó: queda un hueco en la numeración y no se reutiliza
		s.logger.WithError(err).WithField("number", q.Number).Error("Error guardando la cotización")
		return nil, fmt.Errorf("failed to save quotation %s: %w", q.Number, err)
	}

	s.logger.WithFields(logrus.Fields{
		"number":    q.Number,
		"lender":    q.Lender.ID,
		"max_price": q.Affordability.MaxAssetPrice,
	}).Info("Cotización creada")

	s.notifyAsync(q)
	return q, nil
}

// lenderOffers marca las entidades cuya cuota inicial mínima supera la que aporta el cliente
func lenderOffers(accepted []model.LendingEntity, downPayment float64, maxAssetPrice int64) []model.LenderOffer {
	downPercent := 0.0
	if maxAssetPrice > 0 {
		downPercent = downPayment / float64(maxAssetPrice) * 100
	}

	offers := make([]model.LenderOffer, 0, len(accepted))
	for _, l := range accepted {
		offers = append(offers, model.LenderOffer{
			ID:                      l.ID,
			Name:                    l.Name,
			MonthlyInterestRate:     l.MonthlyInterestRate,
			MinDownPaymentPercent:   l.MinDownPaymentPercent,
			DownPaymentBelowMinimum: downPercent < l.MinDownPaymentPercent,
		})
	}
	return offers
}

func (s *QuotationService) notifyAsync(q *model.Quotation) {
	if s.notifier == nil {
		return
	}
	snapshot := *q

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.notifier.SendQuotationNotification(&snapshot); err != nil {
			s.logger.WithError(err).WithField("number", snapshot.Number).Warn("No se pudo notificar la cotización")
		}
	}()
}

// Wait espera las notificaciones en curso (apagado ordenado)
func (s *QuotationService) Wait() {
	s.pending.Wait()
}

func (s *QuotationService) GetQuotation(ctx context.Context, number string) (*model.Quotation, error) {
	q, err := s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuotationsByDay cotizaciones creadas en el día calendario de day en la zona del negocio
func (s *QuotationService) ListQuotationsByDay(ctx context.Context, day time.Time) ([]model.Quotation, error) {
	day = day.In(s.loc)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	return s.repo.ListCreatedBetween(ctx, from, from.AddDate(0, 0, 1))
}

// DailySummary arma el resumen del día en curso y lo envía al buzón comercial
func (s *QuotationService) DailySummary(ctx context.Context) (*model.DailySummary, error) {
	today := s.now().In(s.loc)
	quotations, err := s.ListQuotationsByDay(ctx, today)
	if err != nil {
		s.logger.WithError(err).Error("Error consultando las cotizaciones del día")
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}

	summary := &model.DailySummary{
		Date:       today.Format("2006-01-02"),
		Total:      len(quotations),
		ByCategory: make(map[string]int),
		Numbers:    make([]string, 0, len(quotations)),
	}
	for _, q := range quotations {
		category := "SIN_CATEGORIA"
		if q.Category != nil {
			category = q.Category.Category
		}
		summary.ByCategory[category]++
		summary.Numbers = append(summary.Numbers, q.Number)
	}

	s.logger.WithFields(logrus.Fields{
		"date":  summary.Date,
		"total": summary.Total,
	}).Info("Resumen diario de cotizaciones")

	if s.notifier != nil {
		if err := s.notifier.SendDailySummary(summary); err != nil {
			s.logger.WithError(err).Warn("No se pudo enviar el resumen diario")
		}
	}
	return summary, nil
}
