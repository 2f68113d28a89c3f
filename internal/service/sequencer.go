package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/repository"
)

// CounterKey un contador por año calendario
func CounterKey(year int) string {
	return fmt.Sprintf("quotations-%d", year)
}

// FormatQuoteID COT-2024-0007
func FormatQuoteID(year, sequence int) string {
	return fmt.Sprintf("COT-%d-%04d", year, sequence)
}

// QuotationSequencer asigna números de cotización consecutivos por año.
// El valor vigente vive solo en el almacén; nunca se guarda en memoria entre llamadas.
type QuotationSequencer struct {
	store   repository.CounterStore
	timeout time.Duration
	now     func() time.Time
	logger  *logrus.Logger
}

func NewQuotationSequencer(store repository.CounterStore, timeout time.Duration, logger *logrus.Logger) *QuotationSequencer {
	return &QuotationSequencer{store: store, timeout: timeout, now: time.Now, logger: logger}
}

// NextQuoteID confirma el incremento antes de devolver el número. Un número entregado
// no se reutiliza aunque la cotización no llegue a guardarse.
func (s *QuotationSequencer) NextQuoteID(ctx context.Context, year int) (string, error) {
	if year <= 0 {
		return "", fmt.Errorf("%w: year must be positive", model.ErrInvalidInput)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	counter, err := s.store.Update(ctx, CounterKey(year), func(current *model.QuotationCounter) (model.QuotationCounter, error) {
		value := 0
		if current != nil && current.Year == year {
			value = current.SequenceValue
		}
		return model.QuotationCounter{Year: year, SequenceValue: value + 1, LastUpdated: s.now()}, nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("year", year).Error("No se pudo asignar número de cotización")
		if !errors.Is(err, model.ErrSequencerUnavailable) {
			err = fmt.Errorf("%w: %w", model.ErrSequencerUnavailable, err)
		}
		return "", err
	}

	id := FormatQuoteID(year, counter.SequenceValue)
	s.logger.WithField("quote_id", id).Info("Número de cotización asignado")
	return id, nil
}

// Peek lee el contador del año sin modificarlo
func (s *QuotationSequencer) Peek(ctx context.Context, year int) (*model.QuotationCounter, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive", model.ErrInvalidInput)
	}

	counter, err := s.store.Get(ctx, CounterKey(year))
	if err != nil {
		s.logger.WithError(err).WithField("year", year).Error("Error leyendo el contador")
		return nil, fmt.Errorf("%w: %w", model.ErrSequencerUnavailable, err)
	}
	if counter == nil || counter.Year != year {
		return &model.QuotationCounter{Year: year}, nil
	}
	return counter, nil
}
