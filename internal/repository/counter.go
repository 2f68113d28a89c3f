package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// CounterUpdateFunc recibe el registro leído dentro de la transacción (nil si no existe)
// y devuelve el registro a escribir. Puede ejecutarse varias veces si hay reintentos.
type CounterUpdateFunc func(current *model.QuotationCounter) (model.QuotationCounter, error)

// CounterStore almacén de contadores con lectura-modificación-escritura atómica
type CounterStore interface {
	// Get devuelve nil, nil si el contador no existe
	Get(ctx context.Context, key string) (*model.QuotationCounter, error)
	// Update confirma el registro devuelto por fn o no escribe nada
	Update(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error)
}

// errConflict otra escritura concurrente ganó la carrera; el intento se puede repetir
var errConflict = errors.New("counter write conflict")

type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
	}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Reset()
	return b
}

// runWithRetry repite attempt mientras falle por conflicto. Agotado el presupuesto,
// o ante cualquier otro error, devuelve ErrSequencerUnavailable.
func runWithRetry(
	ctx context.Context,
	policy RetryPolicy,
	logger *logrus.Logger,
	key string,
	attempt func(ctx context.Context) (*model.QuotationCounter, error),
) (*model.QuotationCounter, error) {
	tries := 0
	counter, err := backoff.Retry(ctx, func() (*model.QuotationCounter, error) {
		tries++
		c, err := attempt(ctx)
		if err == nil {
			return c, nil
		}
		if errors.Is(err, errConflict) {
			logger.WithFields(logrus.Fields{"key": key, "attempt": tries}).Warn("Conflicto de escritura en el contador")
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(policy.backOff()), backoff.WithMaxTries(policy.MaxAttempts))

	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"key": key, "attempts": tries}).Error("No se pudo confirmar el contador")
		return nil, fmt.Errorf("%w: %w", model.ErrSequencerUnavailable, err)
	}
	return counter, nil
}
