package repository

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// MemoryCounterStore contador en proceso. Solo para desarrollo y pruebas:
// no sobrevive a un reinicio ni se comparte entre réplicas.
type MemoryCounterStore struct {
	mu       sync.RWMutex
	counters map[string]model.QuotationCounter
	policy   RetryPolicy
	logger   *logrus.Logger
}

func NewMemoryCounterStore(policy RetryPolicy, logger *logrus.Logger) *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]model.QuotationCounter),
		policy:   policy,
		logger:   logger,
	}
}

func (s *MemoryCounterStore) Get(ctx context.Context, key string) (*model.QuotationCounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.counters[key]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Update serializa lectura, cálculo y escritura bajo el mismo candado
func (s *MemoryCounterStore) Update(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error) {
	return runWithRetry(ctx, s.policy, s.logger, key, func(ctx context.Context) (*model.QuotationCounter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		var current *model.QuotationCounter
		if stored, ok := s.counters[key]; ok {
			current = &stored
		}

		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if current != nil {
			next.Version = current.Version + 1
		} else {
			next.Version = 1
		}
		s.counters[key] = next
		return &next, nil
	})
}
