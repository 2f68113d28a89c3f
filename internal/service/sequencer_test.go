package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/repository"
)

var fastRetry = repository.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func newMemorySequencer() *QuotationSequencer {
	store := repository.NewMemoryCounterStore(fastRetry, newTestLogger())
	return NewQuotationSequencer(store, time.Second, newTestLogger())
}

// stubCounterStore devuelve siempre el mismo registro o error
type stubCounterStore struct {
	stored  *model.QuotationCounter
	err     error
	written *model.QuotationCounter
}

func (s *stubCounterStore) Get(ctx context.Context, key string) (*model.QuotationCounter, error) {
	return s.stored, s.err
}

func (s *stubCounterStore) Update(ctx context.Context, key string, fn repository.CounterUpdateFunc) (*model.QuotationCounter, error) {
	if s.err != nil {
		return nil, s.err
	}
	next, err := fn(s.stored)
	if err != nil {
		return nil, err
	}
	s.written = &next
	return &next, nil
}

func TestNextQuoteID_Sequential(t *testing.T) {
	seq := newMemorySequencer()
	ctx := context.Background()

	for _, want := range []string{"COT-2024-0001", "COT-2024-0002", "COT-2024-0003"} {
		id, err := seq.NextQuoteID(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestNextQuoteID_YearRollover(t *testing.T) {
	seq := newMemorySequencer()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := seq.NextQuoteID(ctx, 2024)
		require.NoError(t, err)
	}

	id, err := seq.NextQuoteID(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, "COT-2025-0001", id)

	// el año anterior conserva su contador
	counter, err := seq.Peek(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 5, counter.SequenceValue)
}

func TestNextQuoteID_StaleYearStartsOver(t *testing.T) {
	store := &stubCounterStore{stored: &model.QuotationCounter{Year: 2023, SequenceValue: 812}}
	seq := NewQuotationSequencer(store, time.Second, newTestLogger())

	id, err := seq.NextQuoteID(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "COT-2024-0001", id)
	require.NotNil(t, store.written)
	assert.Equal(t, 2024, store.written.Year)
}

func TestNextQuoteID_Concurrent(t *testing.T) {
	seq := newMemorySequencer()
	const n = 100

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []string
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := seq.NextQuoteID(context.Background(), 2024)
			assert.NoError(t, err)
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(ids)
	require.Len(t, ids, n)
	for i, id := range ids {
		assert.Equal(t, FormatQuoteID(2024, i+1), id)
	}
}

func TestNextQuoteID_StoreFailure(t *testing.T) {
	seq := NewQuotationSequencer(&stubCounterStore{err: errors.New("dial tcp: connection refused")}, time.Second, newTestLogger())

	id, err := seq.NextQuoteID(context.Background(), 2024)
	assert.Empty(t, id)
	assert.ErrorIs(t, err, model.ErrSequencerUnavailable)
}

func TestNextQuoteID_InvalidYear(t *testing.T) {
	_, err := newMemorySequencer().NextQuoteID(context.Background(), 0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPeek(t *testing.T) {
	seq := newMemorySequencer()
	ctx := context.Background()

	counter, err := seq.Peek(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.SequenceValue)

	_, err = seq.NextQuoteID(ctx, 2024)
	require.NoError(t, err)

	counter, err = seq.Peek(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.SequenceValue)
	assert.Equal(t, 2024, counter.Year)

	// Peek no consume números
	id, err := seq.NextQuoteID(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, "COT-2024-0002", id)
}

func TestFormatQuoteID(t *testing.T) {
	assert.Equal(t, "COT-2024-0001", FormatQuoteID(2024, 1))
	assert.Equal(t, "COT-2024-0420", FormatQuoteID(2024, 420))
	assert.Equal(t, "COT-2024-12345", FormatQuoteID(2024, 12345))
}
