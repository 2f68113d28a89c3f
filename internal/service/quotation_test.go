package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/config"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/repository"
)

type fakeNotifier struct {
	mu         sync.Mutex
	quotations []string
	summaries  []*model.DailySummary
	err        error
}

func (f *fakeNotifier) SendQuotationNotification(q *model.Quotation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotations = append(f.quotations, q.Number)
	return f.err
}

func (f *fakeNotifier) SendDailySummary(summary *model.DailySummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return f.err
}

type failingQuotationRepo struct {
	repository.QuotationRepository
}

func (failingQuotationRepo) Create(ctx context.Context, q *model.Quotation) error {
	return errors.New("disk full")
}

var fixedNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

type quotationFixture struct {
	svc      *QuotationService
	seq      *QuotationSequencer
	repo     *repository.MemoryQuotationRepository
	notifier *fakeNotifier
}

func newQuotationFixture() *quotationFixture {
	logger := newTestLogger()
	financing := NewFinancingService(config.NewStaticCatalogStore(config.DefaultCatalog(), logger), logger)
	seq := NewQuotationSequencer(repository.NewMemoryCounterStore(fastRetry, logger), time.Second, logger)
	repo := repository.NewMemoryQuotationRepository(logger)
	notifier := &fakeNotifier{}

	svc := NewQuotationService(financing, seq, repo, notifier, time.UTC, logger)
	svc.now = func() time.Time { return fixedNow }
	return &quotationFixture{svc: svc, seq: seq, repo: repo, notifier: notifier}
}

func validRequest() model.CreateQuotationRequest {
	return model.CreateQuotationRequest{
		CustomerName:  "Camila Rojas",
		CustomerPhone: "3001234567",
		Interest:      "pistera",
		Profile:       model.BorrowerProfile{Age: 30},
		DailyBudget:   20000,
		DownPayment:   500000,
	}
}

func TestCreateQuotation_Eligible(t *testing.T) {
	f := newQuotationFixture()

	q, err := f.svc.CreateQuotation(context.Background(), validRequest())
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, "COT-2024-0001", q.Number)
	assert.Equal(t, model.RoutingStatusEligible, q.Status)
	require.NotNil(t, q.Category)
	assert.Equal(t, "DEPORTIVA", q.Category.Category)
	assert.Equal(t, 48, q.TermMonths)
	assert.Equal(t, int64(15627572), q.Affordability.MaxAssetPrice)
	assert.Equal(t, fixedNow, q.CreatedAt)

	// 500.000 sobre 15.627.572 es ~3,2 %: solo crediorbe no exige más
	require.NotNil(t, q.Lender)
	assert.Equal(t, "sufi", q.Lender.ID)
	assert.True(t, q.Lender.DownPaymentBelowMinimum)
	require.Len(t, q.Alternatives, 3)
	assert.Equal(t, "crediorbe", q.Alternatives[2].ID)
	assert.False(t, q.Alternatives[2].DownPaymentBelowMinimum)

	stored, err := f.svc.GetQuotation(context.Background(), "cot-2024-0001")
	require.NoError(t, err)
	assert.Equal(t, q.ID, stored.ID)
	assert.Equal(t, []string{"COT-2024-0001"}, f.notifier.quotations)
}

func TestCreateQuotation_RejectedDoesNotConsumeNumber(t *testing.T) {
	f := newQuotationFixture()
	req := validRequest()
	req.Profile.Age = 17

	q, err := f.svc.CreateQuotation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.RoutingStatusRejected, q.Status)
	assert.Equal(t, model.RoutingReasonUnderage, q.Reason)
	assert.Empty(t, q.Number)
	assert.Nil(t, q.Lender)

	counter, err := f.seq.Peek(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.SequenceValue)

	q, err = f.svc.CreateQuotation(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "COT-2024-0001", q.Number)
	f.svc.Wait()
}

func TestCreateQuotation_UnclassifiedInterestContinues(t *testing.T) {
	f := newQuotationFixture()
	req := validRequest()
	req.Interest = "xyzxyz123"
	term := 36
	req.TermMonths = &term

	q, err := f.svc.CreateQuotation(context.Background(), req)
	require.NoError(t, err)
	f.svc.Wait()
	assert.Nil(t, q.Category)
	assert.Equal(t, 36, q.TermMonths)
	assert.Equal(t, int64(12574835+500000), q.Affordability.MaxAssetPrice)
}

func TestCreateQuotation_InvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(r *model.CreateQuotationRequest)
	}{
		{"missing name", func(r *model.CreateQuotationRequest) { r.CustomerName = " " }},
		{"missing phone", func(r *model.CreateQuotationRequest) { r.CustomerPhone = "" }},
		{"zero budget", func(r *model.CreateQuotationRequest) { r.DailyBudget = 0 }},
		{"zero term", func(r *model.CreateQuotationRequest) { zero := 0; r.TermMonths = &zero }},
		{"negative age", func(r *model.CreateQuotationRequest) { r.Profile.Age = -3 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newQuotationFixture()
			req := validRequest()
			tc.mutate(&req)

			_, err := f.svc.CreateQuotation(context.Background(), req)
			assert.ErrorIs(t, err, model.ErrInvalidInput)

			counter, err := f.seq.Peek(context.Background(), 2024)
			require.NoError(t, err)
			assert.Equal(t, 0, counter.SequenceValue)
		})
	}
}

func TestCreateQuotation_SequencerUnavailable(t *testing.T) {
	f := newQuotationFixture()
	f.svc.sequencer = NewQuotationSequencer(&stubCounterStore{err: errors.New("timeout")}, time.Second, newTestLogger())

	_, err := f.svc.CreateQuotation(context.Background(), validRequest())
	assert.ErrorIs(t, err, model.ErrSequencerUnavailable)
	assert.Empty(t, f.notifier.quotations)
}

func TestCreateQuotation_PersistFailureLeavesGap(t *testing.T) {
	f := newQuotationFixture()
	f.svc.repo = failingQuotationRepo{}

	_, err := f.svc.CreateQuotation(context.Background(), validRequest())
	assert.Error(t, err)

	f.svc.repo = f.repo
	q, err := f.svc.CreateQuotation(context.Background(), validRequest())
	require.NoError(t, err)
	f.svc.Wait()
	assert.Equal(t, "COT-2024-0002", q.Number)
}

func TestCreateQuotation_NotificationFailureIsNotFatal(t *testing.T) {
	f := newQuotationFixture()
	f.notifier.err = errors.New("smtp down")

	q, err := f.svc.CreateQuotation(context.Background(), validRequest())
	require.NoError(t, err)
	f.svc.Wait()
	assert.Equal(t, "COT-2024-0001", q.Number)
}

func TestGetQuotation_NotFound(t *testing.T) {
	_, err := newQuotationFixture().svc.GetQuotation(context.Background(), "COT-2024-0099")
	assert.ErrorIs(t, err, model.ErrQuotationNotFound)
}

func TestDailySummary(t *testing.T) {
	f := newQuotationFixture()
	ctx := context.Background()

	for _, interest := range []string{"pistera", "naked", "xyzxyz123"} {
		req := validRequest()
		req.Interest = interest
		_, err := f.svc.CreateQuotation(ctx, req)
		require.NoError(t, err)
	}
	// una cotización de ayer no entra en el resumen
	yesterday := sampleStoredQuotation("COT-2024-0100", fixedNow.AddDate(0, 0, -1))
	require.NoError(t, f.repo.Create(ctx, yesterday))
	f.svc.Wait()

	summary, err := f.svc.DailySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", summary.Date)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, map[string]int{"DEPORTIVA": 1, "NAKED": 1, "SIN_CATEGORIA": 1}, summary.ByCategory)
	assert.Equal(t, []string{"COT-2024-0001", "COT-2024-0002", "COT-2024-0003"}, summary.Numbers)
	require.Len(t, f.notifier.summaries, 1)

	list, err := f.svc.ListQuotationsByDay(ctx, fixedNow.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "COT-2024-0100", list[0].Number)
}

func TestQuotationYearFollowsBusinessZone(t *testing.T) {
	logger := newTestLogger()
	bogota := time.FixedZone("COT", -5*60*60)
	financing := NewFinancingService(config.NewStaticCatalogStore(config.DefaultCatalog(), logger), logger)
	seq := NewQuotationSequencer(repository.NewMemoryCounterStore(fastRetry, logger), time.Second, logger)
	repo := repository.NewMemoryQuotationRepository(logger)
	svc := NewQuotationService(financing, seq, repo, nil, bogota, logger)
	ctx := context.Background()

	// 03:00 UTC del 1 de enero sigue siendo 31 de diciembre en Bogotá
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC) }
	q, err := svc.CreateQuotation(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "COT-2024-0001", q.Number)
	assert.Equal(t, bogota, q.CreatedAt.Location())

	summary, err := svc.DailySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", summary.Date)
	assert.Equal(t, []string{"COT-2024-0001"}, summary.Numbers)

	// 06:00 UTC ya es año nuevo en Bogotá
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC) }
	q, err = svc.CreateQuotation(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "COT-2025-0001", q.Number)

	list, err := svc.ListQuotationsByDay(ctx, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "COT-2025-0001", list[0].Number)
}

func sampleStoredQuotation(number string, created time.Time) *model.Quotation {
	return &model.Quotation{
		Number:        number,
		CustomerName:  "Andrés Díaz",
		CustomerPhone: "3109876543",
		Status:        model.RoutingStatusEligible,
		CreatedAt:     created,
	}
}
