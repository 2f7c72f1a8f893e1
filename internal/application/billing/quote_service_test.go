package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/billing"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// Test helpers
var (
	testOwnerID     = uuid.New()
	testAccountID   = uuid.New()
	testProductID   = uuid.New()
	testQuoteID     = uuid.New()
	testQuoteNumber = "QT-2026-0001"
	testAccountName = "Acme Supplies Ltd"
)

func newQuoteService(quoteRepo *MockQuoteRepository, invoiceRepo *MockInvoiceRepository) *QuoteService {
	return NewQuoteService(quoteRepo, invoiceRepo, zap.NewNop())
}

func draftQuote(t *testing.T) *billing.Quote {
	t.Helper()
	quote, err := billing.NewQuote(testOwnerID, testQuoteNumber, testAccountID, testAccountName)
	require.NoError(t, err)
	_, err = quote.AddItem(testProductID, "Widget", 2, valueobject.NewMoneyKESFromFloat(100), decimal.Zero)
	require.NoError(t, err)
	return quote
}

func sentQuote(t *testing.T) *billing.Quote {
	t.Helper()
	quote := draftQuote(t)
	require.NoError(t, quote.Send())
	return quote
}

func approvedQuote(t *testing.T) *billing.Quote {
	t.Helper()
	quote := sentQuote(t)
	require.NoError(t, quote.Approve())
	return quote
}

func TestQuoteService_Create(t *testing.T) {
	t.Run("create quote successfully", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quoteRepo.On("GenerateQuoteNumber", ctx).Return(testQuoteNumber, nil)
		quoteRepo.On("Save", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

		req := CreateQuoteRequest{
			AccountID: testAccountID,
			Items: []QuoteItemInput{
				{
					ProductID:   testProductID,
					Description: "Widget",
					Quantity:    5,
					UnitPrice:   decimal.NewFromInt(100),
				},
			},
		}

		result, err := service.Create(ctx, testOwnerID, testAccountName, req)

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, testQuoteNumber, result.QuoteNumber)
		assert.Equal(t, "DRAFT", result.Status)
		assert.Equal(t, "500", result.TotalAmount.String())
		assert.Contains(t, result.AllowedOperations, "send")
		quoteRepo.AssertExpectations(t)
	})

	t.Run("create quote with discount and tax", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quoteRepo.On("GenerateQuoteNumber", ctx).Return(testQuoteNumber, nil)
		quoteRepo.On("Save", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

		taxRate := decimal.NewFromInt(16)
		req := CreateQuoteRequest{
			AccountID: testAccountID,
			Discount:  &DiscountInput{Type: "percentage", Value: decimal.NewFromInt(10)},
			TaxRate:   &taxRate,
			Items: []QuoteItemInput{
				{
					ProductID:   testProductID,
					Description: "Widget",
					Quantity:    10,
					UnitPrice:   decimal.NewFromInt(100),
				},
			},
		}

		result, err := service.Create(ctx, testOwnerID, testAccountName, req)

		assert.NoError(t, err)
		// 1000 - 100 discount = 900, tax 16% = 144, total 1044
		assert.Equal(t, "100", result.DiscountAmount.String())
		assert.Equal(t, "144", result.TaxAmount.String())
		assert.Equal(t, "1044", result.TotalAmount.String())
		quoteRepo.AssertExpectations(t)
	})

	t.Run("invalid item rejected before save", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quoteRepo.On("GenerateQuoteNumber", ctx).Return(testQuoteNumber, nil)

		req := CreateQuoteRequest{
			AccountID: testAccountID,
			Items: []QuoteItemInput{
				{
					ProductID:   testProductID,
					Description: "Widget",
					Quantity:    0,
					UnitPrice:   decimal.NewFromInt(100),
				},
			},
		}

		result, err := service.Create(ctx, testOwnerID, testAccountName, req)

		assert.Error(t, err)
		assert.Nil(t, result)
		quoteRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_GetByID(t *testing.T) {
	t.Run("returns quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := draftQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)

		result, err := service.GetByID(ctx, testQuoteID)

		assert.NoError(t, err)
		assert.Equal(t, testQuoteNumber, result.QuoteNumber)
	})

	t.Run("propagates not found", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(nil, shared.ErrNotFound)

		result, err := service.GetByID(ctx, testQuoteID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, result)
	})
}

func TestQuoteService_List(t *testing.T) {
	quoteRepo := new(MockQuoteRepository)
	service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
	ctx := context.Background()

	quote := draftQuote(t)
	quoteRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return([]billing.Quote{*quote}, nil)
	quoteRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	items, total, err := service.List(ctx, QuoteListFilter{Page: 1, PageSize: 10})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, testQuoteNumber, items[0].QuoteNumber)
}

func TestQuoteService_Lifecycle(t *testing.T) {
	t.Run("send draft quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := draftQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

		result, err := service.Send(ctx, testQuoteID)

		assert.NoError(t, err)
		assert.Equal(t, "SENT", result.Status)
		quoteRepo.AssertExpectations(t)
	})

	t.Run("approve requires sent status", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := draftQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)

		result, err := service.Approve(ctx, testQuoteID)

		assert.Error(t, err)
		assert.Nil(t, result)
		var transitionErr *shared.InvalidStateTransitionError
		assert.ErrorAs(t, err, &transitionErr)
		quoteRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("reject with reason", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := sentQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

		result, err := service.Reject(ctx, testQuoteID, RejectQuoteRequest{Reason: "too expensive"})

		assert.NoError(t, err)
		assert.Equal(t, "REJECTED", result.Status)
	})

	t.Run("concurrency conflict surfaces", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := sentQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*billing.Quote")).Return(shared.ErrConcurrencyConflict)

		result, err := service.Approve(ctx, testQuoteID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Nil(t, result)
	})
}

func TestQuoteService_ConvertToInvoice(t *testing.T) {
	t.Run("converts approved quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		invoiceRepo := new(MockInvoiceRepository)
		service := newQuoteService(quoteRepo, invoiceRepo)
		ctx := context.Background()

		quote := approvedQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)
		invoiceRepo.On("GenerateInvoiceNumber", ctx).Return("INV-2026-0001", nil)
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		result, err := service.ConvertToInvoice(ctx, testQuoteID, ConvertQuoteRequest{})

		assert.NoError(t, err)
		assert.Equal(t, "INV-2026-0001", result.InvoiceNumber)
		assert.Equal(t, "DRAFT", result.Status)
		assert.Equal(t, quote.TotalAmount.String(), result.TotalAmount.String())
		require.NotNil(t, result.QuoteID)
		assert.Equal(t, quote.ID, *result.QuoteID)
		assert.True(t, quote.IsConverted())
		quoteRepo.AssertExpectations(t)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects non-approved quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		invoiceRepo := new(MockInvoiceRepository)
		service := newQuoteService(quoteRepo, invoiceRepo)
		ctx := context.Background()

		quote := sentQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		invoiceRepo.On("GenerateInvoiceNumber", ctx).Return("INV-2026-0001", nil)

		result, err := service.ConvertToInvoice(ctx, testQuoteID, ConvertQuoteRequest{})

		assert.Error(t, err)
		assert.Nil(t, result)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_Delete(t *testing.T) {
	t.Run("deletes draft quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := draftQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("Delete", ctx, testQuoteID).Return(nil)

		assert.NoError(t, service.Delete(ctx, testQuoteID))
		quoteRepo.AssertExpectations(t)
	})

	t.Run("refuses approved quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
		ctx := context.Background()

		quote := approvedQuote(t)
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)

		assert.Error(t, service.Delete(ctx, testQuoteID))
		quoteRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_ExpireStale(t *testing.T) {
	quoteRepo := new(MockQuoteRepository)
	service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
	ctx := context.Background()
	now := time.Now()

	first := sentQuote(t)
	second := sentQuote(t)
	quoteRepo.On("FindStale", ctx, now, 100).Return([]billing.Quote{*first, *second}, nil)
	quoteRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

	expired, err := service.ExpireStale(ctx, now, 100)

	assert.NoError(t, err)
	assert.Equal(t, 2, expired)
	quoteRepo.AssertNumberOfCalls(t, "SaveWithLock", 2)
}

func TestQuoteService_GetStatusSummary(t *testing.T) {
	quoteRepo := new(MockQuoteRepository)
	service := newQuoteService(quoteRepo, new(MockInvoiceRepository))
	ctx := context.Background()

	quoteRepo.On("CountByStatus", ctx, billing.QuoteStatusDraft).Return(int64(3), nil)
	quoteRepo.On("CountByStatus", ctx, billing.QuoteStatusSent).Return(int64(2), nil)
	quoteRepo.On("CountByStatus", ctx, billing.QuoteStatusApproved).Return(int64(1), nil)
	quoteRepo.On("CountByStatus", ctx, billing.QuoteStatusRejected).Return(int64(0), nil)
	quoteRepo.On("CountByStatus", ctx, billing.QuoteStatusExpired).Return(int64(0), nil)
	quoteRepo.On("CountByStatus", ctx, billing.QuoteStatusConverted).Return(int64(4), nil)

	summary, err := service.GetStatusSummary(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), summary.Draft)
	assert.Equal(t, int64(10), summary.Total)
}
