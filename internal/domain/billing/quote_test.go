package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertTransitionError checks that err is an InvalidStateTransitionError
// carrying the expected state and operation.
func assertTransitionError(t *testing.T, err error, state, op string) {
	t.Helper()
	var e *shared.InvalidStateTransitionError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, state, e.CurrentState)
	assert.Equal(t, op, e.Operation)
}

var (
	testOwnerID     = uuid.New()
	testAccountID   = uuid.New()
	testProductID   = uuid.New()
	testAccountName = "Acme Logistics Ltd"
)

func createTestQuote(t *testing.T) *Quote {
	t.Helper()
	quote, err := NewQuote(testOwnerID, "QT-2026-0001", testAccountID, testAccountName)
	require.NoError(t, err)
	return quote
}

func addTestItem(t *testing.T, quote *Quote, qty int64, price float64) *QuoteItem {
	t.Helper()
	item, err := quote.AddItem(uuid.New(), "Consulting hours", qty, money(price), decimal.Zero)
	require.NoError(t, err)
	return item
}

func TestNewQuote(t *testing.T) {
	t.Run("creates draft quote with event", func(t *testing.T) {
		quote := createTestQuote(t)

		assert.Equal(t, QuoteStatusDraft, quote.Status)
		assert.Equal(t, "QT-2026-0001", quote.QuoteNumber)
		assert.Equal(t, testAccountName, quote.AccountName)
		assert.Equal(t, 1, quote.Version)

		events := quote.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeQuoteCreated, events[0].EventType())
	})

	t.Run("validates inputs", func(t *testing.T) {
		_, err := NewQuote(testOwnerID, "", testAccountID, testAccountName)
		assert.Error(t, err)

		_, err = NewQuote(testOwnerID, "QT-2026-0001", uuid.Nil, testAccountName)
		assert.Error(t, err)

		_, err = NewQuote(testOwnerID, "QT-2026-0001", testAccountID, "")
		assert.Error(t, err)
	})
}

func TestQuoteStatusTable(t *testing.T) {
	tests := []struct {
		status  QuoteStatus
		op      QuoteOperation
		allowed bool
	}{
		{QuoteStatusDraft, QuoteOpEditItems, true},
		{QuoteStatusDraft, QuoteOpSend, true},
		{QuoteStatusDraft, QuoteOpApprove, false},
		{QuoteStatusSent, QuoteOpApprove, true},
		{QuoteStatusSent, QuoteOpReject, true},
		{QuoteStatusSent, QuoteOpExpire, true},
		{QuoteStatusSent, QuoteOpEditItems, false},
		{QuoteStatusApproved, QuoteOpConvert, true},
		{QuoteStatusApproved, QuoteOpExpire, true},
		{QuoteStatusApproved, QuoteOpSend, false},
		{QuoteStatusRejected, QuoteOpApprove, false},
		{QuoteStatusExpired, QuoteOpConvert, false},
		{QuoteStatusConverted, QuoteOpConvert, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+"_"+string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.status.Allows(tt.op))
		})
	}
}

func TestAllowedOperationsDrivesGuards(t *testing.T) {
	// The guard and the consumer-facing action set must agree: everything
	// AllowedOperations returns passes the guard, nothing else does.
	allOps := []QuoteOperation{
		QuoteOpEditItems, QuoteOpUpdateDetails, QuoteOpSend, QuoteOpApprove,
		QuoteOpReject, QuoteOpExpire, QuoteOpConvert, QuoteOpDelete,
	}
	for _, status := range []QuoteStatus{
		QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved,
		QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConverted,
	} {
		allowed := make(map[QuoteOperation]bool)
		for _, op := range AllowedOperations(status) {
			allowed[op] = true
		}
		for _, op := range allOps {
			assert.Equal(t, allowed[op], status.Allows(op),
				"status %s op %s", status, op)
		}
	}

	assert.True(t, QuoteStatusRejected.IsTerminal())
	assert.True(t, QuoteStatusExpired.IsTerminal())
	assert.True(t, QuoteStatusConverted.IsTerminal())
	assert.False(t, QuoteStatusDraft.IsTerminal())
}

func TestQuoteItemEditing(t *testing.T) {
	t.Run("add item recomputes totals", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 2, 100)
		addTestItem(t, quote, 1, 49.99)

		assert.Equal(t, "249.99", quote.Subtotal.StringFixed(2))
		assert.Equal(t, "249.99", quote.TotalAmount.StringFixed(2))
	})

	t.Run("line discount flows into totals", func(t *testing.T) {
		quote := createTestQuote(t)
		_, err := quote.AddItem(testProductID, "Premium support", 2, money(500), pct(10))
		require.NoError(t, err)

		assert.Equal(t, "900.00", quote.Subtotal.StringFixed(2))
	})

	t.Run("update item", func(t *testing.T) {
		quote := createTestQuote(t)
		item := addTestItem(t, quote, 1, 100)

		require.NoError(t, quote.UpdateItem(item.ID, 3, money(80), pct(0)))
		assert.Equal(t, "240.00", quote.Subtotal.StringFixed(2))
	})

	t.Run("invalid update is rolled back", func(t *testing.T) {
		quote := createTestQuote(t)
		item := addTestItem(t, quote, 1, 100)

		err := quote.UpdateItem(item.ID, 0, money(80), pct(0))
		assert.Error(t, err)
		assert.Equal(t, "100.00", quote.Subtotal.StringFixed(2))
		assert.Equal(t, int64(1), quote.Items[0].Quantity)
	})

	t.Run("remove item", func(t *testing.T) {
		quote := createTestQuote(t)
		item := addTestItem(t, quote, 1, 100)
		addTestItem(t, quote, 1, 50)

		require.NoError(t, quote.RemoveItem(item.ID))
		assert.Equal(t, "50.00", quote.Subtotal.StringFixed(2))
	})

	t.Run("editing a sent quote fails with transition error", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)
		require.NoError(t, quote.Send())

		_, err := quote.AddItem(uuid.New(), "Extra", 1, money(10), decimal.Zero)
		assertTransitionError(t, err, "SENT", "editItems")
	})
}

func TestQuoteDocumentDiscount(t *testing.T) {
	quote := createTestQuote(t)
	addTestItem(t, quote, 2, 500)

	require.NoError(t, quote.SetTaxRate(pct(16)))
	require.NoError(t, quote.SetDiscount(DiscountTypePercentage, pct(10)))

	assert.Equal(t, "1000.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "100.00", quote.DiscountAmount.StringFixed(2))
	assert.Equal(t, "144.00", quote.TaxAmount.StringFixed(2))
	assert.Equal(t, "1044.00", quote.TotalAmount.StringFixed(2))

	t.Run("flat discount clamps", func(t *testing.T) {
		require.NoError(t, quote.SetDiscount(DiscountTypeFlat, decimal.NewFromInt(5000)))
		assert.Equal(t, "1000.00", quote.DiscountAmount.StringFixed(2))
		assert.Equal(t, "0.00", quote.TotalAmount.StringFixed(2))
	})

	t.Run("negative discount rejected and state kept", func(t *testing.T) {
		err := quote.SetDiscount(DiscountTypeFlat, decimal.NewFromInt(-10))
		assert.Error(t, err)
		assert.Equal(t, "1000.00", quote.DiscountAmount.StringFixed(2))
	})
}

func TestQuoteLifecycle(t *testing.T) {
	t.Run("full approval path", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)

		require.NoError(t, quote.Send())
		assert.Equal(t, QuoteStatusSent, quote.Status)
		require.NotNil(t, quote.SentAt)

		require.NoError(t, quote.Approve())
		assert.Equal(t, QuoteStatusApproved, quote.Status)
		require.NotNil(t, quote.ApprovedAt)
	})

	t.Run("cannot send empty quote", func(t *testing.T) {
		quote := createTestQuote(t)
		assert.Error(t, quote.Send())
		assert.Equal(t, QuoteStatusDraft, quote.Status)
	})

	t.Run("reject from sent", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)
		require.NoError(t, quote.Send())

		require.NoError(t, quote.Reject("too expensive"))
		assert.Equal(t, QuoteStatusRejected, quote.Status)
		assert.Equal(t, "too expensive", quote.Notes)
	})

	t.Run("expire from sent and approved", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)
		require.NoError(t, quote.Send())
		require.NoError(t, quote.Expire())
		assert.Equal(t, QuoteStatusExpired, quote.Status)

		quote2 := createTestQuote(t)
		addTestItem(t, quote2, 1, 100)
		require.NoError(t, quote2.Send())
		require.NoError(t, quote2.Approve())
		require.NoError(t, quote2.Expire())
		assert.Equal(t, QuoteStatusExpired, quote2.Status)
	})

	t.Run("approve from draft fails with details", func(t *testing.T) {
		quote := createTestQuote(t)
		err := quote.Approve()
		assertTransitionError(t, err, "DRAFT", "approve")
	})

	t.Run("terminal states allow nothing", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)
		require.NoError(t, quote.Send())
		require.NoError(t, quote.Reject(""))

		assert.Error(t, quote.Approve())
		assert.Error(t, quote.Send())
		assert.Error(t, quote.Expire())
		assert.Error(t, quote.EnsureDeletable())
	})

	t.Run("lifecycle raises events", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)
		quote.ClearDomainEvents()

		require.NoError(t, quote.Send())
		require.NoError(t, quote.Approve())

		events := quote.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeQuoteSent, events[0].EventType())
		assert.Equal(t, EventTypeQuoteApproved, events[1].EventType())
	})
}

func TestQuoteStaleness(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	quote := createTestQuote(t)
	addTestItem(t, quote, 1, 100)
	require.NoError(t, quote.UpdateDetails(nil, &past, "", ""))
	require.NoError(t, quote.Send())

	assert.True(t, quote.IsStale(now))

	quote2 := createTestQuote(t)
	addTestItem(t, quote2, 1, 100)
	require.NoError(t, quote2.UpdateDetails(nil, &future, "", ""))
	require.NoError(t, quote2.Send())

	assert.False(t, quote2.IsStale(now))

	// draft quotes never go stale
	quote3 := createTestQuote(t)
	require.NoError(t, quote3.UpdateDetails(nil, &past, "", ""))
	assert.False(t, quote3.IsStale(now))
}

func TestQuoteConversion(t *testing.T) {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 1, 0)

	approvedQuote := func(t *testing.T) *Quote {
		quote := createTestQuote(t)
		addTestItem(t, quote, 2, 500)
		require.NoError(t, quote.SetTaxRate(pct(16)))
		require.NoError(t, quote.Send())
		require.NoError(t, quote.Approve())
		return quote
	}

	t.Run("snapshot copies items and financials", func(t *testing.T) {
		quote := approvedQuote(t)
		invoice, err := quote.ConvertToInvoice("INV-2026-0001", issue, due)
		require.NoError(t, err)

		assert.Equal(t, QuoteStatusConverted, quote.Status)
		require.NotNil(t, quote.InvoiceID)
		assert.Equal(t, invoice.ID, *quote.InvoiceID)
		require.NotNil(t, invoice.QuoteID)
		assert.Equal(t, quote.ID, *invoice.QuoteID)

		require.Len(t, invoice.Items, 1)
		assert.Equal(t, quote.Items[0].ProductID, invoice.Items[0].ProductID)
		assert.True(t, quote.Subtotal.Equal(invoice.Subtotal))
		assert.True(t, quote.TaxAmount.Equal(invoice.TaxAmount))
		assert.True(t, quote.TotalAmount.Equal(invoice.TotalAmount))
		assert.Equal(t, InvoiceStatusDraft, invoice.Status)
	})

	t.Run("second conversion fails", func(t *testing.T) {
		quote := approvedQuote(t)
		_, err := quote.ConvertToInvoice("INV-2026-0002", issue, due)
		require.NoError(t, err)

		_, err = quote.ConvertToInvoice("INV-2026-0003", issue, due)
		assertTransitionError(t, err, "CONVERTED", "convertToInvoice")
	})

	t.Run("only approved quotes convert", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestItem(t, quote, 1, 100)
		require.NoError(t, quote.Send())

		_, err := quote.ConvertToInvoice("INV-2026-0004", issue, due)
		assert.Error(t, err)
	})

	t.Run("due date before issue date rejected", func(t *testing.T) {
		quote := approvedQuote(t)
		_, err := quote.ConvertToInvoice("INV-2026-0005", issue, issue.AddDate(0, 0, -1))
		assert.Error(t, err)
		// validation failures must not consume the quote
		assert.Equal(t, QuoteStatusApproved, quote.Status)
	})
}
