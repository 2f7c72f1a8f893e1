package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testIssueDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	testDueDate   = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	testNow       = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
)

func createTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	invoice, err := NewInvoice(testOwnerID, "INV-2026-0001", testAccountID, testAccountName, testIssueDate, testDueDate)
	require.NoError(t, err)
	return invoice
}

// sentInvoice returns an invoice with one line of the given total, sent and
// ready to accept payments.
func sentInvoice(t *testing.T, total float64) *Invoice {
	t.Helper()
	invoice := createTestInvoice(t)
	_, err := invoice.AddItem(uuid.New(), "Implementation services", 1, money(total), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, invoice.Send(testNow))
	invoice.ClearDomainEvents()
	return invoice
}

func recordPayment(t *testing.T, invoice *Invoice, number string, amount float64) *Payment {
	t.Helper()
	payment, err := invoice.RecordPayment(number, money(amount), PaymentMethodMpesa, "", nil, testNow)
	require.NoError(t, err)
	return payment
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft invoice", func(t *testing.T) {
		invoice := createTestInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, invoice.Status)
		assert.Equal(t, "INV-2026-0001", invoice.InvoiceNumber)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceCreated, events[0].EventType())
	})

	t.Run("due date before issue date rejected", func(t *testing.T) {
		_, err := NewInvoice(testOwnerID, "INV-2026-0002", testAccountID, testAccountName, testDueDate, testIssueDate)
		assert.Error(t, err)
	})

	t.Run("validates account", func(t *testing.T) {
		_, err := NewInvoice(testOwnerID, "INV-2026-0003", uuid.Nil, testAccountName, testIssueDate, testDueDate)
		assert.Error(t, err)
	})
}

func TestInvoiceSend(t *testing.T) {
	t.Run("draft to sent", func(t *testing.T) {
		invoice := createTestInvoice(t)
		_, err := invoice.AddItem(uuid.New(), "Services", 1, money(100), decimal.Zero)
		require.NoError(t, err)

		require.NoError(t, invoice.Send(testNow))
		assert.Equal(t, InvoiceStatusSent, invoice.Status)
		assert.Equal(t, "100.00", invoice.AmountDue.StringFixed(2))
	})

	t.Run("straight to overdue when already past due", func(t *testing.T) {
		invoice := createTestInvoice(t)
		_, err := invoice.AddItem(uuid.New(), "Services", 1, money(100), decimal.Zero)
		require.NoError(t, err)

		late := testDueDate.AddDate(0, 0, 5)
		require.NoError(t, invoice.Send(late))
		assert.Equal(t, InvoiceStatusOverdue, invoice.Status)
	})

	t.Run("cannot send empty invoice", func(t *testing.T) {
		invoice := createTestInvoice(t)
		assert.Error(t, invoice.Send(testNow))
	})

	t.Run("cannot send twice", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		assertTransitionError(t, invoice.Send(testNow), "SENT", "send")
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("partial then paid", func(t *testing.T) {
		invoice := sentInvoice(t, 1000)

		recordPayment(t, invoice, "PAY-2026-0001", 400)
		assert.Equal(t, InvoiceStatusPartial, invoice.Status)
		assert.Equal(t, "400.00", invoice.AmountPaid.StringFixed(2))
		assert.Equal(t, "600.00", invoice.AmountDue.StringFixed(2))
		assert.Nil(t, invoice.PaidAt)

		recordPayment(t, invoice, "PAY-2026-0002", 600)
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
		assert.Equal(t, "0.00", invoice.AmountDue.StringFixed(2))
		require.NotNil(t, invoice.PaidAt)
	})

	t.Run("any positive amount moves the invoice to partial", func(t *testing.T) {
		invoice := sentInvoice(t, 1000)
		recordPayment(t, invoice, "PAY-2026-0011", 0.01)

		assert.Equal(t, InvoiceStatusPartial, invoice.Status)
		assert.Equal(t, "0.01", invoice.AmountPaid.StringFixed(2))
		assert.Nil(t, invoice.PaidAt)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		recordPayment(t, invoice, "PAY-2026-0003", 60)

		_, err := invoice.RecordPayment("PAY-2026-0004", money(50), PaymentMethodCash, "", nil, testNow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "40.00")
		// ledger unchanged
		assert.Len(t, invoice.Payments, 1)
		assert.Equal(t, "60.00", invoice.AmountPaid.StringFixed(2))
	})

	t.Run("guard uses the ledger, not the stored counter", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		recordPayment(t, invoice, "PAY-2026-0005", 80)

		// a stale counter must not let an overpayment through
		invoice.AmountDue = decimal.NewFromInt(100)
		_, err := invoice.RecordPayment("PAY-2026-0006", money(50), PaymentMethodCash, "", nil, testNow)
		assert.Error(t, err)
	})

	t.Run("zero and negative amounts rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)

		_, err := invoice.RecordPayment("PAY-2026-0007", money(0), PaymentMethodCash, "", nil, testNow)
		assert.Error(t, err)

		_, err = invoice.RecordPayment("PAY-2026-0008", money(-10), PaymentMethodCash, "", nil, testNow)
		assert.Error(t, err)
	})

	t.Run("draft invoice accepts no payments", func(t *testing.T) {
		invoice := createTestInvoice(t)
		_, err := invoice.RecordPayment("PAY-2026-0009", money(10), PaymentMethodCash, "", nil, testNow)
		assertTransitionError(t, err, "DRAFT", "recordPayment")
	})

	t.Run("invalid method rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		_, err := invoice.RecordPayment("PAY-2026-0010", money(10), PaymentMethod("BARTER"), "", nil, testNow)
		assert.Error(t, err)
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		usd, err := valueobject.NewMoneyFromFloat(10, valueobject.USD)
		require.NoError(t, err)
		_, err = invoice.RecordPayment("PAY-2026-0011", usd, PaymentMethodCash, "", nil, testNow)
		assert.Error(t, err)
	})

	t.Run("events", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		recordPayment(t, invoice, "PAY-2026-0012", 100)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeInvoicePaymentRecorded, events[0].EventType())
		assert.Equal(t, EventTypeInvoicePaid, events[1].EventType())
	})
}

func TestRefundPayment(t *testing.T) {
	t.Run("paid back to partial then unpaid", func(t *testing.T) {
		invoice := sentInvoice(t, 1000)
		p1 := recordPayment(t, invoice, "PAY-2026-0020", 400)
		p2 := recordPayment(t, invoice, "PAY-2026-0021", 600)
		require.Equal(t, InvoiceStatusPaid, invoice.Status)

		_, err := invoice.RefundPayment(p2.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPartial, invoice.Status)
		assert.Equal(t, "400.00", invoice.AmountPaid.StringFixed(2))
		assert.Nil(t, invoice.PaidAt)

		_, err = invoice.RefundPayment(p1.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusUnpaid, invoice.Status)
		assert.Equal(t, "0.00", invoice.AmountPaid.StringFixed(2))

		// entries stay on the ledger as refunded
		require.Len(t, invoice.Payments, 2)
		assert.Equal(t, PaymentStatusRefunded, invoice.Payments[0].Status)
		assert.Equal(t, PaymentStatusRefunded, invoice.Payments[1].Status)
	})

	t.Run("refund restores payment capacity", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		p := recordPayment(t, invoice, "PAY-2026-0022", 100)

		_, err := invoice.RefundPayment(p.ID, testNow)
		require.NoError(t, err)

		recordPayment(t, invoice, "PAY-2026-0023", 100)
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	})

	t.Run("double refund rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		p := recordPayment(t, invoice, "PAY-2026-0024", 50)

		_, err := invoice.RefundPayment(p.ID, testNow)
		require.NoError(t, err)
		_, err = invoice.RefundPayment(p.ID, testNow)
		assertTransitionError(t, err, "REFUNDED", "refund")
	})

	t.Run("unknown payment", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		_, err := invoice.RefundPayment(uuid.New(), testNow)
		assert.Error(t, err)
	})

	t.Run("refund past due lands on overdue", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		p := recordPayment(t, invoice, "PAY-2026-0025", 100)

		late := testDueDate.AddDate(0, 0, 10)
		_, err := invoice.RefundPayment(p.ID, late)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusOverdue, invoice.Status)
	})
}

func TestMarkOverdue(t *testing.T) {
	late := testDueDate.AddDate(0, 0, 1)

	t.Run("sent past due", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		require.NoError(t, invoice.MarkOverdue(late))
		assert.Equal(t, InvoiceStatusOverdue, invoice.Status)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceOverdue, events[0].EventType())
	})

	t.Run("not yet due", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		assert.Error(t, invoice.MarkOverdue(testNow))
		assert.Equal(t, InvoiceStatusSent, invoice.Status)
	})

	t.Run("paid invoices never go overdue", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		recordPayment(t, invoice, "PAY-2026-0030", 100)

		assertTransitionError(t, invoice.MarkOverdue(late), "PAID", "markOverdue")
		assert.False(t, invoice.IsOverdueCandidate(late))
	})

	t.Run("overdue invoices still accept payment", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		require.NoError(t, invoice.MarkOverdue(late))

		payment, err := invoice.RecordPayment("PAY-2026-0031", money(100), PaymentMethodBankTransfer, "", nil, late)
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusCompleted, payment.Status)
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	})
}

func TestInvoiceCancel(t *testing.T) {
	t.Run("sent invoice without payments", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		require.NoError(t, invoice.Cancel(testNow))
		assert.Equal(t, InvoiceStatusCancelled, invoice.Status)
	})

	t.Run("with completed payments rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		recordPayment(t, invoice, "PAY-2026-0040", 50)
		assert.Error(t, invoice.Cancel(testNow))
	})

	t.Run("after full refund allowed", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		p := recordPayment(t, invoice, "PAY-2026-0041", 50)
		_, err := invoice.RefundPayment(p.ID, testNow)
		require.NoError(t, err)

		require.NoError(t, invoice.Cancel(testNow))
	})

	t.Run("paid rejected", func(t *testing.T) {
		invoice := sentInvoice(t, 100)
		recordPayment(t, invoice, "PAY-2026-0042", 100)
		assertTransitionError(t, invoice.Cancel(testNow), "PAID", "cancel")
	})
}

func TestPaidPercentage(t *testing.T) {
	invoice := sentInvoice(t, 200)
	recordPayment(t, invoice, "PAY-2026-0050", 50)
	assert.Equal(t, "25.00", invoice.PaidPercentage().StringFixed(2))

	empty := createTestInvoice(t)
	assert.True(t, empty.PaidPercentage().IsZero())
}

func TestDaysOverdue(t *testing.T) {
	invoice := sentInvoice(t, 100)
	assert.Equal(t, 0, invoice.DaysOverdue(testNow))
	assert.Equal(t, 3, invoice.DaysOverdue(testDueDate.AddDate(0, 0, 3)))
}
