package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// QuoteRepository defines the persistence contract for quotes
type QuoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	FindByQuoteNumber(ctx context.Context, quoteNumber string) (*Quote, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Quote, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Quote, error)
	FindByStatus(ctx context.Context, status QuoteStatus, filter shared.Filter) ([]Quote, error)

	// FindStale returns sent or approved quotes whose validity window has
	// passed; the scheduler expires them.
	FindStale(ctx context.Context, now time.Time, limit int) ([]Quote, error)

	Save(ctx context.Context, quote *Quote) error
	// SaveWithLock persists the quote with optimistic locking and returns
	// shared.ErrConcurrencyConflict when the stored version moved on.
	SaveWithLock(ctx context.Context, quote *Quote) error
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status QuoteStatus) (int64, error)
	ExistsByQuoteNumber(ctx context.Context, quoteNumber string) (bool, error)

	// GenerateQuoteNumber produces the next QT-YYYY-NNNN number for the
	// current year.
	GenerateQuoteNumber(ctx context.Context) (string, error)
}

// InvoiceRepository defines the persistence contract for invoices and their
// payment ledgers.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	FindByStatus(ctx context.Context, status InvoiceStatus, filter shared.Filter) ([]Invoice, error)
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*Invoice, error)

	// FindOverdueCandidates returns unsettled invoices past their due date;
	// the scheduler marks them overdue.
	FindOverdueCandidates(ctx context.Context, now time.Time, limit int) ([]Invoice, error)

	FindPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)

	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists the invoice with optimistic locking and returns
	// shared.ErrConcurrencyConflict when the stored version moved on.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status InvoiceStatus) (int64, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)

	// GenerateInvoiceNumber produces the next INV-YYYY-NNNN number
	GenerateInvoiceNumber(ctx context.Context) (string, error)
	// GeneratePaymentNumber produces the next PAY-YYYY-NNNN number
	GeneratePaymentNumber(ctx context.Context) (string, error)
}
