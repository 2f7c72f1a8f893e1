package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/billing"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles invoice and payment ledger operations
type InvoiceService struct {
	invoiceRepo      billing.InvoiceRepository
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables payment request deduplication
func (s *InvoiceService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// Create creates a new standalone invoice in DRAFT status
func (s *InvoiceService) Create(ctx context.Context, ownerID uuid.UUID, accountName string, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	invoice, err := billing.NewInvoice(ownerID, invoiceNumber, req.AccountID, accountName, issueDate, req.DueDate)
	if err != nil {
		return nil, err
	}

	invoice.ContactID = req.ContactID
	invoice.Notes = req.Notes
	invoice.Terms = req.Terms

	for _, input := range req.Items {
		unitPrice := valueobject.NewMoneyKES(input.UnitPrice)
		if _, err := invoice.AddItem(input.ProductID, input.Description, input.Quantity, unitPrice, input.DiscountPercent); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		if err := invoice.SetDiscount(billing.DiscountType(req.Discount.Type), req.Discount.Value); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := invoice.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByInvoiceNumber retrieves an invoice by its number
func (s *InvoiceService) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	domainFilter := buildInvoiceFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceListItemResponses(invoices), total, nil
}

// Send issues a draft invoice to the customer
func (s *InvoiceService) Send(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, invoiceID, func(invoice *billing.Invoice) error {
		return invoice.Send(time.Now())
	})
}

// RecordPayment appends a payment to the invoice ledger. When an
// idempotency key is supplied, replayed requests are rejected instead of
// double-charging the ledger. The key is reserved before the work starts
// so concurrent duplicates collide, and given back when the payment does
// not commit so the client can retry with the same key.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, processedBy *uuid.UUID, idempotencyKey string, req RecordPaymentRequest) (*InvoiceResponse, error) {
	useKey := idempotencyKey != "" && s.idempotencyStore != nil
	storeKey := paymentIdempotencyKey(invoiceID, idempotencyKey)

	if useKey {
		fresh, err := s.idempotencyStore.MarkProcessed(ctx, storeKey, shared.DefaultIdempotencyConfig().TTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "Payment request was already processed")
		}
	}

	response, err := s.recordPayment(ctx, invoiceID, processedBy, req)
	if err != nil && useKey {
		if releaseErr := s.idempotencyStore.Release(ctx, storeKey); releaseErr != nil {
			s.logger.Warn("failed to release payment idempotency key",
				zap.String("invoice_id", invoiceID.String()),
				zap.Error(releaseErr))
		}
	}
	return response, err
}

func (s *InvoiceService) recordPayment(ctx context.Context, invoiceID uuid.UUID, processedBy *uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	paymentNumber, err := s.invoiceRepo.GeneratePaymentNumber(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoney(req.Amount, invoice.Currency)
	if err != nil {
		return nil, err
	}

	if _, err := invoice.RecordPayment(paymentNumber, amount, billing.PaymentMethod(req.Method), req.Reference, processedBy, time.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RefundPayment flips a completed ledger entry to REFUNDED and re-derives
// the invoice payment state.
func (s *InvoiceService) RefundPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, invoiceID, func(invoice *billing.Invoice) error {
		_, err := invoice.RefundPayment(paymentID, time.Now())
		return err
	})
}

// Cancel cancels an invoice that carries no completed payments
func (s *InvoiceService) Cancel(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, invoiceID, func(invoice *billing.Invoice) error {
		return invoice.Cancel(time.Now())
	})
}

// ListPayments returns the payment ledger of an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.invoiceRepo.FindPayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// MarkOverdueInvoices marks unsettled invoices past their due date as
// OVERDUE. Called by the scheduler; returns the number of invoices marked.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context, now time.Time, limit int) (int, error) {
	candidates, err := s.invoiceRepo.FindOverdueCandidates(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range candidates {
		invoice := &candidates[i]
		if err := invoice.MarkOverdue(now); err != nil {
			s.logger.Warn("failed to mark invoice overdue",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			s.logger.Warn("failed to save overdue invoice",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		s.publishEvents(ctx, invoice)
		marked++
	}

	return marked, nil
}

// transition loads an invoice, applies a state change and saves with locking
func (s *InvoiceService) transition(ctx context.Context, invoiceID uuid.UUID, fn func(*billing.Invoice) error) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := fn(invoice); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	aggregate.ClearDomainEvents()
}

func paymentIdempotencyKey(invoiceID uuid.UUID, key string) string {
	return "payment:" + invoiceID.String() + ":" + key
}

func buildInvoiceFilter(filter InvoiceListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.AccountID != nil {
		domainFilter.Filters["account_id"] = *filter.AccountID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	return domainFilter
}
