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

// QuoteService handles quote business operations
type QuoteService struct {
	quoteRepo      billing.QuoteRepository
	invoiceRepo    billing.InvoiceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(quoteRepo billing.QuoteRepository, invoiceRepo billing.InvoiceRepository, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new quote in DRAFT status
func (s *QuoteService) Create(ctx context.Context, ownerID uuid.UUID, accountName string, req CreateQuoteRequest) (*QuoteResponse, error) {
	quoteNumber, err := s.quoteRepo.GenerateQuoteNumber(ctx)
	if err != nil {
		return nil, err
	}

	quote, err := billing.NewQuote(ownerID, quoteNumber, req.AccountID, accountName)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Items {
		unitPrice := valueobject.NewMoneyKES(input.UnitPrice)
		if _, err := quote.AddItem(input.ProductID, input.Description, input.Quantity, unitPrice, input.DiscountPercent); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		if err := quote.SetDiscount(billing.DiscountType(req.Discount.Type), req.Discount.Value); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := quote.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if err := quote.UpdateDetails(req.ContactID, req.ValidUntil, req.Notes, req.Terms); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// GetByQuoteNumber retrieves a quote by its number
func (s *QuoteService) GetByQuoteNumber(ctx context.Context, quoteNumber string) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByQuoteNumber(ctx, quoteNumber)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// List retrieves quotes with filtering and pagination
func (s *QuoteService) List(ctx context.Context, filter QuoteListFilter) ([]QuoteListItemResponse, int64, error) {
	domainFilter := buildQuoteFilter(filter)

	quotes, err := s.quoteRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.quoteRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToQuoteListItemResponses(quotes), total, nil
}

// Update updates a draft quote's details, discount and tax rate
func (s *QuoteService) Update(ctx context.Context, quoteID uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if req.Discount != nil {
		if err := quote.SetDiscount(billing.DiscountType(req.Discount.Type), req.Discount.Value); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := quote.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}

	contactID := quote.ContactID
	if req.ContactID != nil {
		contactID = req.ContactID
	}
	validUntil := quote.ValidUntil
	if req.ValidUntil != nil {
		validUntil = req.ValidUntil
	}
	notes := quote.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}
	terms := quote.Terms
	if req.Terms != nil {
		terms = *req.Terms
	}
	if err := quote.UpdateDetails(contactID, validUntil, notes, terms); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// UpdateItems replaces the entire item list of a draft quote
func (s *QuoteService) UpdateItems(ctx context.Context, quoteID uuid.UUID, req UpdateQuoteItemsRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	items := make([]billing.QuoteItem, 0, len(req.Items))
	for _, input := range req.Items {
		unitPrice := valueobject.NewMoneyKES(input.UnitPrice)
		item, err := billing.NewQuoteItem(quote.ID, input.ProductID, input.Description, input.Quantity, unitPrice, input.DiscountPercent)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := quote.ReplaceItems(items); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Send transitions a draft quote to SENT
func (s *QuoteService) Send(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, quoteID, func(quote *billing.Quote) error {
		return quote.Send()
	})
}

// Approve marks a sent quote as approved by the customer
func (s *QuoteService) Approve(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, quoteID, func(quote *billing.Quote) error {
		return quote.Approve()
	})
}

// Reject marks a sent quote as rejected by the customer
func (s *QuoteService) Reject(ctx context.Context, quoteID uuid.UUID, req RejectQuoteRequest) (*QuoteResponse, error) {
	return s.transition(ctx, quoteID, func(quote *billing.Quote) error {
		return quote.Reject(req.Reason)
	})
}

// Expire marks a sent or approved quote as expired
func (s *QuoteService) Expire(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, quoteID, func(quote *billing.Quote) error {
		return quote.Expire()
	})
}

// ConvertToInvoice converts an approved quote into a new invoice.
// The invoice snapshots the quote's items and financials.
func (s *QuoteService) ConvertToInvoice(ctx context.Context, quoteID uuid.UUID, req ConvertQuoteRequest) (*InvoiceResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, 30)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	invoice, err := quote.ConvertToInvoice(invoiceNumber, issueDate, dueDate)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete deletes a quote in a deletable status
func (s *QuoteService) Delete(ctx context.Context, quoteID uuid.UUID) error {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return err
	}

	if err := quote.EnsureDeletable(); err != nil {
		return err
	}

	return s.quoteRepo.Delete(ctx, quoteID)
}

// ExpireStale expires sent and approved quotes whose validity window has
// passed. Called by the scheduler; returns the number of quotes expired.
func (s *QuoteService) ExpireStale(ctx context.Context, now time.Time, limit int) (int, error) {
	stale, err := s.quoteRepo.FindStale(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		quote := &stale[i]
		if err := quote.Expire(); err != nil {
			s.logger.Warn("failed to expire quote",
				zap.String("quote_number", quote.QuoteNumber),
				zap.Error(err))
			continue
		}
		if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
			s.logger.Warn("failed to save expired quote",
				zap.String("quote_number", quote.QuoteNumber),
				zap.Error(err))
			continue
		}
		s.publishEvents(ctx, quote)
		expired++
	}

	return expired, nil
}

// GetStatusSummary retrieves quote counts by status
func (s *QuoteService) GetStatusSummary(ctx context.Context) (*QuoteStatusSummary, error) {
	summary := &QuoteStatusSummary{}
	counts := []struct {
		status billing.QuoteStatus
		dest   *int64
	}{
		{billing.QuoteStatusDraft, &summary.Draft},
		{billing.QuoteStatusSent, &summary.Sent},
		{billing.QuoteStatusApproved, &summary.Approved},
		{billing.QuoteStatusRejected, &summary.Rejected},
		{billing.QuoteStatusExpired, &summary.Expired},
		{billing.QuoteStatusConverted, &summary.Converted},
	}

	for _, c := range counts {
		n, err := s.quoteRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.dest = n
		summary.Total += n
	}

	return summary, nil
}

// transition loads a quote, applies a state change and saves with locking
func (s *QuoteService) transition(ctx context.Context, quoteID uuid.UUID, fn func(*billing.Quote) error) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if err := fn(quote); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

func (s *QuoteService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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

func buildQuoteFilter(filter QuoteListFilter) shared.Filter {
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
