package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/simbacrm/backend/internal/application/billing"
	partnerapp "github.com/simbacrm/backend/internal/application/partner"
)

// QuoteHandler handles quote-related API endpoints
type QuoteHandler struct {
	BaseHandler
	quoteService   *billingapp.QuoteService
	accountService *partnerapp.AccountService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *billingapp.QuoteService, accountService *partnerapp.AccountService) *QuoteHandler {
	return &QuoteHandler{
		quoteService:   quoteService,
		accountService: accountService,
	}
}

// Create godoc
// @ID           createQuote
// @Summary      Create a new quote
// @Description  Create a draft quote for an account, optionally with initial line items
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateQuoteRequest true "Quote creation request"
// @Success      201 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req billingapp.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), req.AccountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), ownerID, account.Name, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, quote)
}

// GetByID godoc
// @ID           getQuoteById
// @Summary      Get quote by ID
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id} [get]
func (h *QuoteHandler) GetByID(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	quote, err := h.quoteService.GetByID(c.Request.Context(), quoteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// GetByNumber godoc
// @ID           getQuoteByNumber
// @Summary      Get quote by quote number
// @Tags         quotes
// @Produce      json
// @Param        number path string true "Quote number"
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/number/{number} [get]
func (h *QuoteHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Quote number is required")
		return
	}

	quote, err := h.quoteService.GetByQuoteNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// List godoc
// @ID           listQuotes
// @Summary      List quotes
// @Description  Retrieve a paginated list of quotes with optional filtering
// @Tags         quotes
// @Produce      json
// @Param        search query string false "Search term (quote number, account name)"
// @Param        account_id query string false "Account ID" format(uuid)
// @Param        status query string false "Quote status" Enums(DRAFT, SENT, APPROVED, REJECTED, EXPIRED, CONVERTED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.QuoteListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	var filter billingapp.QuoteListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	quotes, total, err := h.quoteService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, quotes, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateQuote
// @Summary      Update a draft quote
// @Description  Update header fields of a quote while it is still in DRAFT
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body billingapp.UpdateQuoteRequest true "Quote update request"
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	var req billingapp.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.quoteService.Update(c.Request.Context(), quoteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// UpdateItems godoc
// @ID           updateQuoteItems
// @Summary      Replace quote line items
// @Description  Replace the full line item list of a draft quote and reprice it
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body billingapp.UpdateQuoteItemsRequest true "Line items"
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id}/items [put]
func (h *QuoteHandler) UpdateItems(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	var req billingapp.UpdateQuoteItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.quoteService.UpdateItems(c.Request.Context(), quoteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// Send godoc
// @ID           sendQuote
// @Summary      Send a quote
// @Description  Transition a draft quote to SENT; the quote must have at least one line item
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	h.lifecycle(c, h.quoteService.Send)
}

// Approve godoc
// @ID           approveQuote
// @Summary      Approve a sent quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id}/approve [post]
func (h *QuoteHandler) Approve(c *gin.Context) {
	h.lifecycle(c, h.quoteService.Approve)
}

// Reject godoc
// @ID           rejectQuote
// @Summary      Reject a sent quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body billingapp.RejectQuoteRequest false "Rejection reason"
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	var req billingapp.RejectQuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	quote, err := h.quoteService.Reject(c.Request.Context(), quoteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}

// Expire godoc
// @ID           expireQuote
// @Summary      Expire a quote
// @Description  Manually expire a sent or approved quote whose validity has lapsed
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.QuoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id}/expire [post]
func (h *QuoteHandler) Expire(c *gin.Context) {
	h.lifecycle(c, h.quoteService.Expire)
}

// Convert godoc
// @ID           convertQuote
// @Summary      Convert an approved quote to an invoice
// @Description  Creates an invoice carrying the quote's line items and pricing, and marks the quote CONVERTED
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Param        request body billingapp.ConvertQuoteRequest false "Conversion options"
// @Success      201 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	var req billingapp.ConvertQuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	invoice, err := h.quoteService.ConvertToInvoice(c.Request.Context(), quoteID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// Delete godoc
// @ID           deleteQuote
// @Summary      Delete a draft quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	if err := h.quoteService.Delete(c.Request.Context(), quoteID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// StatusSummary godoc
// @ID           getQuoteStatusSummary
// @Summary      Get quote counts per status
// @Tags         quotes
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.QuoteStatusSummary]
// @Security     BearerAuth
// @Router       /billing/quotes/stats/status [get]
func (h *QuoteHandler) StatusSummary(c *gin.Context) {
	summary, err := h.quoteService.GetStatusSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// lifecycle runs a single-argument quote state transition endpoint
func (h *QuoteHandler) lifecycle(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*billingapp.QuoteResponse, error)) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	quote, err := fn(c.Request.Context(), quoteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}
