package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// QuoteHandler serves the B2B negotiation flow: buyer request, farmer
// offer, buyer approval, farmer confirmation.
type QuoteHandler struct {
	svc *service.QuoteService
}

func NewQuoteHandler(svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

// Create handles POST /quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req service.CreateQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Created(c, quote)
}

// List handles GET /quotes?status=&buyer=.
func (h *QuoteHandler) List(c *gin.Context) {
	status := entity.QuoteStatus(c.Query("status"))
	buyer := c.Query("buyer")

	quotes, err := h.svc.List(c.Request.Context(), status, buyer)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": quotes, "total": len(quotes)})
}

// Get handles GET /quotes/:id.
func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, quote)
}

// Respond handles POST /quotes/:id/respond. The farmer may revise the
// offer until the buyer approves.
func (h *QuoteHandler) Respond(c *gin.Context) {
	var req service.QuoteOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.svc.Respond(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, quote)
}

// Approve handles POST /quotes/:id/approve.
func (h *QuoteHandler) Approve(c *gin.Context) {
	quote, err := h.svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, quote)
}

// Confirm handles POST /quotes/:id/confirm. On success the response
// carries both the confirmed quote and the delivery it spawned; the two
// are written in one transaction.
func (h *QuoteHandler) Confirm(c *gin.Context) {
	quote, delivery, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"quote": quote, "delivery": delivery})
}
