package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// OrderHandler serves the bulk order tracker.
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Created(c, order)
}

// List handles GET /orders?buyer=.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context(), c.Query("buyer"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": orders, "total": len(orders)})
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, order)
}

// ProgressRequest advances the tracker.
type ProgressRequest struct {
	Progress int `json:"progress" binding:"required"`
}

// UpdateProgress handles PUT /orders/:id/progress. Progress never moves
// backwards; reaching 100 settles the escrow and marks the order
// Delivered.
func (h *OrderHandler) UpdateProgress(c *gin.Context) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.UpdateProgress(c.Request.Context(), c.Param("id"), req.Progress)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, order)
}
