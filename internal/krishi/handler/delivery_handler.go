package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// DeliveryHandler serves the driver-facing contract board: whole-load
// acceptance, two-driver splits and proof-of-delivery uploads.
type DeliveryHandler struct {
	svc    *service.DeliveryService
	upload *service.UploadService
}

func NewDeliveryHandler(svc *service.DeliveryService, upload *service.UploadService) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, upload: upload}
}

// List handles GET /deliveries?status=.
func (h *DeliveryHandler) List(c *gin.Context) {
	status := entity.DeliveryStatus(c.Query("status"))

	deliveries, err := h.svc.List(c.Request.Context(), status)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": deliveries, "total": len(deliveries)})
}

// ListMine handles GET /deliveries/mine for the authenticated driver.
func (h *DeliveryHandler) ListMine(c *gin.Context) {
	deliveries, err := h.svc.ListByDriver(c.Request.Context(), GetUserName(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": deliveries, "total": len(deliveries)})
}

// Get handles GET /deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	delivery, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, delivery)
}

// Accept handles POST /deliveries/:id/accept — one driver takes the
// whole load.
func (h *DeliveryHandler) Accept(c *gin.Context) {
	driverName := GetUserName(c)

	var body struct {
		DriverName string `json:"driver_name"`
	}
	if err := c.ShouldBindJSON(&body); err == nil && body.DriverName != "" {
		driverName = body.DriverName
	}
	if driverName == "" {
		BadRequest(c, "Driver name is required")
		return
	}

	delivery, err := h.svc.Accept(c.Request.Context(), c.Param("id"), driverName)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, delivery)
}

// SplitRequest is the two-driver split form. Percentages must sum to 100.
type SplitRequest struct {
	Initiator service.SplitShare `json:"initiator" binding:"required"`
	Invited   service.SplitShare `json:"invited" binding:"required"`
}

// AcceptSplit handles POST /deliveries/:id/split. The initiating driver
// is committed immediately; the invited driver stays pending until they
// confirm.
func (h *DeliveryHandler) AcceptSplit(c *gin.Context) {
	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	delivery, err := h.svc.AcceptSplit(c.Request.Context(), c.Param("id"), req.Initiator, req.Invited)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, delivery)
}

// ConfirmSplit handles POST /deliveries/:id/split/confirm for the
// invited driver.
func (h *DeliveryHandler) ConfirmSplit(c *gin.Context) {
	driverName := GetUserName(c)

	var body struct {
		DriverName string `json:"driver_name"`
	}
	if err := c.ShouldBindJSON(&body); err == nil && body.DriverName != "" {
		driverName = body.DriverName
	}
	if driverName == "" {
		BadRequest(c, "Driver name is required")
		return
	}

	delivery, err := h.svc.ConfirmSplit(c.Request.Context(), c.Param("id"), driverName)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, delivery)
}

// Complete handles POST /deliveries/:id/complete.
func (h *DeliveryHandler) Complete(c *gin.Context) {
	delivery, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, delivery)
}

// Earnings handles GET /deliveries/:id/earnings?driver=. It returns the
// per-driver payout for the assigned share.
func (h *DeliveryHandler) Earnings(c *gin.Context) {
	driverName := c.Query("driver")
	if driverName == "" {
		driverName = GetUserName(c)
	}

	delivery, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{
		"delivery_id": delivery.ID,
		"driver_name": driverName,
		"earnings":    h.svc.EarningsFor(delivery, driverName),
	})
}

// UploadProof handles POST /deliveries/:id/proof with a multipart file.
func (h *DeliveryHandler) UploadProof(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required: "+err.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "Failed to read file: "+err.Error())
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName, err := h.upload.UploadProof(c.Request.Context(), c.Param("id"), file.Filename, contentType, src, file.Size)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"object": objectName})
}

// ProofURL handles GET /deliveries/:id/proof — a short-lived download
// link for the recorded proof file.
func (h *DeliveryHandler) ProofURL(c *gin.Context) {
	url, err := h.upload.ProofURL(c.Request.Context(), c.Param("id"), 15*time.Minute)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"url": url})
}
