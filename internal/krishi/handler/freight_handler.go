package handler

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// FreightHandler serves the farmer booking flow and the driver matcher.
type FreightHandler struct {
	svc *service.FreightService
}

func NewFreightHandler(svc *service.FreightService) *FreightHandler {
	return &FreightHandler{svc: svc}
}

// Create handles POST /freight. The server computes both prices, the
// savings and the CO2 estimate; clients never send money fields.
func (h *FreightHandler) Create(c *gin.Context) {
	var req service.CreateFreightReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Created(c, request)
}

// List handles GET /freight?status=&driver=.
func (h *FreightHandler) List(c *gin.Context) {
	status := entity.FreightStatus(c.Query("status"))
	driver := c.Query("driver")

	requests, err := h.svc.List(c.Request.Context(), status, driver)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": requests, "total": len(requests)})
}

// Get handles GET /freight/:id.
func (h *FreightHandler) Get(c *gin.Context) {
	request, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, request)
}

// Accept handles POST /freight/:id/accept. The driver name defaults to
// the authenticated account.
func (h *FreightHandler) Accept(c *gin.Context) {
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

	request, err := h.svc.Accept(c.Request.Context(), c.Param("id"), driverName)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, request)
}

// Complete handles POST /freight/:id/complete.
func (h *FreightHandler) Complete(c *gin.Context) {
	request, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, request)
}

// qrPayload is what the pickup QR code encodes. The driver's app renders
// it; the farmer scans it at handover to check the request matches.
type qrPayload struct {
	RequestID   string    `json:"request_id"`
	FarmerName  string    `json:"farmer_name"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	WeightKg    float64   `json:"weight_kg"`
	Price       float64   `json:"price"`
	IssuedAt    time.Time `json:"issued_at"`
}

// QRPayload handles GET /freight/:id/qr. Only accepted requests carry a
// pickup code.
func (h *FreightHandler) QRPayload(c *gin.Context) {
	request, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	if request.Status != entity.FreightStatusAccepted {
		Conflict(c, "Request is not accepted yet")
		return
	}

	payload := qrPayload{
		RequestID:   request.ID,
		FarmerName:  request.FarmerName,
		Origin:      request.OriginVillage,
		Destination: request.DestinationMarket,
		WeightKg:    request.WeightKg,
		Price:       request.DiscountedPrice,
		IssuedAt:    time.Now(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"payload": payload,
		"encoded": base64.StdEncoding.EncodeToString(raw),
	})
}
