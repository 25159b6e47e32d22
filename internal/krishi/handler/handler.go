package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/config"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// Handlers is the handler collection.
type Handlers struct {
	Auth     *AuthHandler
	Freight  *FreightHandler
	Quote    *QuoteHandler
	Order    *OrderHandler
	Delivery *DeliveryHandler
	Stats    *StatsHandler
	SSE      *SSEHandler
}

// NewHandlers wires the handler collection.
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth, cfg),
		Freight:  NewFreightHandler(svc.Freight),
		Quote:    NewQuoteHandler(svc.Quote),
		Order:    NewOrderHandler(svc.Order),
		Delivery: NewDeliveryHandler(svc.Delivery, svc.Upload),
		Stats:    NewStatsHandler(svc.Stats),
		SSE:      NewSSEHandler(),
	}
}

// Response is the envelope every endpoint returns. The HTTP status is
// always code/100.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope. The HTTP status is derived from the code.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps service-layer errors onto the envelope. Unknown
// entities are 404, rejected transitions are 409 and validation failures
// are 400; anything else is a server fault.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrDuplicateName):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNoOffer):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrBadCredentials):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserName returns the authenticated user's display name.
func GetUserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	if n, ok := name.(string); ok {
		return n
	}
	return ""
}
