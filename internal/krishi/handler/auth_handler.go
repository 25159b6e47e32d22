package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/config"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// AuthHandler serves registration, login and session endpoints for all
// four roles. The role comes from the URL so one set of handlers covers
// farmer, buyer and ministry; drivers have their own endpoints because
// they carry vehicle details and a duty status.
type AuthHandler struct {
	svc *service.AuthService
	cfg *config.Config
}

func NewAuthHandler(svc *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

func userRole(c *gin.Context) (string, bool) {
	role := c.Param("role")
	switch role {
	case entity.RoleFarmer, entity.RoleBuyer, entity.RoleMinistry:
		return role, true
	}
	return "", false
}

// Register handles POST /auth/:role/register.
func (h *AuthHandler) Register(c *gin.Context) {
	role, ok := userRole(c)
	if !ok {
		BadRequest(c, "Unknown role: "+c.Param("role"))
		return
	}

	var req service.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, tokens, err := h.svc.RegisterUser(c.Request.Context(), role, req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Created(c, gin.H{"user": user, "tokens": tokens})
}

// LoginRequest is the password login form.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/:role/login.
func (h *AuthHandler) Login(c *gin.Context) {
	role, ok := userRole(c)
	if !ok {
		BadRequest(c, "Unknown role: "+c.Param("role"))
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, tokens, err := h.svc.LoginUser(c.Request.Context(), role, req.Name, req.Password)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"user": user, "tokens": tokens})
}

// OAuth handles POST /auth/:role/oauth. It signs the account in, creating
// it on first sight of the provider UID.
func (h *AuthHandler) OAuth(c *gin.Context) {
	role, ok := userRole(c)
	if !ok {
		BadRequest(c, "Unknown role: "+c.Param("role"))
		return
	}

	var req service.OAuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, tokens, err := h.svc.OAuthUser(c.Request.Context(), role, req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"user": user, "tokens": tokens})
}

// RegisterDriver handles POST /auth/driver/register.
func (h *AuthHandler) RegisterDriver(c *gin.Context) {
	var req service.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	driver, tokens, err := h.svc.RegisterDriver(c.Request.Context(), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Created(c, gin.H{"driver": driver, "tokens": tokens})
}

// LoginDriver handles POST /auth/driver/login.
func (h *AuthHandler) LoginDriver(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	driver, tokens, err := h.svc.LoginDriver(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"driver": driver, "tokens": tokens})
}

// OAuthDriver handles POST /auth/driver/oauth.
func (h *AuthHandler) OAuthDriver(c *gin.Context) {
	var req service.OAuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	driver, tokens, err := h.svc.OAuthDriver(c.Request.Context(), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"driver": driver, "tokens": tokens})
}

// DriverStatusRequest sets the driver's duty status.
type DriverStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateDriverStatus handles PUT /drivers/me/status.
func (h *AuthHandler) UpdateDriverStatus(c *gin.Context) {
	var req DriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	driver, err := h.svc.UpdateDriverStatus(c.Request.Context(), GetUserName(c), entity.DriverStatus(req.Status))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, driver)
}

// SetLanguage handles PUT /users/me/language. The preferred language is
// negotiated from the Accept-Language header.
func (h *AuthHandler) SetLanguage(c *gin.Context) {
	user, err := h.svc.SetLanguage(c.Request.Context(), GetUserID(c), c.GetHeader("Accept-Language"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"language": user.Language})
}

// OTPRequest starts phone verification.
type OTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP handles POST /auth/otp/request. The code itself is delivered
// out of band; the response only acknowledges the send.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if _, err := h.svc.IssueOTP(c.Request.Context(), req.Phone); err != nil {
		ServiceError(c, err)
		return
	}

	Success(c, gin.H{"sent": true})
}

// OTPVerifyRequest completes phone verification.
type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOTP handles POST /auth/otp/verify.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ok, err := h.svc.VerifyOTP(c.Request.Context(), GetUserID(c), req.Phone, req.Code)
	if err != nil {
		ServiceError(c, err)
		return
	}
	if !ok {
		BadRequest(c, "Invalid or expired code")
		return
	}

	Success(c, gin.H{"verified": true})
}

// RefreshTokenRequest rotates the refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken handles POST /auth/refresh.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	tokens, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	Success(c, tokens)
}
