package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/krishilink/krishi/internal/config"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AuthService handles registration, login, OAuth upserts, session tokens
// and phone OTP verification for all three roles. The external identity
// provider stays opaque: OAuth callers hand us {uid, email, name}.
type AuthService struct {
	userRepo   *repository.UserRepository
	driverRepo *repository.DriverRepository
	rdb        *redis.Client
	cfg        *config.Config
	logger     *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, driverRepo *repository.DriverRepository, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		driverRepo: driverRepo,
		rdb:        rdb,
		cfg:        cfg,
		logger:     logger,
	}
}

// TokenPair is an access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterReq is the password registration form.
type RegisterReq struct {
	Name          string `json:"name" binding:"required"`
	Password      string `json:"password" binding:"required,min=4"`
	VehicleNumber string `json:"vehicle_number"`
}

// OAuthReq carries the fields the external provider returns.
type OAuthReq struct {
	UID   string `json:"uid" binding:"required"`
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// RegisterUser registers a farmer or buyer. Duplicate names within a role
// are rejected case-insensitively.
func (s *AuthService) RegisterUser(ctx context.Context, role string, req RegisterReq) (*entity.User, *TokenPair, error) {
	if _, err := s.userRepo.FindByName(ctx, role, req.Name); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateName, req.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Role:         role,
		PasswordHash: hash,
		AuthMethod:   "password",
		Language:     "en",
		LoginCount:   1,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to register %s: %w", role, err)
	}

	tokens, err := s.generateTokenPair(user.ID, user.Name, role)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user registered", zap.String("role", role), zap.String("name", user.Name))
	return user, tokens, nil
}

// LoginUser checks credentials and bumps the login counter.
func (s *AuthService) LoginUser(ctx context.Context, role, name, password string) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByName(ctx, role, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrBadCredentials
		}
		return nil, nil, err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, ErrBadCredentials
	}

	user.LoginCount++
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(user.ID, user.Name, role)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// OAuthUser upserts a farmer or buyer from an external provider identity,
// mirroring the original register-with-OAuth behavior.
func (s *AuthService) OAuthUser(ctx context.Context, role string, req OAuthReq) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByOAuth(ctx, role, req.UID, req.Email)
	switch {
	case err == nil:
		user.Email = req.Email
		user.OAuthUID = req.UID
		user.LoginCount++
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		user = &entity.User{
			ID:         uuid.New().String(),
			Name:       req.Name,
			Role:       role,
			Email:      req.Email,
			OAuthUID:   req.UID,
			AuthMethod: "google",
			Language:   "en",
			LoginCount: 1,
			CreatedAt:  time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s via oauth: %w", role, err)
		}
	default:
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(user.ID, user.Name, role)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// RegisterDriver registers a truck driver with a vehicle number.
func (s *AuthService) RegisterDriver(ctx context.Context, req RegisterReq) (*entity.Driver, *TokenPair, error) {
	if _, err := s.driverRepo.FindByName(ctx, req.Name); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateName, req.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}
	driver := &entity.Driver{
		ID:            uuid.New().String(),
		Name:          req.Name,
		PasswordHash:  hash,
		AuthMethod:    "password",
		VehicleNumber: req.VehicleNumber,
		Status:        entity.DriverStatusAvailable,
		CreatedAt:     time.Now(),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, nil, fmt.Errorf("failed to register driver: %w", err)
	}

	tokens, err := s.generateTokenPair(driver.ID, driver.Name, entity.RoleDriver)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("driver registered", zap.String("name", driver.Name), zap.String("vehicle", driver.VehicleNumber))
	return driver, tokens, nil
}

func (s *AuthService) LoginDriver(ctx context.Context, name, password string) (*entity.Driver, *TokenPair, error) {
	driver, err := s.driverRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrBadCredentials
		}
		return nil, nil, err
	}

	ok, err := VerifyPassword(password, driver.PasswordHash)
	if err != nil || !ok {
		return nil, nil, ErrBadCredentials
	}

	tokens, err := s.generateTokenPair(driver.ID, driver.Name, entity.RoleDriver)
	if err != nil {
		return nil, nil, err
	}
	return driver, tokens, nil
}

// OAuthDriver upserts a driver from an external provider identity.
func (s *AuthService) OAuthDriver(ctx context.Context, req OAuthReq) (*entity.Driver, *TokenPair, error) {
	driver, err := s.driverRepo.FindByOAuth(ctx, req.UID, req.Email)
	switch {
	case err == nil:
		driver.Email = req.Email
		driver.OAuthUID = req.UID
		if err := s.driverRepo.Update(ctx, driver); err != nil {
			return nil, nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		driver = &entity.Driver{
			ID:         uuid.New().String(),
			Name:       req.Name,
			Email:      req.Email,
			OAuthUID:   req.UID,
			AuthMethod: "google",
			Status:     entity.DriverStatusAvailable,
			CreatedAt:  time.Now(),
		}
		if err := s.driverRepo.Create(ctx, driver); err != nil {
			return nil, nil, fmt.Errorf("failed to register driver via oauth: %w", err)
		}
	default:
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(driver.ID, driver.Name, entity.RoleDriver)
	if err != nil {
		return nil, nil, err
	}
	return driver, tokens, nil
}

// UpdateDriverStatus sets a driver's availability.
func (s *AuthService) UpdateDriverStatus(ctx context.Context, driverName string, status entity.DriverStatus) (*entity.Driver, error) {
	switch status {
	case entity.DriverStatusAvailable, entity.DriverStatusOnDelivery, entity.DriverStatusOffline:
	default:
		return nil, fmt.Errorf("%w: unknown driver status %q", ErrInvalidInput, status)
	}

	driver, err := s.driverRepo.FindByName(ctx, driverName)
	if err != nil {
		return nil, err
	}
	driver.Status = status
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// SetLanguage stores the user's UI language preference.
func (s *AuthService) SetLanguage(ctx context.Context, userID, accept string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Language = MatchLanguage(accept)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueOTP generates a 6-digit verification code for a phone number and
// stores it in redis with a TTL. Sending the SMS is an external concern;
// the code is returned to the caller for hand-off.
func (s *AuthService) IssueOTP(ctx context.Context, phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.rdb.Set(ctx, "otp:"+phone, code, s.cfg.OTP.CodeTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}
	s.rdb.Del(ctx, "otp:attempts:"+phone)
	s.logger.Info("otp issued", zap.String("phone", phone))
	return code, nil
}

// VerifyOTP checks and burns the stored code. Codes expire via TTL and are
// invalidated after the configured number of failed attempts.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, phone, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, "otp:"+phone).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read otp: %w", err)
	}

	if stored != code {
		attempts, _ := s.rdb.Incr(ctx, "otp:attempts:"+phone).Result()
		if attempts >= int64(s.cfg.OTP.MaxAttempts) {
			s.rdb.Del(ctx, "otp:"+phone, "otp:attempts:"+phone)
		}
		return false, nil
	}

	s.rdb.Del(ctx, "otp:"+phone, "otp:attempts:"+phone)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	user.Phone = phone
	user.PhoneVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) generateTokenPair(id, name, role string) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":  id,
		"uid":  id,
		"name": name,
		"role": role,
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":  uuid.New().String(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  id,
		"type": "refresh",
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.rdb.Set(context.Background(), "token:refresh:"+refreshJti, id, s.cfg.JWT.RefreshTokenExpire)

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

// RefreshToken rotates a refresh token for a new pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims["type"] != "refresh" {
		return nil, fmt.Errorf("invalid token type")
	}

	jti, _ := claims["jti"].(string)
	id, err := s.rdb.Get(ctx, "token:refresh:"+jti).Result()
	if err != nil {
		return nil, fmt.Errorf("refresh token expired or invalid")
	}
	s.rdb.Del(ctx, "token:refresh:"+jti)

	// The subject may be a user or a driver.
	if user, uerr := s.userRepo.FindByID(ctx, id); uerr == nil {
		return s.generateTokenPair(user.ID, user.Name, user.Role)
	}
	driver, derr := s.driverRepo.FindByID(ctx, id)
	if derr != nil {
		return nil, fmt.Errorf("account not found")
	}
	return s.generateTokenPair(driver.ID, driver.Name, entity.RoleDriver)
}
