package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krishilink/krishi/internal/config"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/testutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setupAuthTest(t *testing.T) (*AuthService, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", DB: 15})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable, skipping: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.Issuer = "krishi-link"
	cfg.JWT.AccessTokenExpire = time.Hour
	cfg.JWT.RefreshTokenExpire = 24 * time.Hour
	cfg.OTP.CodeTTL = 5 * time.Minute
	cfg.OTP.MaxAttempts = 3

	repos := repository.NewRepositories(db)
	return NewAuthService(repos.User, repos.Driver, rdb, cfg, zap.NewNop()), ctx
}

func TestRegisterAndLoginUser(t *testing.T) {
	svc, ctx := setupAuthTest(t)

	user, tokens, err := svc.RegisterUser(ctx, entity.RoleFarmer, RegisterReq{
		Name:     "Ramesh Kumar",
		Password: "kisan123",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Role != entity.RoleFarmer {
		t.Errorf("Expected farmer role, got %s", user.Role)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("Expected a token pair")
	}

	// Names are unique per role, case-insensitively.
	_, _, err = svc.RegisterUser(ctx, entity.RoleFarmer, RegisterReq{
		Name:     "RAMESH KUMAR",
		Password: "other",
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}

	// The same name is free under a different role.
	_, _, err = svc.RegisterUser(ctx, entity.RoleBuyer, RegisterReq{
		Name:     "Ramesh Kumar",
		Password: "buyer123",
	})
	if err != nil {
		t.Errorf("Same name under another role should register: %v", err)
	}

	logged, _, err := svc.LoginUser(ctx, entity.RoleFarmer, "ramesh kumar", "kisan123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if logged.LoginCount != 2 {
		t.Errorf("Expected login count 2, got %d", logged.LoginCount)
	}

	if _, _, err := svc.LoginUser(ctx, entity.RoleFarmer, "Ramesh Kumar", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Expected ErrBadCredentials, got %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, entity.RoleFarmer, "Nobody", "kisan123"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Expected ErrBadCredentials for unknown name, got %v", err)
	}
}

func TestOAuthUserUpsert(t *testing.T) {
	svc, ctx := setupAuthTest(t)

	req := OAuthReq{UID: "google-123", Email: "agro@example.com", Name: "AgroVeda Foods"}
	first, _, err := svc.OAuthUser(ctx, entity.RoleBuyer, req)
	if err != nil {
		t.Fatalf("OAuthUser: %v", err)
	}

	second, _, err := svc.OAuthUser(ctx, entity.RoleBuyer, req)
	if err != nil {
		t.Fatalf("OAuthUser repeat: %v", err)
	}
	if first.ID != second.ID {
		t.Error("Repeated OAuth sign-in should reuse the account")
	}
}

func TestDriverRegisterAndStatus(t *testing.T) {
	svc, ctx := setupAuthTest(t)

	driver, _, err := svc.RegisterDriver(ctx, RegisterReq{
		Name:          "Suresh Singh",
		Password:      "truck123",
		VehicleNumber: "UP-80-AX-1234",
	})
	if err != nil {
		t.Fatalf("RegisterDriver: %v", err)
	}
	if driver.Status != entity.DriverStatusAvailable {
		t.Errorf("New driver should be Available, got %s", driver.Status)
	}

	updated, err := svc.UpdateDriverStatus(ctx, "Suresh Singh", entity.DriverStatusOffline)
	if err != nil {
		t.Fatalf("UpdateDriverStatus: %v", err)
	}
	if updated.Status != entity.DriverStatusOffline {
		t.Errorf("Expected Offline, got %s", updated.Status)
	}

	if _, err := svc.UpdateDriverStatus(ctx, "Suresh Singh", "Napping"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, ctx := setupAuthTest(t)

	_, tokens, err := svc.RegisterUser(ctx, entity.RoleFarmer, RegisterReq{
		Name:     "Ramesh Kumar",
		Password: "kisan123",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	fresh, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("Expected a fresh access token")
	}

	// The old refresh token is burned on rotation.
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); err == nil {
		t.Error("Reusing a rotated refresh token should fail")
	}
}

func TestOTPFlow(t *testing.T) {
	svc, ctx := setupAuthTest(t)

	user, _, err := svc.RegisterUser(ctx, entity.RoleFarmer, RegisterReq{
		Name:     "Ramesh Kumar",
		Password: "kisan123",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	code, err := svc.IssueOTP(ctx, "+919876543210")
	if err != nil {
		t.Fatalf("IssueOTP: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("Expected 6-digit code, got %q", code)
	}

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	ok, err := svc.VerifyOTP(ctx, user.ID, "+919876543210", wrong)
	if err != nil {
		t.Fatalf("VerifyOTP wrong code: %v", err)
	}
	if ok {
		t.Error("Wrong code should not verify")
	}

	ok, err = svc.VerifyOTP(ctx, user.ID, "+919876543210", code)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if !ok {
		t.Error("Correct code should verify")
	}

	// The code is burned on success.
	ok, _ = svc.VerifyOTP(ctx, user.ID, "+919876543210", code)
	if ok {
		t.Error("Burned code should not verify again")
	}
}
