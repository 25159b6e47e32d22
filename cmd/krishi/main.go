package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/krishilink/krishi/internal/config"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/events"
	"github.com/krishilink/krishi/internal/krishi/handler"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/service"
	"github.com/krishilink/krishi/internal/middleware"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting krishi-link service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Driver{},
		&entity.FreightRequest{},
		&entity.Quote{},
		&entity.BulkOrder{},
		&entity.DeliveryRequest{},
		&entity.DeliveryAssignment{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	minioClient := initMinIO(cfg.MinIO, zapLogger)
	producer := events.NewKafkaProducer(cfg.Kafka.Broker, cfg.Kafka.Topic, zapLogger)
	defer producer.Close()

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, minioClient, cfg, zapLogger, producer)
	handlers := handler.NewHandlers(services, cfg)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(zapLogger))
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig, zapLogger *zap.Logger) *minio.Client {
	if cfg.Endpoint == "" {
		return nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		zapLogger.Warn("MinIO unavailable, proof uploads disabled", zap.Error(err))
		return nil
	}
	return client
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/driver/register", h.Auth.RegisterDriver)
			auth.POST("/driver/login", h.Auth.LoginDriver)
			auth.POST("/driver/oauth", h.Auth.OAuthDriver)
			auth.POST("/:role/register", h.Auth.Register)
			auth.POST("/:role/login", h.Auth.Login)
			auth.POST("/:role/oauth", h.Auth.OAuth)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.POST("/auth/otp/request", h.Auth.RequestOTP)
			authorized.POST("/auth/otp/verify", h.Auth.VerifyOTP)
			authorized.PUT("/users/me/language", h.Auth.SetLanguage)
			authorized.PUT("/drivers/me/status", middleware.RequireRole(entity.RoleDriver), h.Auth.UpdateDriverStatus)

			freight := authorized.Group("/freight")
			{
				freight.GET("", h.Freight.List)
				freight.POST("", middleware.RequireRole(entity.RoleFarmer), h.Freight.Create)
				freight.GET("/:id", h.Freight.Get)
				freight.GET("/:id/qr", h.Freight.QRPayload)
				freight.POST("/:id/accept", middleware.RequireRole(entity.RoleDriver), h.Freight.Accept)
				freight.POST("/:id/complete", middleware.RequireRole(entity.RoleDriver, entity.RoleFarmer), h.Freight.Complete)
			}

			quotes := authorized.Group("/quotes")
			{
				quotes.GET("", h.Quote.List)
				quotes.POST("", middleware.RequireRole(entity.RoleBuyer), h.Quote.Create)
				quotes.GET("/:id", h.Quote.Get)
				quotes.POST("/:id/respond", middleware.RequireRole(entity.RoleFarmer), h.Quote.Respond)
				quotes.POST("/:id/approve", middleware.RequireRole(entity.RoleBuyer), h.Quote.Approve)
				quotes.POST("/:id/confirm", middleware.RequireRole(entity.RoleFarmer), h.Quote.Confirm)
			}

			orders := authorized.Group("/orders")
			{
				orders.GET("", h.Order.List)
				orders.POST("", middleware.RequireRole(entity.RoleBuyer), h.Order.Create)
				orders.GET("/:id", h.Order.Get)
				orders.PUT("/:id/progress", h.Order.UpdateProgress)
			}

			deliveries := authorized.Group("/deliveries")
			{
				deliveries.GET("", h.Delivery.List)
				deliveries.GET("/mine", middleware.RequireRole(entity.RoleDriver), h.Delivery.ListMine)
				deliveries.GET("/:id", h.Delivery.Get)
				deliveries.POST("/:id/accept", middleware.RequireRole(entity.RoleDriver), h.Delivery.Accept)
				deliveries.POST("/:id/split", middleware.RequireRole(entity.RoleDriver), h.Delivery.AcceptSplit)
				deliveries.POST("/:id/split/confirm", middleware.RequireRole(entity.RoleDriver), h.Delivery.ConfirmSplit)
				deliveries.POST("/:id/complete", middleware.RequireRole(entity.RoleDriver), h.Delivery.Complete)
				deliveries.GET("/:id/earnings", h.Delivery.Earnings)
				deliveries.POST("/:id/proof", middleware.RequireRole(entity.RoleDriver), h.Delivery.UploadProof)
				deliveries.GET("/:id/proof", h.Delivery.ProofURL)
			}

			stats := authorized.Group("/stats")
			{
				stats.GET("/summary", h.Stats.Summary)
				stats.GET("/leaderboard", h.Stats.Leaderboard)
				stats.GET("/export", middleware.RequireRole(entity.RoleMinistry), h.Stats.Export)
			}

			authorized.GET("/sse/events", h.SSE.Stream)
		}
	}
}
