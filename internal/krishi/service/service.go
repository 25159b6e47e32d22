package service

import (
	"errors"

	"github.com/krishilink/krishi/internal/config"
	"github.com/krishilink/krishi/internal/krishi/events"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Transition and validation errors. Handlers map these onto the response
// envelope; transitions never fail silently.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoOffer           = errors.New("quote has no farmer offer")
	ErrDuplicateName     = errors.New("name already registered")
	ErrBadCredentials    = errors.New("invalid name or password")
)

// Services is the service collection.
type Services struct {
	Auth     *AuthService
	Freight  *FreightService
	Quote    *QuoteService
	Order    *OrderService
	Delivery *DeliveryService
	Stats    *StatsService
	Upload   *UploadService
}

// NewServices wires the service collection. The kafka producer and minio
// client may be nil when the corresponding backends are not configured.
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, minioClient *minio.Client, cfg *config.Config, logger *zap.Logger, producer *events.KafkaProducer) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Driver, rdb, cfg, logger),
		Freight:  NewFreightService(db, repos, logger, producer),
		Quote:    NewQuoteService(db, repos, logger, producer),
		Order:    NewOrderService(repos.Order, logger, producer),
		Delivery: NewDeliveryService(db, repos, logger, producer),
		Stats:    NewStatsService(repos, logger),
		Upload:   NewUploadService(repos.Delivery, minioClient, cfg.MinIO.Bucket, logger),
	}
}
