package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/events"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FreightService owns the farmer haulage booking lifecycle:
// Pending -> Accepted -> Completed, strictly forward.
type FreightService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	logger   *zap.Logger
	producer *events.KafkaProducer
}

func NewFreightService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger, producer *events.KafkaProducer) *FreightService {
	return &FreightService{db: db, repos: repos, logger: logger, producer: producer}
}

// CreateFreightReq carries the booking form fields.
type CreateFreightReq struct {
	FarmerName        string  `json:"farmer_name" binding:"required"`
	OriginVillage     string  `json:"origin_village" binding:"required"`
	DestinationMarket string  `json:"destination_market" binding:"required"`
	WeightKg          float64 `json:"weight_kg" binding:"required"`
	DistanceKm        float64 `json:"distance_km" binding:"required"`
}

// Create books a new freight request. Prices and the CO2 estimate are
// computed here and stored on the row.
func (s *FreightService) Create(ctx context.Context, req CreateFreightReq) (*entity.FreightRequest, error) {
	if req.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	if req.DistanceKm <= 0 {
		return nil, fmt.Errorf("%w: distance must be positive", ErrInvalidInput)
	}

	pricing := PriceFreight(req.DistanceKm)
	freight := &entity.FreightRequest{
		ID:                entity.NewDisplayID(entity.FreightIDPrefix),
		FarmerName:        req.FarmerName,
		OriginVillage:     req.OriginVillage,
		DestinationMarket: req.DestinationMarket,
		WeightKg:          req.WeightKg,
		DistanceKm:        req.DistanceKm,
		StandardPrice:     pricing.StandardPrice,
		DiscountedPrice:   pricing.DiscountedPrice,
		Savings:           pricing.Savings,
		CO2SavedKg:        pricing.CO2SavedKg,
		Status:            entity.FreightStatusPending,
		CreatedAt:         time.Now(),
	}

	if err := s.repos.Freight.Create(ctx, freight); err != nil {
		return nil, fmt.Errorf("failed to create freight request: %w", err)
	}

	s.logger.Info("freight request created",
		zap.String("id", freight.ID),
		zap.String("farmer", freight.FarmerName),
		zap.Float64("distance_km", freight.DistanceKm),
		zap.Float64("savings", freight.Savings),
	)
	sse.PublishFreightUpdate(freight.ID, string(freight.Status), "")
	s.producer.Publish(ctx, freight.ID, events.LifecycleEvent{
		Entity:     "freight_request",
		EntityID:   freight.ID,
		ToStatus:   string(freight.Status),
		Actor:      freight.FarmerName,
		OccurredAt: time.Now(),
	})

	return freight, nil
}

// Accept assigns a driver to a pending request and puts the driver on
// delivery. Rejects with ErrInvalidTransition unless the request is Pending.
func (s *FreightService) Accept(ctx context.Context, requestID, driverName string) (*entity.FreightRequest, error) {
	var freight entity.FreightRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&freight, "id = ?", requestID).Error; err != nil {
			return translateTxErr(err)
		}
		if !freight.CanAccept() {
			return fmt.Errorf("%w: freight %s is %s, not Pending", ErrInvalidTransition, requestID, freight.Status)
		}

		now := time.Now()
		freight.Status = entity.FreightStatusAccepted
		freight.DriverName = &driverName
		freight.AcceptedAt = &now
		if err := tx.Save(&freight).Error; err != nil {
			return fmt.Errorf("failed to accept freight request: %w", err)
		}

		// The accepting driver goes on delivery.
		return tx.Model(&entity.Driver{}).
			Where("name_key = LOWER(?)", driverName).
			Update("status", entity.DriverStatusOnDelivery).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("freight request accepted",
		zap.String("id", freight.ID),
		zap.String("driver", driverName),
	)
	sse.PublishFreightUpdate(freight.ID, string(freight.Status), driverName)
	s.producer.Publish(ctx, freight.ID, events.LifecycleEvent{
		Entity:     "freight_request",
		EntityID:   freight.ID,
		FromStatus: string(entity.FreightStatusPending),
		ToStatus:   string(freight.Status),
		Actor:      driverName,
		OccurredAt: time.Now(),
	})

	return &freight, nil
}

// Complete finishes an accepted trip: stamps the completion time, counts the
// job and CO2 on the assigned driver's profile, and frees the driver. The
// whole update runs in one transaction and a second call fails with
// ErrInvalidTransition, so stats are never double-counted.
func (s *FreightService) Complete(ctx context.Context, requestID string) (*entity.FreightRequest, error) {
	var freight entity.FreightRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&freight, "id = ?", requestID).Error; err != nil {
			return translateTxErr(err)
		}
		if !freight.CanComplete() {
			return fmt.Errorf("%w: freight %s is %s, not Accepted", ErrInvalidTransition, requestID, freight.Status)
		}

		now := time.Now()
		freight.Status = entity.FreightStatusCompleted
		freight.CompletedAt = &now
		if err := tx.Save(&freight).Error; err != nil {
			return fmt.Errorf("failed to complete freight request: %w", err)
		}

		var driver entity.Driver
		if err := tx.First(&driver, "name_key = LOWER(?)", *freight.DriverName).Error; err != nil {
			return fmt.Errorf("assigned driver not found: %w", err)
		}
		driver.Jobs++
		driver.CO2SavedKg += freight.CO2SavedKg
		driver.Status = entity.DriverStatusAvailable
		return tx.Save(&driver).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("freight request completed",
		zap.String("id", freight.ID),
		zap.String("driver", *freight.DriverName),
		zap.Float64("co2_saved_kg", freight.CO2SavedKg),
	)
	sse.PublishFreightUpdate(freight.ID, string(freight.Status), *freight.DriverName)
	s.producer.Publish(ctx, freight.ID, events.LifecycleEvent{
		Entity:     "freight_request",
		EntityID:   freight.ID,
		FromStatus: string(entity.FreightStatusAccepted),
		ToStatus:   string(freight.Status),
		Actor:      *freight.DriverName,
		OccurredAt: time.Now(),
	})

	return &freight, nil
}

// Get returns one freight request. The handler serves this as the QR
// verification payload.
func (s *FreightService) Get(ctx context.Context, id string) (*entity.FreightRequest, error) {
	return s.repos.Freight.FindByID(ctx, id)
}

// List filters by status and/or assigned driver.
func (s *FreightService) List(ctx context.Context, status entity.FreightStatus, driverName string) ([]entity.FreightRequest, error) {
	return s.repos.Freight.List(ctx, status, driverName)
}

// translateTxErr maps gorm's not-found inside a transaction to the
// repository sentinel so handlers see one error taxonomy.
func translateTxErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
