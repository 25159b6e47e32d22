package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/events"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryService lets drivers claim all or part of a bulk delivery
// contract. A split invite leaves the second driver's assignment Pending
// until they confirm it themselves; the delivery only completes once every
// assignment is accepted.
type DeliveryService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	logger   *zap.Logger
	producer *events.KafkaProducer
}

func NewDeliveryService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger, producer *events.KafkaProducer) *DeliveryService {
	return &DeliveryService{db: db, repos: repos, logger: logger, producer: producer}
}

// Accept claims the full load for one driver.
func (s *DeliveryService) Accept(ctx context.Context, deliveryID, driverName string) (*entity.DeliveryRequest, error) {
	var delivery entity.DeliveryRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&delivery, "id = ?", deliveryID).Error; err != nil {
			return translateTxErr(err)
		}
		if delivery.Status != entity.DeliveryStatusPending {
			return fmt.Errorf("%w: delivery %s is %s, not Pending", ErrInvalidTransition, deliveryID, delivery.Status)
		}

		now := time.Now()
		assignment := entity.DeliveryAssignment{
			ID:         uuid.New().String(),
			DeliveryID: delivery.ID,
			DriverName: driverName,
			Percentage: 100,
			LoadTons:   delivery.QuantityTons,
			Status:     entity.AssignmentStatusAccepted,
			AcceptedAt: &now,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		delivery.Status = entity.DeliveryStatusAccepted
		delivery.AssignedDrivers = []entity.DeliveryAssignment{assignment}
		return tx.Model(&entity.DeliveryRequest{}).
			Where("id = ?", delivery.ID).
			Update("status", delivery.Status).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery accepted",
		zap.String("id", delivery.ID),
		zap.String("driver", driverName),
	)
	s.publishUpdate(ctx, &delivery, driverName)
	return &delivery, nil
}

// SplitShare is one driver's part of a split acceptance.
type SplitShare struct {
	DriverName string `json:"driver_name" binding:"required"`
	Percentage int    `json:"percentage" binding:"required"`
}

// AcceptSplit claims the load for two drivers. Percentages must sum to
// exactly 100. The initiating driver (first share) is accepted immediately;
// the invited driver's assignment stays Pending until ConfirmSplit.
func (s *DeliveryService) AcceptSplit(ctx context.Context, deliveryID string, initiator, invited SplitShare) (*entity.DeliveryRequest, error) {
	if initiator.Percentage <= 0 || invited.Percentage <= 0 {
		return nil, fmt.Errorf("%w: split percentages must be positive", ErrInvalidInput)
	}
	if initiator.Percentage+invited.Percentage != 100 {
		return nil, fmt.Errorf("%w: split percentages must sum to 100, got %d",
			ErrInvalidInput, initiator.Percentage+invited.Percentage)
	}
	if initiator.DriverName == invited.DriverName {
		return nil, fmt.Errorf("%w: split requires two distinct drivers", ErrInvalidInput)
	}

	var delivery entity.DeliveryRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&delivery, "id = ?", deliveryID).Error; err != nil {
			return translateTxErr(err)
		}
		if delivery.Status != entity.DeliveryStatusPending {
			return fmt.Errorf("%w: delivery %s is %s, not Pending", ErrInvalidTransition, deliveryID, delivery.Status)
		}

		now := time.Now()
		assignments := []entity.DeliveryAssignment{
			{
				ID:         uuid.New().String(),
				DeliveryID: delivery.ID,
				DriverName: initiator.DriverName,
				Percentage: initiator.Percentage,
				LoadTons:   SplitLoad(delivery.QuantityTons, initiator.Percentage),
				Status:     entity.AssignmentStatusAccepted,
				AcceptedAt: &now,
			},
			{
				ID:         uuid.New().String(),
				DeliveryID: delivery.ID,
				DriverName: invited.DriverName,
				Percentage: invited.Percentage,
				LoadTons:   SplitLoad(delivery.QuantityTons, invited.Percentage),
				Status:     entity.AssignmentStatusPending,
			},
		}
		if err := tx.Create(&assignments).Error; err != nil {
			return fmt.Errorf("failed to create split assignments: %w", err)
		}
		delivery.Status = entity.DeliveryStatusAccepted
		delivery.AssignedDrivers = assignments
		return tx.Model(&entity.DeliveryRequest{}).
			Where("id = ?", delivery.ID).
			Update("status", delivery.Status).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery split-accepted",
		zap.String("id", delivery.ID),
		zap.String("initiator", initiator.DriverName),
		zap.String("invited", invited.DriverName),
		zap.Int("initiator_pct", initiator.Percentage),
	)
	s.publishUpdate(ctx, &delivery, initiator.DriverName)
	return &delivery, nil
}

// ConfirmSplit is the invited driver's explicit confirmation of their share.
func (s *DeliveryService) ConfirmSplit(ctx context.Context, deliveryID, driverName string) (*entity.DeliveryRequest, error) {
	var delivery entity.DeliveryRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&delivery, "id = ?", deliveryID).Error; err != nil {
			return translateTxErr(err)
		}

		var assignment entity.DeliveryAssignment
		err := tx.First(&assignment,
			"delivery_id = ? AND driver_name = ? AND status = ?",
			deliveryID, driverName, entity.AssignmentStatusPending).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no pending assignment for driver %s on delivery %s",
					ErrInvalidTransition, driverName, deliveryID)
			}
			return err
		}

		now := time.Now()
		assignment.Status = entity.AssignmentStatusAccepted
		assignment.AcceptedAt = &now
		if err := tx.Save(&assignment).Error; err != nil {
			return fmt.Errorf("failed to confirm assignment: %w", err)
		}
		return tx.Preload("AssignedDrivers").First(&delivery, "id = ?", deliveryID).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("split assignment confirmed",
		zap.String("id", delivery.ID),
		zap.String("driver", driverName),
	)
	s.publishUpdate(ctx, &delivery, driverName)
	return &delivery, nil
}

// Complete marks an accepted delivery as done. Every assignment must be
// confirmed first.
func (s *DeliveryService) Complete(ctx context.Context, deliveryID string) (*entity.DeliveryRequest, error) {
	var delivery entity.DeliveryRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("AssignedDrivers").
			First(&delivery, "id = ?", deliveryID).Error; err != nil {
			return translateTxErr(err)
		}
		if delivery.Status != entity.DeliveryStatusAccepted {
			return fmt.Errorf("%w: delivery %s is %s, not Accepted", ErrInvalidTransition, deliveryID, delivery.Status)
		}
		if !delivery.AllAccepted() {
			return fmt.Errorf("%w: delivery %s has unconfirmed assignments", ErrInvalidTransition, deliveryID)
		}

		now := time.Now()
		delivery.Status = entity.DeliveryStatusCompleted
		delivery.CompletedAt = &now
		return tx.Model(&entity.DeliveryRequest{}).
			Where("id = ?", delivery.ID).
			Updates(map[string]interface{}{"status": delivery.Status, "completed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery completed", zap.String("id", delivery.ID))
	s.publishUpdate(ctx, &delivery, "")
	return &delivery, nil
}

// EarningsFor returns a driver's derived payout on a delivery, zero when
// the driver has no assignment.
func (s *DeliveryService) EarningsFor(delivery *entity.DeliveryRequest, driverName string) float64 {
	for _, a := range delivery.AssignedDrivers {
		if a.DriverName == driverName {
			return DriverEarnings(delivery.RatePerTon, delivery.QuantityTons, a.Percentage)
		}
	}
	return 0
}

func (s *DeliveryService) Get(ctx context.Context, id string) (*entity.DeliveryRequest, error) {
	return s.repos.Delivery.FindByID(ctx, id)
}

func (s *DeliveryService) List(ctx context.Context, status entity.DeliveryStatus) ([]entity.DeliveryRequest, error) {
	return s.repos.Delivery.List(ctx, status)
}

func (s *DeliveryService) ListByDriver(ctx context.Context, driverName string) ([]entity.DeliveryRequest, error) {
	return s.repos.Delivery.ListByDriver(ctx, driverName)
}

func (s *DeliveryService) publishUpdate(ctx context.Context, delivery *entity.DeliveryRequest, actor string) {
	sse.PublishDeliveryUpdate(delivery.ID, string(delivery.Status))
	s.producer.Publish(ctx, delivery.ID, events.LifecycleEvent{
		Entity:     "b2b_delivery",
		EntityID:   delivery.ID,
		ToStatus:   string(delivery.Status),
		Actor:      actor,
		OccurredAt: time.Now(),
	})
}
