package service

import (
	"context"
	"fmt"
	"time"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/events"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"go.uber.org/zap"
)

// OrderService owns catalog bulk orders. Their lifecycle is independent of
// the quote negotiation: Processing -> In-Transit -> Delivered, driven by a
// forward-only progress percentage. Settling escrow is coupled to delivery.
type OrderService struct {
	repo     *repository.OrderRepository
	logger   *zap.Logger
	producer *events.KafkaProducer
}

func NewOrderService(repo *repository.OrderRepository, logger *zap.Logger, producer *events.KafkaProducer) *OrderService {
	return &OrderService{repo: repo, logger: logger, producer: producer}
}

// CreateOrderReq is the "order sample" catalog action.
type CreateOrderReq struct {
	BuyerName    string  `json:"buyer_name" binding:"required"`
	SourceFPO    string  `json:"source_fpo" binding:"required"`
	Product      string  `json:"product" binding:"required"`
	QuantityTons float64 `json:"quantity_tons" binding:"required"`
	Source       string  `json:"source"`
	Destination  string  `json:"destination"`
	CO2ImpactKg  float64 `json:"co2_impact_kg"`
}

func (s *OrderService) Create(ctx context.Context, req CreateOrderReq) (*entity.BulkOrder, error) {
	if req.QuantityTons <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	order := &entity.BulkOrder{
		ID:           entity.NewDisplayID(entity.OrderIDPrefix),
		BuyerName:    req.BuyerName,
		SourceFPO:    req.SourceFPO,
		Product:      req.Product,
		QuantityTons: req.QuantityTons,
		Source:       req.Source,
		Destination:  req.Destination,
		Status:       entity.OrderStatusProcessing,
		EscrowStatus: entity.EscrowInEscrow,
		Progress:     10,
		CO2ImpactKg:  req.CO2ImpactKg,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("bulk order created",
		zap.String("id", order.ID),
		zap.String("buyer", order.BuyerName),
		zap.String("fpo", order.SourceFPO),
	)
	s.producer.Publish(ctx, order.ID, events.LifecycleEvent{
		Entity:     "b2b_order",
		EntityID:   order.ID,
		ToStatus:   string(order.Status),
		Actor:      order.BuyerName,
		OccurredAt: time.Now(),
	})
	return order, nil
}

// UpdateProgress advances delivery progress. Progress never decreases.
// Crossing 10 puts the order in transit; reaching 100 delivers it and
// settles escrow in the same update.
func (s *OrderService) UpdateProgress(ctx context.Context, orderID string, progress int) (*entity.BulkOrder, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if progress < order.Progress {
		return nil, fmt.Errorf("%w: progress cannot decrease from %d to %d", ErrInvalidTransition, order.Progress, progress)
	}
	if order.Status == entity.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order %s already delivered", ErrInvalidTransition, orderID)
	}

	from := order.Status
	order.Progress = progress
	switch {
	case progress >= 100:
		order.Status = entity.OrderStatusDelivered
		order.EscrowStatus = entity.EscrowSettled
	case progress > 10:
		order.Status = entity.OrderStatusInTransit
	}
	order.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("order progress updated",
		zap.String("id", order.ID),
		zap.Int("progress", progress),
		zap.String("status", string(order.Status)),
		zap.String("escrow", string(order.EscrowStatus)),
	)
	if from != order.Status {
		s.producer.Publish(ctx, order.ID, events.LifecycleEvent{
			Entity:     "b2b_order",
			EntityID:   order.ID,
			FromStatus: string(from),
			ToStatus:   string(order.Status),
			OccurredAt: time.Now(),
		})
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.BulkOrder, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, buyerName string) ([]entity.BulkOrder, error) {
	return s.repo.List(ctx, buyerName)
}
