package service

import (
	"context"
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

// QuoteService owns the B2B negotiation lifecycle:
// Pending -> Responded -> BuyerApproved -> Confirmed, forward-only.
// Confirming a quote synthesizes the delivery contract in the same
// transaction.
type QuoteService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	logger   *zap.Logger
	producer *events.KafkaProducer
}

func NewQuoteService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger, producer *events.KafkaProducer) *QuoteService {
	return &QuoteService{db: db, repos: repos, logger: logger, producer: producer}
}

// CreateQuoteReq is the buyer's request form.
type CreateQuoteReq struct {
	BuyerName    string  `json:"buyer_name" binding:"required"`
	Commodity    string  `json:"commodity" binding:"required"`
	QuantityTons float64 `json:"quantity_tons" binding:"required"`
	Deadline     string  `json:"deadline"`
	Notes        string  `json:"notes"`
}

func (s *QuoteService) Create(ctx context.Context, req CreateQuoteReq) (*entity.Quote, error) {
	if req.QuantityTons <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	quote := &entity.Quote{
		ID:           entity.NewDisplayID(entity.QuoteIDPrefix),
		BuyerName:    req.BuyerName,
		Commodity:    req.Commodity,
		QuantityTons: req.QuantityTons,
		Deadline:     req.Deadline,
		Notes:        req.Notes,
		Status:       entity.QuoteStatusPending,
		CreatedAt:    time.Now(),
	}
	if err := s.repos.Quote.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("id", quote.ID),
		zap.String("buyer", quote.BuyerName),
		zap.String("commodity", quote.Commodity),
	)
	sse.PublishQuoteUpdate(quote.ID, string(quote.Status))
	s.producer.Publish(ctx, quote.ID, events.LifecycleEvent{
		Entity:     "b2b_quote",
		EntityID:   quote.ID,
		ToStatus:   string(quote.Status),
		Actor:      quote.BuyerName,
		OccurredAt: time.Now(),
	})
	return quote, nil
}

// QuoteOfferReq is the farmer's offer form.
type QuoteOfferReq struct {
	FarmerName        string  `json:"farmer_name" binding:"required"`
	PricePerTon       float64 `json:"price_per_ton" binding:"required"`
	AvailableQuantity float64 `json:"available_quantity" binding:"required"`
	DeliveryDays      string  `json:"delivery_days"`
	Source            string  `json:"source"`
	Destination       string  `json:"destination"`
}

// Respond stores the farmer's offer. Allowed from Pending and again from
// Responded — the farmer may revise until the buyer approves.
func (s *QuoteService) Respond(ctx context.Context, quoteID string, req QuoteOfferReq) (*entity.Quote, error) {
	if req.PricePerTon <= 0 || req.AvailableQuantity <= 0 {
		return nil, fmt.Errorf("%w: offer price and quantity must be positive", ErrInvalidInput)
	}

	var quote entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&quote, "id = ?", quoteID).Error; err != nil {
			return translateTxErr(err)
		}
		if !quote.CanRespond() {
			return fmt.Errorf("%w: quote %s is %s", ErrInvalidTransition, quoteID, quote.Status)
		}

		now := time.Now()
		quote.Status = entity.QuoteStatusResponded
		quote.FarmerName = req.FarmerName
		quote.OfferPricePerTon = req.PricePerTon
		quote.OfferQuantityTons = req.AvailableQuantity
		quote.OfferDeliveryDays = req.DeliveryDays
		quote.OfferSource = req.Source
		quote.OfferDestination = req.Destination
		quote.RespondedAt = &now
		return tx.Save(&quote).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote responded",
		zap.String("id", quote.ID),
		zap.String("farmer", req.FarmerName),
		zap.Float64("price_per_ton", req.PricePerTon),
	)
	sse.PublishQuoteUpdate(quote.ID, string(quote.Status))
	s.producer.Publish(ctx, quote.ID, events.LifecycleEvent{
		Entity:     "b2b_quote",
		EntityID:   quote.ID,
		ToStatus:   string(quote.Status),
		Actor:      req.FarmerName,
		OccurredAt: time.Now(),
	})
	return &quote, nil
}

// Approve moves a responded quote to BuyerApproved. A quote without a
// stored offer cannot be approved.
func (s *QuoteService) Approve(ctx context.Context, quoteID string) (*entity.Quote, error) {
	var quote entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&quote, "id = ?", quoteID).Error; err != nil {
			return translateTxErr(err)
		}
		if quote.Status != entity.QuoteStatusResponded {
			return fmt.Errorf("%w: quote %s is %s, not Responded", ErrInvalidTransition, quoteID, quote.Status)
		}
		if !quote.HasOffer() {
			return fmt.Errorf("%w: quote %s", ErrNoOffer, quoteID)
		}

		now := time.Now()
		quote.Status = entity.QuoteStatusBuyerApproved
		quote.ApprovedAt = &now
		return tx.Save(&quote).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote approved", zap.String("id", quote.ID))
	sse.PublishQuoteUpdate(quote.ID, string(quote.Status))
	s.producer.Publish(ctx, quote.ID, events.LifecycleEvent{
		Entity:     "b2b_quote",
		EntityID:   quote.ID,
		FromStatus: string(entity.QuoteStatusResponded),
		ToStatus:   string(quote.Status),
		Actor:      quote.BuyerName,
		OccurredAt: time.Now(),
	})
	return &quote, nil
}

// Confirm finalizes an approved quote and synthesizes the bulk delivery
// contract from the farmer's offer. The quote transition and the delivery
// creation commit or roll back together.
func (s *QuoteService) Confirm(ctx context.Context, quoteID string) (*entity.Quote, *entity.DeliveryRequest, error) {
	var quote entity.Quote
	var delivery *entity.DeliveryRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&quote, "id = ?", quoteID).Error; err != nil {
			return translateTxErr(err)
		}
		if !quote.CanConfirm() {
			return fmt.Errorf("%w: quote %s is %s, not BuyerApproved", ErrInvalidTransition, quoteID, quote.Status)
		}

		now := time.Now()
		quote.Status = entity.QuoteStatusConfirmed
		quote.ConfirmedAt = &now
		if err := tx.Save(&quote).Error; err != nil {
			return fmt.Errorf("failed to confirm quote: %w", err)
		}

		delivery = deliveryFromQuote(&quote)
		if err := tx.Create(delivery).Error; err != nil {
			return fmt.Errorf("failed to create delivery contract: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("quote confirmed, delivery contract created",
		zap.String("quote_id", quote.ID),
		zap.String("delivery_id", delivery.ID),
		zap.Float64("rate_per_ton", delivery.RatePerTon),
	)
	sse.PublishQuoteUpdate(quote.ID, string(quote.Status))
	sse.PublishDeliveryUpdate(delivery.ID, string(delivery.Status))
	s.producer.Publish(ctx, quote.ID, events.LifecycleEvent{
		Entity:     "b2b_quote",
		EntityID:   quote.ID,
		FromStatus: string(entity.QuoteStatusBuyerApproved),
		ToStatus:   string(quote.Status),
		Actor:      quote.BuyerName,
		OccurredAt: time.Now(),
	})
	s.producer.Publish(ctx, delivery.ID, events.LifecycleEvent{
		Entity:     "b2b_delivery",
		EntityID:   delivery.ID,
		ToStatus:   string(delivery.Status),
		OccurredAt: time.Now(),
	})
	return &quote, delivery, nil
}

// deliveryFromQuote derives the contract terms from the farmer's stored
// offer, never from the buyer's original ask: quantity and route come from
// the offer (with the original's fallbacks) and the haulage rate is the
// offer price scaled by DeliveryRateShare.
func deliveryFromQuote(quote *entity.Quote) *entity.DeliveryRequest {
	quantity := quote.OfferQuantityTons
	if quantity <= 0 {
		quantity = quote.QuantityTons
	}
	source := quote.OfferSource
	if source == "" {
		source = "Farm Location"
	}
	destination := quote.OfferDestination
	if destination == "" {
		destination = "B2B Buyer Location"
	}
	timeline := quote.OfferDeliveryDays
	if timeline == "" {
		timeline = quote.Deadline
	}
	farmer := quote.FarmerName
	if farmer == "" {
		farmer = "Current Farmer"
	}

	return &entity.DeliveryRequest{
		ID:           entity.NewDisplayID(entity.DeliveryIDPrefix),
		QuoteID:      quote.ID,
		Commodity:    quote.Commodity,
		QuantityTons: quantity,
		RatePerTon:   quote.OfferPricePerTon * DeliveryRateShare,
		Source:       source,
		Destination:  destination,
		Timeline:     timeline,
		FarmerName:   farmer,
		Status:       entity.DeliveryStatusPending,
		CreatedAt:    time.Now(),
	}
}

func (s *QuoteService) Get(ctx context.Context, id string) (*entity.Quote, error) {
	return s.repos.Quote.FindByID(ctx, id)
}

func (s *QuoteService) List(ctx context.Context, status entity.QuoteStatus, buyerName string) ([]entity.Quote, error) {
	return s.repos.Quote.List(ctx, status, buyerName)
}
