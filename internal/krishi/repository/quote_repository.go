package repository

import (
	"context"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) FindByID(ctx context.Context, id string) (*entity.Quote, error) {
	var quote entity.Quote
	err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &quote, nil
}

func (r *QuoteRepository) List(ctx context.Context, status entity.QuoteStatus, buyerName string) ([]entity.Quote, error) {
	q := r.db.WithContext(ctx).Model(&entity.Quote{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if buyerName != "" {
		q = q.Where("buyer_name = ?", buyerName)
	}
	var quotes []entity.Quote
	err := q.Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}
