package repository

import (
	"context"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.BulkOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.BulkOrder, error) {
	var order entity.BulkOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.BulkOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) List(ctx context.Context, buyerName string) ([]entity.BulkOrder, error) {
	q := r.db.WithContext(ctx).Model(&entity.BulkOrder{})
	if buyerName != "" {
		q = q.Where("buyer_name = ?", buyerName)
	}
	var orders []entity.BulkOrder
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}
