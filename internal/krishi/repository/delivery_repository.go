package repository

import (
	"context"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"gorm.io/gorm"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*entity.DeliveryRequest, error) {
	var delivery entity.DeliveryRequest
	err := r.db.WithContext(ctx).
		Preload("AssignedDrivers").
		First(&delivery, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &delivery, nil
}

func (r *DeliveryRepository) List(ctx context.Context, status entity.DeliveryStatus) ([]entity.DeliveryRequest, error) {
	q := r.db.WithContext(ctx).Model(&entity.DeliveryRequest{}).Preload("AssignedDrivers")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var deliveries []entity.DeliveryRequest
	err := q.Order("created_at DESC").Find(&deliveries).Error
	return deliveries, err
}

// SetProof records the object name of an uploaded proof-of-delivery file.
func (r *DeliveryRepository) SetProof(ctx context.Context, id, objectName string) error {
	res := r.db.WithContext(ctx).Model(&entity.DeliveryRequest{}).
		Where("id = ?", id).
		Update("proof_object", objectName)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByDriver returns deliveries with an assignment for the given driver.
// This backs the driver-side "my contracts" view.
func (r *DeliveryRepository) ListByDriver(ctx context.Context, driverName string) ([]entity.DeliveryRequest, error) {
	var deliveries []entity.DeliveryRequest
	err := r.db.WithContext(ctx).
		Preload("AssignedDrivers").
		Joins("JOIN b2b_delivery_assignments a ON a.delivery_id = b2b_deliveries.id").
		Where("a.driver_name = ?", driverName).
		Order("b2b_deliveries.created_at DESC").
		Find(&deliveries).Error
	return deliveries, err
}
