package repository

import (
	"context"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"gorm.io/gorm"
)

type FreightRepository struct {
	db *gorm.DB
}

func NewFreightRepository(db *gorm.DB) *FreightRepository {
	return &FreightRepository{db: db}
}

func (r *FreightRepository) DB() *gorm.DB {
	return r.db
}

func (r *FreightRepository) Create(ctx context.Context, req *entity.FreightRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *FreightRepository) FindByID(ctx context.Context, id string) (*entity.FreightRequest, error) {
	var req entity.FreightRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &req, nil
}

// List returns requests newest first, optionally filtered by status and/or
// assigned driver.
func (r *FreightRepository) List(ctx context.Context, status entity.FreightStatus, driverName string) ([]entity.FreightRequest, error) {
	q := r.db.WithContext(ctx).Model(&entity.FreightRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if driverName != "" {
		q = q.Where("driver_name = ?", driverName)
	}
	var reqs []entity.FreightRequest
	err := q.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

// FreightTotals are the dashboard aggregates, derived by summation at query
// time so they cannot drift from the underlying rows.
type FreightTotals struct {
	TotalSavings float64
	TotalCO2Kg   float64
	FarmerCount  int64
}

func (r *FreightRepository) Totals(ctx context.Context) (*FreightTotals, error) {
	var t FreightTotals
	err := r.db.WithContext(ctx).Model(&entity.FreightRequest{}).
		Select("COALESCE(SUM(savings),0) AS total_savings, COALESCE(SUM(co2_saved_kg),0) AS total_co2_kg, COUNT(DISTINCT farmer_name) AS farmer_count").
		Scan(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}
