package repository

import (
	"context"
	"strings"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"gorm.io/gorm"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, driver *entity.Driver) error {
	driver.NameKey = strings.ToLower(driver.Name)
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) Update(ctx context.Context, driver *entity.Driver) error {
	driver.NameKey = strings.ToLower(driver.Name)
	return r.db.WithContext(ctx).Save(driver).Error
}

func (r *DriverRepository) FindByID(ctx context.Context, id string) (*entity.Driver, error) {
	var driver entity.Driver
	err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &driver, nil
}

func (r *DriverRepository) FindByName(ctx context.Context, name string) (*entity.Driver, error) {
	var driver entity.Driver
	err := r.db.WithContext(ctx).First(&driver, "name_key = ?", strings.ToLower(name)).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &driver, nil
}

func (r *DriverRepository) FindByOAuth(ctx context.Context, uid, email string) (*entity.Driver, error) {
	var driver entity.Driver
	err := r.db.WithContext(ctx).
		Where("oauth_uid = ? OR (email <> '' AND email = ?)", uid, email).
		First(&driver).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &driver, nil
}

func (r *DriverRepository) List(ctx context.Context) ([]entity.Driver, error) {
	var drivers []entity.Driver
	err := r.db.WithContext(ctx).Order("jobs DESC, name ASC").Find(&drivers).Error
	return drivers, err
}

// CountActive counts drivers whose status is not Offline. Derived at query
// time; there is no stored active-driver counter.
func (r *DriverRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Driver{}).
		Where("status <> ?", entity.DriverStatusOffline).
		Count(&count).Error
	return count, err
}
