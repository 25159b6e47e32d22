package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the repository collection handed to services.
type Repositories struct {
	Freight  *FreightRepository
	Quote    *QuoteRepository
	Order    *OrderRepository
	Delivery *DeliveryRepository
	User     *UserRepository
	Driver   *DriverRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Freight:  NewFreightRepository(db),
		Quote:    NewQuoteRepository(db),
		Order:    NewOrderRepository(db),
		Delivery: NewDeliveryRepository(db),
		User:     NewUserRepository(db),
		Driver:   NewDriverRepository(db),
	}
}

// translateErr maps gorm's not-found to the package sentinel.
func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
