package entity

import "time"

// BulkOrder status values. These track the catalog-order flow, independent
// of the quote negotiation lifecycle.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusInTransit  OrderStatus = "In-Transit"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// EscrowStatus records whether payment is held pending delivery or released.
type EscrowStatus string

const (
	EscrowInEscrow EscrowStatus = "In-Escrow"
	EscrowSettled  EscrowStatus = "Settled"
)

// BulkOrder is a direct catalog purchase from an FPO by a B2B buyer.
// Progress only moves forward; reaching 100 delivers the order and settles
// escrow in the same update.
type BulkOrder struct {
	ID           string       `json:"id" gorm:"primaryKey;size:40"`
	BuyerName    string       `json:"buyer_name" gorm:"size:100;not null;index"`
	SourceFPO    string       `json:"source_fpo" gorm:"size:100;not null"`
	Product      string       `json:"product" gorm:"size:100;not null"`
	QuantityTons float64      `json:"quantity_tons" gorm:"not null"`
	Source       string       `json:"source" gorm:"size:100"`
	Destination  string       `json:"destination" gorm:"size:100"`
	Status       OrderStatus  `json:"status" gorm:"size:20;not null;default:'Processing';index"`
	EscrowStatus EscrowStatus `json:"escrow_status" gorm:"size:20;not null;default:'In-Escrow'"`
	Progress     int          `json:"progress" gorm:"not null;default:10"`
	CO2ImpactKg  float64      `json:"co2_impact_kg"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (BulkOrder) TableName() string {
	return "b2b_orders"
}
