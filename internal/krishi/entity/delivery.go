package entity

import "time"

// DeliveryStatus values for bulk delivery contracts.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "Pending"
	DeliveryStatusAccepted  DeliveryStatus = "Accepted"
	DeliveryStatusCompleted DeliveryStatus = "Completed"
)

// AssignmentStatus values for a single driver's share of a delivery. In a
// split, the initiating driver is Accepted immediately while the invited
// second driver stays Pending until they confirm.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "Pending"
	AssignmentStatusAccepted AssignmentStatus = "Accepted"
)

// DeliveryRequest is a bulk haulage contract synthesized when a quote is
// confirmed. It is never created directly. Drivers claim all or part of the
// load; percentages of a non-Pending delivery always sum to 100.
type DeliveryRequest struct {
	ID           string         `json:"id" gorm:"primaryKey;size:40"`
	QuoteID      string         `json:"quote_id" gorm:"size:40;not null;index"`
	Commodity    string         `json:"commodity" gorm:"size:100;not null"`
	QuantityTons float64        `json:"quantity_tons" gorm:"not null"`
	RatePerTon   float64        `json:"rate_per_ton" gorm:"not null"`
	Source       string         `json:"source" gorm:"size:100"`
	Destination  string         `json:"destination" gorm:"size:100"`
	Timeline     string         `json:"timeline" gorm:"size:100"`
	FarmerName   string         `json:"farmer_name" gorm:"size:100;index"`
	Status       DeliveryStatus `json:"status" gorm:"size:20;not null;default:'Pending';index"`
	ProofObject  string         `json:"proof_object,omitempty" gorm:"size:256"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`

	AssignedDrivers []DeliveryAssignment `json:"assigned_drivers,omitempty" gorm:"foreignKey:DeliveryID"`
}

func (DeliveryRequest) TableName() string {
	return "b2b_deliveries"
}

// DeliveryAssignment is one driver's percentage share of a delivery.
// LoadTons is quantity * percentage / 100, fixed at assignment time.
// Earnings are derived, never stored.
type DeliveryAssignment struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	DeliveryID string           `json:"delivery_id" gorm:"size:40;not null;index"`
	DriverName string           `json:"driver_name" gorm:"size:100;not null;index"`
	Percentage int              `json:"percentage" gorm:"not null"`
	LoadTons   float64          `json:"load_tons" gorm:"not null"`
	Status     AssignmentStatus `json:"status" gorm:"size:20;not null;default:'Pending'"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
}

func (DeliveryAssignment) TableName() string {
	return "b2b_delivery_assignments"
}

// Earnings returns the assignment's derived payout.
func (a *DeliveryAssignment) Earnings(ratePerTon, quantityTons float64) float64 {
	return ratePerTon * quantityTons * float64(a.Percentage) / 100
}

// AllAccepted reports whether every assigned driver has confirmed.
func (d *DeliveryRequest) AllAccepted() bool {
	if len(d.AssignedDrivers) == 0 {
		return false
	}
	for _, a := range d.AssignedDrivers {
		if a.Status != AssignmentStatusAccepted {
			return false
		}
	}
	return true
}
