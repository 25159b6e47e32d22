package entity

import "time"

// FreightStatus is the closed set of freight request states.
type FreightStatus string

const (
	FreightStatusPending   FreightStatus = "Pending"
	FreightStatusAccepted  FreightStatus = "Accepted"
	FreightStatusCompleted FreightStatus = "Completed"
)

// FreightRequest is a farmer-initiated haulage booking from a village to a
// mandi. Prices and the CO2 estimate are computed once at creation and
// stored; aggregate totals are always derived from these rows, never kept
// as separate counters.
type FreightRequest struct {
	ID                string        `json:"id" gorm:"primaryKey;size:40"`
	FarmerName        string        `json:"farmer_name" gorm:"size:100;not null;index"`
	OriginVillage     string        `json:"origin_village" gorm:"size:100;not null"`
	DestinationMarket string        `json:"destination_market" gorm:"size:100;not null"`
	WeightKg          float64       `json:"weight_kg" gorm:"not null"`
	DistanceKm        float64       `json:"distance_km" gorm:"not null"`
	StandardPrice     float64       `json:"standard_price" gorm:"not null"`
	DiscountedPrice   float64       `json:"discounted_price" gorm:"not null"`
	Savings           float64       `json:"savings" gorm:"not null"`
	CO2SavedKg        float64       `json:"co2_saved_kg" gorm:"not null"`
	Status            FreightStatus `json:"status" gorm:"size:20;not null;default:'Pending';index"`
	DriverName        *string       `json:"driver_name,omitempty" gorm:"size:100;index"`
	CreatedAt         time.Time     `json:"created_at" gorm:"index"`
	AcceptedAt        *time.Time    `json:"accepted_at,omitempty"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}

func (FreightRequest) TableName() string {
	return "freight_requests"
}

// CanAccept reports whether the request may transition to Accepted.
func (r *FreightRequest) CanAccept() bool {
	return r.Status == FreightStatusPending
}

// CanComplete reports whether the request may transition to Completed.
// A second completion attempt must fail so driver stats are never
// double-counted.
func (r *FreightRequest) CanComplete() bool {
	return r.Status == FreightStatusAccepted
}
