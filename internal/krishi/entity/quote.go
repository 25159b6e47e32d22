package entity

import "time"

// QuoteStatus values. Progression is strictly forward:
// Pending -> Responded -> BuyerApproved -> Confirmed.
type QuoteStatus string

const (
	QuoteStatusPending       QuoteStatus = "Pending"
	QuoteStatusResponded     QuoteStatus = "Responded"
	QuoteStatusBuyerApproved QuoteStatus = "BuyerApproved"
	QuoteStatusConfirmed     QuoteStatus = "Confirmed"
)

// Quote is a B2B buyer's request for a bulk commodity, negotiated against a
// farmer's offer. The offer fields are empty until the farmer responds.
type Quote struct {
	ID          string      `json:"id" gorm:"primaryKey;size:40"`
	BuyerName   string      `json:"buyer_name" gorm:"size:100;not null;index"`
	FarmerName  string      `json:"farmer_name" gorm:"size:100;index"`
	Commodity   string      `json:"commodity" gorm:"size:100;not null"`
	QuantityTons float64    `json:"quantity_tons" gorm:"not null"`
	Deadline    string      `json:"deadline" gorm:"size:100"`
	Notes       string      `json:"notes" gorm:"type:text"`
	Status      QuoteStatus `json:"status" gorm:"size:20;not null;default:'Pending';index"`

	// Farmer offer, set by Respond.
	OfferPricePerTon  float64 `json:"offer_price_per_ton"`
	OfferQuantityTons float64 `json:"offer_quantity_tons"`
	OfferDeliveryDays string  `json:"offer_delivery_days" gorm:"size:100"`
	OfferSource       string  `json:"offer_source" gorm:"size:100"`
	OfferDestination  string  `json:"offer_destination" gorm:"size:100"`

	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

func (Quote) TableName() string {
	return "b2b_quotes"
}

// HasOffer reports whether the farmer has stored an offer.
func (q *Quote) HasOffer() bool {
	return q.OfferPricePerTon > 0
}

// CanRespond allows responding from Pending, and re-responding from
// Responded (the farmer may revise the offer until the buyer approves).
func (q *Quote) CanRespond() bool {
	return q.Status == QuoteStatusPending || q.Status == QuoteStatusResponded
}

// CanApprove requires a stored offer; approving a bare Pending quote is
// rejected.
func (q *Quote) CanApprove() bool {
	return q.Status == QuoteStatusResponded && q.HasOffer()
}

func (q *Quote) CanConfirm() bool {
	return q.Status == QuoteStatusBuyerApproved
}
