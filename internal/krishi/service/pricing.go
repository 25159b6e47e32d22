package service

// Platform-wide freight pricing constants. The discount is the Krishi-Link
// subsidy against the standard market haulage rate; CO2 reflects the saved
// dead-mile emissions per kilometre of a matched trip.
const (
	RatePerKm      = 15.0
	DiscountFactor = 0.6
	CO2PerKm       = 0.12

	// A delivery contract synthesized from a confirmed quote pays drivers
	// this share of the farmer's offer price, per ton.
	DeliveryRateShare = 0.1

	// Fallback haulage rate when a delivery carries no rate.
	DefaultRatePerTon = 1500.0
)

// FreightPricing holds the computed price fields of a freight request.
type FreightPricing struct {
	StandardPrice   float64
	DiscountedPrice float64
	Savings         float64
	CO2SavedKg      float64
}

// PriceFreight computes the booking quote for a trip of the given distance.
// discounted = standard * DiscountFactor, savings = standard - discounted,
// exactly.
func PriceFreight(distanceKm float64) FreightPricing {
	standard := distanceKm * RatePerKm
	discounted := standard * DiscountFactor
	return FreightPricing{
		StandardPrice:   standard,
		DiscountedPrice: discounted,
		Savings:         standard - discounted,
		CO2SavedKg:      distanceKm * CO2PerKm,
	}
}

// SplitLoad returns the tonnage share for a percentage of a bulk load.
func SplitLoad(quantityTons float64, percentage int) float64 {
	return quantityTons * float64(percentage) / 100
}

// DriverEarnings is the derived payout for a driver's share of a delivery.
func DriverEarnings(ratePerTon, quantityTons float64, percentage int) float64 {
	if ratePerTon <= 0 {
		ratePerTon = DefaultRatePerTon
	}
	return ratePerTon * quantityTons * float64(percentage) / 100
}
