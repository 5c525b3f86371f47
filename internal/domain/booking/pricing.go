package booking

import "fmt"

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the price breakdown for the given parameters.
	Calculate(params PricingParams) (Quote, error)
}

// PricingParams holds the inputs for price calculation. Amounts are whole currency units.
type PricingParams struct {
	NightlyRate        int64
	CleaningFee        int64
	Nights             int
	TaxRateBasisPoints int64
}

// Quote is the price breakdown for a stay.
type Quote struct {
	NightlyRate int64 `json:"nightlyRate"`
	Nights      int   `json:"nights"`
	RoomCharge  int64 `json:"roomCharge"`
	CleaningFee int64 `json:"cleaningFee"`
	Subtotal    int64 `json:"subtotal"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// NightlyRatePricing charges a flat nightly rate plus a one-off cleaning fee, with optional tax
// on the whole subtotal.
type NightlyRatePricing struct{}

// NewNightlyRatePricing creates a NightlyRatePricing.
func NewNightlyRatePricing() *NightlyRatePricing {
	return &NightlyRatePricing{}
}

// Calculate computes the price.
//
// Pricing formula:
//   - Room charge: nightly rate × nights
//   - Subtotal: room charge + cleaning fee
//   - Tax: subtotal × rate, rounded half up to a whole unit
func (p *NightlyRatePricing) Calculate(params PricingParams) (Quote, error) {
	if params.Nights <= 0 {
		return Quote{}, fmt.Errorf("nights must be positive")
	}
	if params.NightlyRate <= 0 {
		return Quote{}, fmt.Errorf("nightly rate must be positive")
	}
	if params.CleaningFee < 0 {
		return Quote{}, fmt.Errorf("cleaning fee cannot be negative")
	}
	if params.TaxRateBasisPoints < 0 {
		return Quote{}, fmt.Errorf("tax rate cannot be negative")
	}

	roomCharge := params.NightlyRate * int64(params.Nights)
	subtotal := roomCharge + params.CleaningFee
	tax := (subtotal*params.TaxRateBasisPoints + 5000) / 10000

	return Quote{
		NightlyRate: params.NightlyRate,
		Nights:      params.Nights,
		RoomCharge:  roomCharge,
		CleaningFee: params.CleaningFee,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       subtotal + tax,
	}, nil
}

// TaxRateToBasisPoints converts a fractional rate (0.075) to basis points (750).
func TaxRateToBasisPoints(rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(rate*10000 + 0.5)
}
