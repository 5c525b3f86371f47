package domain

// Supported currency codes.
const (
	CurrencyNGN = "NGN"
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
)

// IsSupportedCurrency returns true if the ISO code is one the service prices in.
func IsSupportedCurrency(code string) bool {
	switch code {
	case CurrencyNGN, CurrencyUSD, CurrencyGBP:
		return true
	}
	return false
}
