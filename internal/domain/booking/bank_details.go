package booking

// BankDetails is where guests send their transfer. It is deployment configuration.
type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
}
