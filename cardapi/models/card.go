package models

// ClassifyRequest carries one of the three card input shapes. Expiry accepts
// the card face form MM/YY and is used when Month and Year are empty.
type ClassifyRequest struct {
	Mode       string `json:"mode"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	HolderName string `json:"holderName,omitempty"`
	Email      string `json:"email,omitempty"`
	Number     string `json:"number,omitempty"`
	Month      string `json:"month,omitempty"`
	Year       string `json:"year,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVC        string `json:"cvc,omitempty"`
	Track      string `json:"track,omitempty"`
}

// CardSummary never carries the full number or the verification value.
type CardSummary struct {
	Number          string `json:"number"`
	Network         string `json:"network,omitempty"`
	Valid           bool   `json:"valid"`
	HolderName      string `json:"holderName,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty"`
	ExpirationMonth string `json:"expirationMonth,omitempty"`
	ExpirationYear  string `json:"expirationYear,omitempty"`
	Expired         *bool  `json:"expired,omitempty"`
	CardPresent     bool   `json:"cardPresent"`
}

// TokenizeRequest is a ClassifyRequest plus data forwarded to the gateway.
type TokenizeRequest struct {
	ClassifyRequest
	Data map[string]any `json:"data,omitempty"`
}

// TokenizeResponse pairs the local classification with the gateway's result.
type TokenizeResponse struct {
	Card   CardSummary `json:"card"`
	Result any         `json:"result"`
}
