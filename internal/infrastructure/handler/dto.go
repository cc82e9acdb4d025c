package handler

// ChangeCurrencyRequest is the body for changing the display currency.
type ChangeCurrencyRequest struct {
	Currency string `json:"currency"`
}

// ChangeExchangeTypeRequest is the body for changing the exchange type.
type ChangeExchangeTypeRequest struct {
	ExchangeType string `json:"exchange_type"`
}

// RateResponse is one cached quote.
type RateResponse struct {
	Currency   string  `json:"currency"`
	Kind       string  `json:"kind"`
	Rate       float64 `json:"rate"`
	ObservedAt string  `json:"observed_at"`
}

// RateInfoResponse is the read-only snapshot served to consuming screens.
type RateInfoResponse struct {
	DisplayCurrency string                  `json:"display_currency"`
	RateKind        string                  `json:"rate_kind"`
	Rates           map[string]RateResponse `json:"rates"`
	LastUpdate      string                  `json:"last_update,omitempty"`
	Loading         bool                    `json:"loading"`
}

// FormatResponse carries a formatted amount.
type FormatResponse struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// ConvertResponse carries a raw conversion result.
type ConvertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Converted float64 `json:"converted"`
}

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
