package publisher

type PaymentEvent struct {
	EventID       string  `json:"event_id"`
	Token         string  `json:"token"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	EventType     string  `json:"event_type"`
}
