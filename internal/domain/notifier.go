package domain

// PaymentNotification is delivered fire-and-forget to the merchant callback
// on terminal and dispute transitions. Delivery failures are logged, never
// retried here.
type PaymentNotification struct {
	Token         string  `json:"token"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	OrderID       string  `json:"order_id,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	EventType     string  `json:"event_type"`
}

type PaymentNotifier interface {
	Notify(notification PaymentNotification)
}
