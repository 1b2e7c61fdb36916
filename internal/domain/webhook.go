package domain

// Provider webhook event types. Unrecognized types are acknowledged but not
// processed.
const (
	EventPaymentSucceeded       = "payment.succeeded"
	EventPaymentFailed          = "payment.failed"
	EventPaymentRefunded        = "payment.refunded"
	EventPaymentPartiallyRefund = "payment.partially_refunded"
	EventPaymentMethodAttached  = "payment_method.attached"
	EventPaymentMethodDetached  = "payment_method.detached"
	EventDisputeCreated         = "dispute.created"
	EventDisputeUpdated         = "dispute.updated"
	EventDisputeResolved        = "dispute.resolved"
)

// ProviderEvent is the parsed body of a signed provider webhook.
type ProviderEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Timestamp int64             `json:"timestamp"`
	Data      ProviderEventData `json:"data"`
}

type ProviderEventData struct {
	Token         string  `json:"token"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	DisputeID     string  `json:"disputeId,omitempty"`
	DisputeStatus string  `json:"disputeStatus,omitempty"`
}
