package domain

import "time"

type TokenStatus string

const (
	StatusPending    TokenStatus = "pending"
	StatusProcessing TokenStatus = "processing"
	StatusSuccess    TokenStatus = "success"
	StatusFailed     TokenStatus = "failed"
	StatusCancelled  TokenStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are defined for s.
func (s TokenStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CustomerData is the customer snapshot captured at token creation.
type CustomerData struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	AffiliateID string `json:"affiliateId,omitempty"`
}

// PaymentData is the payment snapshot captured at token creation.
type PaymentData struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	OrderID     string  `json:"orderId,omitempty"`
	Description string  `json:"description,omitempty"`
}

// PaymentToken correlates one checkout attempt to its slot lease and its
// eventual payment outcome. CallbackPath is non-nil only while the token is
// non-terminal.
type PaymentToken struct {
	Token            string
	Status           TokenStatus
	CustomerData     CustomerData
	PaymentData      PaymentData
	CallbackPath     *string
	ProviderResponse *string
	ErrorMessage     *string
	TransactionID    *string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	UpdatedAt        time.Time
}

// TokenOutcome is a provider result mapped onto the token state machine.
type TokenOutcome struct {
	Status           TokenStatus // StatusSuccess or StatusFailed
	TransactionID    string
	ErrorMessage     string
	ProviderResponse string // raw provider payload, stored opaque
}

// TokenProjection is the polling view returned to checkout clients.
type TokenProjection struct {
	Status        TokenStatus
	ErrorMessage  *string
	TransactionID *string
}
