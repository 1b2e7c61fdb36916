package request

type CreateTokenRequest struct {
	Customer CustomerPayload `json:"customer" validate:"required"`
	Payment  PaymentPayload  `json:"payment" validate:"required"`
}

type CustomerPayload struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
	AffiliateID string `json:"affiliateId"`
}

type PaymentPayload struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,len=3,uppercase"`
	OrderID     string  `json:"orderId"`
	Description string  `json:"description" validate:"max=500"`
}
