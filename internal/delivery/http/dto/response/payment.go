package response

import "time"

type CreateTokenResponse struct {
	Token        string `json:"token"`
	CallbackPath string `json:"callbackPath"`
	FormURL      string `json:"formUrl"`
	ExpiresAt    string `json:"expiresAt"`
}

type TokenStatusResponse struct {
	Status        string  `json:"status"`
	ErrorMessage  *string `json:"errorMessage,omitempty"`
	TransactionID *string `json:"transactionId,omitempty"`
}

type PoolSlotResponse struct {
	Path       string     `json:"path"`
	Locked     bool       `json:"locked"`
	LockedBy   *string    `json:"lockedBy,omitempty"`
	LockedAt   *time.Time `json:"lockedAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	UsageCount int64      `json:"usageCount"`
}

type PoolStatusResponse struct {
	Total     int                `json:"total"`
	Available int                `json:"available"`
	Locked    int                `json:"locked"`
	Slots     []PoolSlotResponse `json:"slots"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
