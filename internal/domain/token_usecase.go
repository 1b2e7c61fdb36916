package domain

import "context"

// CreatedToken is the result of a successful token creation.
type CreatedToken struct {
	Token        string
	CallbackPath string
	FormURL      string
	ExpiresAt    string
}

type TokenUsecase interface {
	CreateToken(ctx context.Context, customer CustomerData, payment PaymentData) (*CreatedToken, error)
	GetStatus(ctx context.Context, token string) (*TokenProjection, error)
	CancelToken(ctx context.Context, token string) (*TokenProjection, error)

	// ApplyOutcome maps a provider result into a terminal status and
	// releases the bound slot exactly once. Idempotent for terminal tokens.
	ApplyOutcome(ctx context.Context, token string, outcome TokenOutcome) error

	// ResolveByPath finds the active token bound to a callback path.
	ResolveByPath(ctx context.Context, path string) (*PaymentToken, error)

	// ExpireStale fails and reclaims tokens whose TTL lapsed without a
	// terminal outcome, then drops expired rows. Returns counts.
	ExpireStale(ctx context.Context) (failed int64, deleted int64, err error)
}
