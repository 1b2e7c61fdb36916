package domain

import "context"

type TokenRepository interface {
	CreateToken(ctx context.Context, token *PaymentToken) error
	GetToken(ctx context.Context, token string) (*PaymentToken, error)

	// GetTokenByPath resolves the non-terminal token currently bound to a
	// callback path.
	GetTokenByPath(ctx context.Context, path string) (*PaymentToken, error)

	// ApplyOutcome performs the terminal transition as a conditional update
	// guarded on a non-terminal current status. It reports whether this
	// call won the transition; a false result with nil error means the
	// token was already terminal.
	ApplyOutcome(ctx context.Context, token string, outcome TokenOutcome) (bool, error)

	// CancelPending moves a pending token to cancelled. Reports whether
	// the transition happened.
	CancelPending(ctx context.Context, token string) (bool, error)

	// FindExpiredActive returns non-terminal tokens whose TTL lapsed.
	FindExpiredActive(ctx context.Context) ([]*PaymentToken, error)

	// DeleteExpired removes tokens past their TTL and returns the count.
	DeleteExpired(ctx context.Context) (int64, error)
}
