package domain

import "context"

type WebhookReconciler interface {
	// Verify authenticates a raw delivery before anything else trusts it.
	// Returns ErrInvalidSignature or ErrReplayDetected on rejection.
	Verify(timestamp string, body []byte, signature string) error

	// Process routes a verified event to its handler. Runs after the HTTP
	// boundary has already acknowledged receipt, so failures are logged
	// and never surfaced to the provider.
	Process(ctx context.Context, event ProviderEvent)

	// RecordRejected audits a delivery that failed verification.
	RecordRejected(ctx context.Context, event ProviderEvent, reason error)
}
