package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

type tokenTestEnv struct {
	tokens    *DefaultTokenUsecase
	pool      *DefaultPoolManager
	tokenRepo *fakeTokenRepo
	slotRepo  *fakeSlotRepo
	notifier  *fakeNotifier
	publisher *fakePublisher
}

func newTokenTestEnv(t *testing.T, paths []string) *tokenTestEnv {
	t.Helper()
	slotRepo := newFakeSlotRepo()
	pool := NewDefaultPoolManager(slotRepo, paths, 10*time.Minute, nil)
	if err := pool.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	tokenRepo := newFakeTokenRepo()
	merchantNotifier := &fakeNotifier{}
	pub := &fakePublisher{}
	tokens := NewDefaultTokenUsecase(tokenRepo, pool, pub, merchantNotifier, TokenUsecaseConfig{
		TokenTTL:    time.Hour,
		FormBaseURL: "https://forms.example.com",
		KafkaTopic:  "payment-events",
	}, nil)

	return &tokenTestEnv{
		tokens:    tokens,
		pool:      pool,
		tokenRepo: tokenRepo,
		slotRepo:  slotRepo,
		notifier:  merchantNotifier,
		publisher: pub,
	}
}

var (
	testCustomer = domain.CustomerData{Name: "Jordan Doe", Email: "jordan@example.com"}
	testPayment  = domain.PaymentData{Amount: 49.99, Currency: "USD", OrderID: "order-1"}
)

func TestCreateTokenBindsSlot(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a"})
	ctx := context.Background()

	created, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if created.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if created.CallbackPath != "/payment-callback/a" {
		t.Fatalf("unexpected callback path %s", created.CallbackPath)
	}
	if !strings.Contains(created.FormURL, created.CallbackPath) {
		t.Fatalf("form URL %s does not embed the callback path", created.FormURL)
	}

	stored, err := env.tokenRepo.GetToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", stored.Status)
	}
	if stored.CallbackPath == nil || *stored.CallbackPath != created.CallbackPath {
		t.Fatalf("stored callback path mismatch: %v", stored.CallbackPath)
	}
}

func TestCreateTokenPoolExhausted(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a", "/payment-callback/b", "/payment-callback/c"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.tokens.CreateToken(ctx, testCustomer, testPayment); err != nil {
			t.Fatalf("CreateToken #%d: %v", i+1, err)
		}
	}

	_, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != domain.ErrPoolExhausted {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	// No record may exist for the rejected attempt.
	if got := len(env.tokenRepo.tokens); got != 3 {
		t.Fatalf("expected 3 persisted tokens, got %d", got)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a"})
	ctx := context.Background()

	created, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	projection, err := env.tokens.CancelToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("CancelToken: %v", err)
	}
	if projection.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", projection.Status)
	}

	status, err := env.pool.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Available != 1 {
		t.Fatalf("expected the slot back in the pool, got %d available", status.Available)
	}
}

func TestCancelNonPendingReturnsCurrentStatus(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a"})
	ctx := context.Background()

	created, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	err = env.tokens.ApplyOutcome(ctx, created.Token, domain.TokenOutcome{
		Status:        domain.StatusSuccess,
		TransactionID: "PN-1",
	})
	if err != nil {
		t.Fatalf("ApplyOutcome: %v", err)
	}

	projection, err := env.tokens.CancelToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("CancelToken on success: %v", err)
	}
	if projection.Status != domain.StatusSuccess {
		t.Fatalf("expected success to stick, got %s", projection.Status)
	}
}

func TestApplyOutcomeIdempotent(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a"})
	ctx := context.Background()

	created, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	outcome := domain.TokenOutcome{Status: domain.StatusSuccess, TransactionID: "PN-1"}
	if err := env.tokens.ApplyOutcome(ctx, created.Token, outcome); err != nil {
		t.Fatalf("first ApplyOutcome: %v", err)
	}

	// The slot is free now; hand it to another token so a buggy second
	// release would be visible.
	second, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken after release: %v", err)
	}

	if err := env.tokens.ApplyOutcome(ctx, created.Token, outcome); err != nil {
		t.Fatalf("duplicate ApplyOutcome: %v", err)
	}

	stored, err := env.tokenRepo.GetToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if stored.Status != domain.StatusSuccess {
		t.Fatalf("expected success, got %s", stored.Status)
	}
	if got := env.notifier.count(); got != 1 {
		t.Fatalf("expected exactly 1 merchant notification, got %d", got)
	}

	status, err := env.pool.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Locked != 1 {
		t.Fatalf("second token's lease was disturbed: %d locked", status.Locked)
	}
	if got := status.Slots[0].LockedBy; got == nil || *got != second.Token {
		t.Fatalf("expected slot held by %s, got %v", second.Token, got)
	}
}

func TestGetStatusNotFoundForExpired(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a"})
	ctx := context.Background()

	created, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	env.tokenRepo.tokens[created.Token].ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := env.tokens.GetStatus(ctx, created.Token); err != domain.ErrTokenNotFound {
		t.Fatalf("expected ErrTokenNotFound for expired token, got %v", err)
	}
	if _, err := env.tokens.GetStatus(ctx, "no-such-token"); err != domain.ErrTokenNotFound {
		t.Fatalf("expected ErrTokenNotFound for unknown token, got %v", err)
	}
}

func TestExpireStaleFailsAndReclaims(t *testing.T) {
	env := newTokenTestEnv(t, []string{"/payment-callback/a"})
	ctx := context.Background()

	created, err := env.tokens.CreateToken(ctx, testCustomer, testPayment)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	env.tokenRepo.tokens[created.Token].ExpiresAt = time.Now().Add(-time.Minute)

	failed, deleted, err := env.tokens.ExpireStale(ctx)
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed token, got %d", failed)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted token, got %d", deleted)
	}

	status, err := env.pool.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Available != 1 {
		t.Fatalf("expected the slot reclaimed, got %d available", status.Available)
	}
}
