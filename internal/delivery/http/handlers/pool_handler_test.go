package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

type stubPoolManager struct {
	status *domain.PoolStatus
}

func (s *stubPoolManager) Initialize(ctx context.Context) error { return nil }
func (s *stubPoolManager) Acquire(ctx context.Context, token string) (*domain.CallbackSlot, error) {
	return nil, domain.ErrPoolExhausted
}
func (s *stubPoolManager) Release(ctx context.Context, token string) error   { return nil }
func (s *stubPoolManager) ReleaseExpired(ctx context.Context) (int64, error) { return 0, nil }
func (s *stubPoolManager) Status(ctx context.Context) (*domain.PoolStatus, error) {
	return s.status, nil
}

func TestPoolStatusEndpoint(t *testing.T) {
	lockedBy := "tok_1"
	lockedAt := time.Now()
	stub := &stubPoolManager{status: &domain.PoolStatus{
		Total:     2,
		Available: 1,
		Locked:    1,
		Slots: []*domain.CallbackSlot{
			{Path: "/payment-callback/a", Locked: true, LockedBy: &lockedBy, LockedAt: &lockedAt, UsageCount: 3},
			{Path: "/payment-callback/b", UsageCount: 1},
		},
	}}

	app := fiber.New()
	app.Get("/api/v1/pool/status", NewPoolHandler(stub).Status)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/pool/status", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Total     int `json:"total"`
		Available int `json:"available"`
		Locked    int `json:"locked"`
		Slots     []struct {
			Path   string `json:"path"`
			Locked bool   `json:"locked"`
		} `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 2 || payload.Available != 1 || payload.Locked != 1 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
	if len(payload.Slots) != 2 || !payload.Slots[0].Locked || payload.Slots[1].Locked {
		t.Fatalf("unexpected slots: %+v", payload.Slots)
	}
}
