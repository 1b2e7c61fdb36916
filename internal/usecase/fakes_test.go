package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

// fakeSlotRepo mirrors the store's conditional-update semantics in memory so
// the pool manager can be exercised without Postgres.
type fakeSlotRepo struct {
	mu       sync.Mutex
	slots    map[string]*domain.CallbackSlot
	failWith error
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]*domain.CallbackSlot)}
}

func (r *fakeSlotRepo) UpsertSlots(ctx context.Context, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, path := range paths {
		if _, ok := r.slots[path]; ok {
			continue
		}
		r.slots[path] = &domain.CallbackSlot{Path: path, CreatedAt: time.Now()}
	}
	return nil
}

func (r *fakeSlotRepo) AcquireSlot(ctx context.Context, token string, leaseTimeout time.Duration) (*domain.CallbackSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}

	staleBefore := time.Now().Add(-leaseTimeout)
	var candidates []*domain.CallbackSlot
	for _, slot := range r.slots {
		if !slot.Locked || (slot.LockedAt != nil && slot.LockedAt.Before(staleBefore)) {
			candidates = append(candidates, slot)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrPoolExhausted
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.LastUsedAt == nil:
			return true
		case b.LastUsedAt == nil:
			return false
		default:
			return a.LastUsedAt.Before(*b.LastUsedAt)
		}
	})

	won := candidates[0]
	now := time.Now()
	won.Locked = true
	won.LockedBy = &token
	won.LockedAt = &now
	won.LastUsedAt = &now
	won.UsageCount++

	copied := *won
	return &copied, nil
}

func (r *fakeSlotRepo) ReleaseSlot(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, slot := range r.slots {
		if slot.LockedBy != nil && *slot.LockedBy == token {
			slot.Locked = false
			slot.LockedBy = nil
			slot.LockedAt = nil
		}
	}
	return nil
}

func (r *fakeSlotRepo) ReleaseExpiredSlots(ctx context.Context, leaseTimeout time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	staleBefore := time.Now().Add(-leaseTimeout)
	var reclaimed int64
	for _, slot := range r.slots {
		if slot.Locked && slot.LockedAt != nil && slot.LockedAt.Before(staleBefore) {
			slot.Locked = false
			slot.LockedBy = nil
			slot.LockedAt = nil
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (r *fakeSlotRepo) ListSlots(ctx context.Context) ([]*domain.CallbackSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	paths := make([]string, 0, len(r.slots))
	for path := range r.slots {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	slots := make([]*domain.CallbackSlot, 0, len(paths))
	for _, path := range paths {
		copied := *r.slots[path]
		slots = append(slots, &copied)
	}
	return slots, nil
}

// backdateLease ages a lease so reclamation paths can be exercised without
// sleeping through a real timeout.
func (r *fakeSlotRepo) backdateLease(path string, age time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slots[path]
	past := time.Now().Add(-age)
	slot.LockedAt = &past
	slot.LastUsedAt = &past
}

type fakeTokenRepo struct {
	mu       sync.Mutex
	tokens   map[string]*domain.PaymentToken
	failWith error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.PaymentToken)}
}

func (r *fakeTokenRepo) CreateToken(ctx context.Context, token *domain.PaymentToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeTokenRepo) GetToken(ctx context.Context, token string) (*domain.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTokenRepo) GetTokenByPath(ctx context.Context, path string) (*domain.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tokens {
		if stored.CallbackPath != nil && *stored.CallbackPath == path && !stored.Status.IsTerminal() {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (r *fakeTokenRepo) ApplyOutcome(ctx context.Context, token string, outcome domain.TokenOutcome) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	stored, ok := r.tokens[token]
	if !ok || stored.Status.IsTerminal() {
		return false, nil
	}
	stored.Status = outcome.Status
	stored.CallbackPath = nil
	if outcome.TransactionID != "" {
		txID := outcome.TransactionID
		stored.TransactionID = &txID
	}
	if outcome.ErrorMessage != "" {
		msg := outcome.ErrorMessage
		stored.ErrorMessage = &msg
	}
	if outcome.ProviderResponse != "" {
		raw := outcome.ProviderResponse
		stored.ProviderResponse = &raw
	}
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTokenRepo) CancelPending(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok || stored.Status != domain.StatusPending {
		return false, nil
	}
	stored.Status = domain.StatusCancelled
	stored.CallbackPath = nil
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTokenRepo) FindExpiredActive(ctx context.Context) ([]*domain.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []*domain.PaymentToken
	now := time.Now()
	for _, stored := range r.tokens {
		if !stored.Status.IsTerminal() && stored.ExpiresAt.Before(now) {
			copied := *stored
			expired = append(expired, &copied)
		}
	}
	return expired, nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	now := time.Now()
	for key, stored := range r.tokens {
		if stored.Status.IsTerminal() && stored.ExpiresAt.Before(now) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []domain.PaymentNotification
}

func (n *fakeNotifier) Notify(notification domain.PaymentNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifications)
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (p *fakePublisher) Publish(topic string, msgs ...domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msgs...)
	return nil
}
