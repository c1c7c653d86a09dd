package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/example/commerce-service/internal/domain"
)

type binding struct {
	orderID string
	expires time.Time
}

// Idempotency хранит ключи идемпотентности в памяти с TTL.
type Idempotency struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]binding
	now  func() time.Time
}

func NewIdempotency(ttl time.Duration) *Idempotency {
	return &Idempotency{ttl: ttl, keys: make(map[string]binding), now: time.Now}
}

func (s *Idempotency) Reserve(_ context.Context, key, orderID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if b, ok := s.keys[key]; ok && now.Before(b.expires) {
		return b.orderID, false, nil
	}
	s.keys[key] = binding{orderID: orderID, expires: now.Add(s.ttl)}
	return orderID, true, nil
}

var _ domain.IdempotencyStore = (*Idempotency)(nil)
