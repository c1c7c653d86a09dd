// Package memstore хранит данные в памяти процесса. Используется для
// локального запуска без Postgres и в тестах.
package memstore

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/commerce-service/internal/domain"
)

type record[T any] struct {
	v       T
	deleted bool
}

// Entities справочник с логическим удалением. Список отдаётся в порядке создания.
type Entities[T domain.Entity[T]] struct {
	mu    sync.RWMutex
	items map[string]*record[T]
	ids   []string
	// conflicts сообщает, что две активные записи не могут существовать одновременно.
	conflicts func(a, b T) bool
}

func NewEntities[T domain.Entity[T]]() *Entities[T] {
	return &Entities[T]{items: make(map[string]*record[T])}
}

func (s *Entities[T]) Create(_ context.Context, e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.ID()]; ok {
		return domain.ErrConflict
	}
	if s.conflictLocked(e) {
		return domain.ErrConflict
	}
	s.items[e.ID()] = &record[T]{v: e}
	s.ids = append(s.ids, e.ID())
	return nil
}

func (s *Entities[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok || r.deleted {
		var zero T
		return zero, domain.ErrNotFound
	}
	return r.v, nil
}

func (s *Entities[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.ids))
	for _, id := range s.ids {
		if r := s.items[id]; !r.deleted {
			out = append(out, r.v)
		}
	}
	return out, nil
}

func (s *Entities[T]) Update(_ context.Context, e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[e.ID()]
	if !ok || r.deleted {
		return domain.ErrNotFound
	}
	if s.conflictLocked(e) {
		return domain.ErrConflict
	}
	r.v = e
	return nil
}

func (s *Entities[T]) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok || r.deleted {
		return domain.ErrNotFound
	}
	r.deleted = true
	return nil
}

func (s *Entities[T]) conflictLocked(e T) bool {
	if s.conflicts == nil {
		return false
	}
	for _, id := range s.ids {
		r := s.items[id]
		if r.deleted || id == e.ID() {
			continue
		}
		if s.conflicts(r.v, e) {
			return true
		}
	}
	return false
}

// SpecificPrices специальные цены: не больше одной активной записи на пару (entityId, productId).
type SpecificPrices struct {
	*Entities[domain.SpecificPrice]
}

func NewSpecificPrices() *SpecificPrices {
	e := NewEntities[domain.SpecificPrice]()
	e.conflicts = func(a, b domain.SpecificPrice) bool {
		return a.EntityID == b.EntityID && a.ProductID == b.ProductID
	}
	return &SpecificPrices{Entities: e}
}

func (s *SpecificPrices) FindPrice(ctx context.Context, entityID, productID string) (decimal.Decimal, bool, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.ids {
		r := s.items[id]
		if r.deleted {
			continue
		}
		if r.v.EntityID == entityID && r.v.ProductID == productID {
			return r.v.Price.Decimal, true, nil
		}
	}
	return decimal.Decimal{}, false, nil
}

var (
	_ domain.EntityRepository[domain.Customer] = (*Entities[domain.Customer])(nil)
	_ domain.SpecificPriceRepository           = (*SpecificPrices)(nil)
)
