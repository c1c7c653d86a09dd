package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/example/commerce-service/internal/domain"
)

type orderKey struct {
	kind domain.OrderKind
	id   string
}

type Orders struct {
	mu    sync.RWMutex
	store map[orderKey]domain.Order
	keys  []orderKey
}

func NewOrders() *Orders {
	return &Orders{store: make(map[orderKey]domain.Order)}
}

func (s *Orders) Put(_ context.Context, o domain.Order) error {
	o.Products = slices.Clone(o.Products)
	k := orderKey{kind: o.Kind, id: o.OrderID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.store[k] = o
	return nil
}

func (s *Orders) Get(_ context.Context, kind domain.OrderKind, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.store[orderKey{kind: kind, id: id}]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	o.Products = slices.Clone(o.Products)
	return o, nil
}

func (s *Orders) List(_ context.Context, kind domain.OrderKind) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Order{}
	for _, k := range s.keys {
		if k.kind == kind {
			out = append(out, s.store[k])
		}
	}
	return out, nil
}

func (s *Orders) LoadAll(_ context.Context, fn func(o domain.Order) error) error {
	s.mu.RLock()
	all := make([]domain.Order, 0, len(s.keys))
	for _, k := range s.keys {
		all = append(all, s.store[k])
	}
	s.mu.RUnlock()
	for _, o := range all {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

var _ domain.OrderRepository = (*Orders)(nil)
