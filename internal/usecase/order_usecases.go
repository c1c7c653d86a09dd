package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/example/commerce-service/internal/domain"
)

// CreateOrder разрешает цены всех позиций, считает итог и сохраняет заказ.
// Заказ пишется только после успешного разрешения всех позиций.
type CreateOrder struct {
	Resolver PriceResolver
	Repo     domain.OrderRepository
	// Cache, Events и Idem необязательны.
	Cache  domain.OrderCache
	Events domain.OrderEventPublisher
	Idem   domain.IdempotencyStore
	Log    *slog.Logger

	// ReplayWait сколько повтор с занятым ключом ждёт заказ первого запроса,
	// прежде чем разрешать цены самому под тем же id.
	ReplayWait time.Duration

	NewID func() string
	Now   func() time.Time
}

const (
	defaultReplayWait = time.Second
	replayPoll        = 25 * time.Millisecond
)

func (uc CreateOrder) Execute(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "CreateOrder")
	defer span.End()

	if err := req.Validate(); err != nil {
		return domain.Order{}, err
	}
	span.SetAttributes(
		attribute.String("order.kind", string(req.Kind)),
		attribute.Int("order.lines", len(req.Products)),
	)

	orderID := uc.newID()
	if req.IdempotencyKey != "" && uc.Idem != nil {
		key := fmt.Sprintf("%s:%s:%s", req.Kind, req.EntityID(), req.IdempotencyKey)
		boundID, fresh, err := uc.Idem.Reserve(ctx, key, orderID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !fresh {
			orderID = boundID
			existing, err := uc.awaitBound(ctx, req.Kind, orderID)
			if err == nil {
				uc.logger().Info("order replayed", "order_id", orderID, "kind", req.Kind)
				return existing, nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return domain.Order{}, fmt.Errorf("load replayed order: %w", err)
			}
		}
	}

	items, total, err := uc.Resolver.ResolveLines(ctx, req.EntityID(), req.Products)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	o := domain.Order{
		OrderID:    orderID,
		Kind:       req.Kind,
		Products:   items,
		TotalPrice: total,
		Status:     domain.StatusPending,
		CreatedAt:  uc.now(),
		Notes:      req.Notes,
	}
	if req.Kind == domain.KindPurchase {
		o.SupplierID = req.SupplierID
	} else {
		o.CustomerID = req.CustomerID
	}

	if err := uc.Repo.Put(ctx, o); err != nil {
		span.RecordError(err)
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}
	if uc.Cache != nil {
		uc.Cache.Set(o)
	}
	if uc.Events != nil {
		// заказ уже сохранён, сбой публикации только логируем
		if err := uc.Events.PublishOrderCreated(ctx, o); err != nil {
			uc.logger().Error("publish order created", "order_id", o.OrderID, "err", err)
		}
	}
	uc.logger().Info("order created", "order_id", o.OrderID, "kind", o.Kind, "total", o.TotalPrice.String())
	return o, nil
}

// awaitBound ждёт, пока запрос-владелец ключа запишет заказ. ErrNotFound по
// истечении ReplayWait означает, что владелец упал или ещё не успел.
func (uc CreateOrder) awaitBound(ctx context.Context, kind domain.OrderKind, id string) (domain.Order, error) {
	wait := uc.ReplayWait
	if wait <= 0 {
		wait = defaultReplayWait
	}
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(replayPoll)
	defer tick.Stop()

	for {
		o, err := uc.Repo.Get(ctx, kind, id)
		if !errors.Is(err, domain.ErrNotFound) {
			return o, err
		}
		select {
		case <-ctx.Done():
			return domain.Order{}, ctx.Err()
		case <-deadline.C:
			return domain.Order{}, domain.ErrNotFound
		case <-tick.C:
		}
	}
}

func (uc CreateOrder) newID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return uuid.NewString()
}

func (uc CreateOrder) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc CreateOrder) logger() *slog.Logger {
	if uc.Log != nil {
		return uc.Log
	}
	return slog.Default()
}

// GetOrderByID сначала смотрит в кэш, затем в репозиторий.
type GetOrderByID struct {
	Cache domain.OrderCache
	Repo  domain.OrderRepository
}

func (uc GetOrderByID) Execute(ctx context.Context, kind domain.OrderKind, id string) (domain.Order, error) {
	if uc.Cache != nil {
		if o, ok := uc.Cache.Get(kind, id); ok {
			return o, nil
		}
	}
	if uc.Repo == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	o, err := uc.Repo.Get(ctx, kind, id)
	if err != nil {
		return domain.Order{}, err
	}
	if uc.Cache != nil {
		uc.Cache.Set(o)
	}
	return o, nil
}

// ListOrders читает все заказы вида из репозитория, минуя кэш.
type ListOrders struct {
	Repo domain.OrderRepository
}

func (uc ListOrders) Execute(ctx context.Context, kind domain.OrderKind) ([]domain.Order, error) {
	return uc.Repo.List(ctx, kind)
}

// LoadCache загрузить все заказы из репозитория в кэш при старте.
type LoadCache struct {
	Repo  domain.OrderRepository
	Cache domain.OrderCache
}

func (uc LoadCache) Execute(ctx context.Context) (int, error) {
	n := 0
	err := uc.Repo.LoadAll(ctx, func(o domain.Order) error {
		uc.Cache.Set(o)
		n++
		return nil
	})
	return n, err
}

// ProcessIncomingOrder создаёт заказ из сообщения очереди.
// Битые и невалидные сообщения подтверждаются (nil), чтобы не крутиться в переотправке;
// ошибки хранилища возвращаются, и сообщение будет доставлено повторно.
type ProcessIncomingOrder struct {
	Create CreateOrder
	Log    *slog.Logger
}

func (uc ProcessIncomingOrder) Execute(ctx context.Context, raw []byte) error {
	var req domain.OrderRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		uc.Log.Warn("drop malformed order message", "err", err)
		return nil
	}
	o, err := uc.Create.Execute(ctx, req)
	if errors.Is(err, domain.ErrValidation) {
		uc.Log.Warn("drop invalid order message", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	uc.Log.Info("processed order message", "order_id", o.OrderID, "kind", o.Kind)
	return nil
}
