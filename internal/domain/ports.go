package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderRepository порт для операций персистентности заказов.
type OrderRepository interface {
	// Put сохраняет заказ целиком по OrderID; повтор с тем же содержимым безопасен.
	Put(ctx context.Context, o Order) error
	Get(ctx context.Context, kind OrderKind, id string) (Order, error)
	List(ctx context.Context, kind OrderKind) ([]Order, error)
	LoadAll(ctx context.Context, fn func(o Order) error) error
}

// OrderCache порт быстрого доступа к заказам (кэш).
type OrderCache interface {
	Get(kind OrderKind, id string) (Order, bool)
	Set(o Order)
}

// PriceLookup ищет специальную цену для пары (контрагент, товар).
// Отсутствие цены не ошибка: found == false.
type PriceLookup interface {
	FindPrice(ctx context.Context, entityID, productID string) (price decimal.Decimal, found bool, err error)
}

// EntityRepository CRUD с логическим удалением для справочников.
type EntityRepository[T any] interface {
	Create(ctx context.Context, e T) error
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, e T) error
	SoftDelete(ctx context.Context, id string) error
}

type SpecificPriceRepository interface {
	EntityRepository[SpecificPrice]
	PriceLookup
}

// IdempotencyStore связывает ключ идемпотентности с идентификатором заказа.
// Reserve возвращает уже привязанный id и fresh == false, если ключ занят.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key, orderID string) (boundID string, fresh bool, err error)
}

// OrderEventPublisher публикует события о созданных заказах.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, o Order) error
}

// MessageSubscriber порт подписчика на входящие сообщения заказов.
type MessageSubscriber interface {
	// Subscribe регистрирует обработчик; ack/повторные доставки реализует адаптер.
	Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error
}
