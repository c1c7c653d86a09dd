package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind различает заказы продажи (клиенту) и закупки (у поставщика).
type OrderKind string

const (
	KindSales    OrderKind = "sales"
	KindPurchase OrderKind = "purchase"
)

func (k OrderKind) Valid() bool {
	return k == KindSales || k == KindPurchase
}

// EntityType возвращает роль контрагента для данного вида заказа.
func (k OrderKind) EntityType() EntityType {
	if k == KindPurchase {
		return EntitySupplier
	}
	return EntityCustomer
}

// EntityField имя поля контрагента в JSON.
func (k OrderKind) EntityField() string {
	if k == KindPurchase {
		return "supplierId"
	}
	return "customerId"
}

type OrderStatus string

const StatusPending OrderStatus = "Pending"

// LineItem позиция заказа с зафиксированной ценой.
type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order доменная сущность заказа. Kind хранится отдельно от тела заказа.
type Order struct {
	OrderID    string          `json:"orderId"`
	Kind       OrderKind       `json:"-"`
	CustomerID string          `json:"customerId,omitempty"`
	SupplierID string          `json:"supplierId,omitempty"`
	Products   []LineItem      `json:"products"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	Notes      string          `json:"notes"`
}

func (o Order) EntityID() string {
	if o.Kind == KindPurchase {
		return o.SupplierID
	}
	return o.CustomerID
}

// RequestedLine строка заказа в том виде, в котором её прислал клиент.
// Price это цена по умолчанию, она проигрывает специальной цене.
type RequestedLine struct {
	ProductID string              `json:"productId"`
	Quantity  decimal.Decimal     `json:"quantity"`
	Price     decimal.NullDecimal `json:"price"`
}

func (l RequestedLine) Validate(i int) error {
	switch {
	case l.ProductID == "":
		return fmt.Errorf("%w: products[%d].productId is required", ErrValidation, i)
	case !l.Quantity.IsPositive():
		return fmt.Errorf("%w: products[%d].quantity must be positive", ErrValidation, i)
	case !l.Price.Valid:
		return fmt.Errorf("%w: products[%d].price is required", ErrValidation, i)
	case l.Price.Decimal.IsNegative():
		return fmt.Errorf("%w: products[%d].price must not be negative", ErrValidation, i)
	}
	return nil
}

// OrderRequest входные данные создания заказа. Kind задаётся маршрутом HTTP
// либо полем сообщения при асинхронном приёме.
type OrderRequest struct {
	Kind           OrderKind       `json:"kind,omitempty"`
	CustomerID     string          `json:"customerId,omitempty"`
	SupplierID     string          `json:"supplierId,omitempty"`
	Products       []RequestedLine `json:"products"`
	Notes          string          `json:"notes,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

func (r OrderRequest) EntityID() string {
	if r.Kind == KindPurchase {
		return r.SupplierID
	}
	return r.CustomerID
}

func (r OrderRequest) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown order kind %q", ErrValidation, r.Kind)
	}
	if r.EntityID() == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, r.Kind.EntityField())
	}
	if r.Kind == KindSales && r.SupplierID != "" {
		return fmt.Errorf("%w: supplierId is not allowed on sales orders", ErrValidation)
	}
	if r.Kind == KindPurchase && r.CustomerID != "" {
		return fmt.Errorf("%w: customerId is not allowed on purchase orders", ErrValidation)
	}
	// Пустой список допустим (заказ с нулевой суммой), отсутствующее поле нет.
	if r.Products == nil {
		return fmt.Errorf("%w: products is required", ErrValidation)
	}
	for i, l := range r.Products {
		if err := l.Validate(i); err != nil {
			return err
		}
	}
	return nil
}

// OrderCreated событие, публикуемое после сохранения заказа.
type OrderCreated struct {
	Kind  OrderKind `json:"kind"`
	Order Order     `json:"order"`
}
