package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EntityType роль контрагента в специальной цене.
type EntityType string

const (
	EntityCustomer EntityType = "customer"
	EntitySupplier EntityType = "supplier"
)

func (t EntityType) Valid() bool {
	return t == EntityCustomer || t == EntitySupplier
}

// Entity общий контракт записей справочников. Методы на значениях, чтобы
// T удовлетворял Entity[T] без указателей.
type Entity[T any] interface {
	ID() string
	WithID(id string) T
	Validate() error
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Customer struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	CpfCnpj    string    `json:"cpfCnpj,omitempty"`
	BirthDate  string    `json:"birthDate,omitempty"`
	Address    string    `json:"address,omitempty"`
	Contacts   []Contact `json:"contacts"`
	Enabled    bool      `json:"enabled"`
	Notes      string    `json:"notes"`
	SalesLead  string    `json:"salesLead,omitempty"`
}

func (c Customer) ID() string { return c.CustomerID }

func (c Customer) WithID(id string) Customer {
	c.CustomerID = id
	if c.Contacts == nil {
		c.Contacts = []Contact{}
	}
	return c
}

func (c Customer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

type Supplier struct {
	SupplierID string    `json:"supplierId"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Address    string    `json:"address,omitempty"`
	Contacts   []Contact `json:"contacts"`
	HeadOffice string    `json:"headOffice,omitempty"`
	CpfCnpj    string    `json:"cpfCnpj,omitempty"`
	BirthDate  string    `json:"birthDate,omitempty"`
	Enabled    bool      `json:"enabled"`
	Notes      string    `json:"notes"`
}

func (s Supplier) ID() string { return s.SupplierID }

func (s Supplier) WithID(id string) Supplier {
	s.SupplierID = id
	if s.Contacts == nil {
		s.Contacts = []Contact{}
	}
	return s
}

func (s Supplier) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

type Product struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Enabled     bool            `json:"enabled"`
	Notes       string          `json:"notes"`
}

func (p Product) ID() string { return p.ProductID }

func (p Product) WithID(id string) Product {
	p.ProductID = id
	return p
}

func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// SpecificPrice согласованная цена товара для конкретного клиента или поставщика.
type SpecificPrice struct {
	SpecificPriceID string              `json:"specificPriceId"`
	EntityType      EntityType          `json:"entityType"`
	EntityID        string              `json:"entityId"`
	ProductID       string              `json:"productId"`
	Price           decimal.NullDecimal `json:"price"`
	Notes           string              `json:"notes"`
}

func (p SpecificPrice) ID() string { return p.SpecificPriceID }

func (p SpecificPrice) WithID(id string) SpecificPrice {
	p.SpecificPriceID = id
	return p
}

func (p SpecificPrice) Validate() error {
	switch {
	case !p.EntityType.Valid():
		return fmt.Errorf("%w: entityType must be %q or %q", ErrValidation, EntityCustomer, EntitySupplier)
	case p.EntityID == "":
		return fmt.Errorf("%w: entityId is required", ErrValidation)
	case p.ProductID == "":
		return fmt.Errorf("%w: productId is required", ErrValidation)
	case !p.Price.Valid:
		return fmt.Errorf("%w: price is required", ErrValidation)
	case p.Price.Decimal.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}
