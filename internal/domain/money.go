package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Суммы и количества пишутся в JSON числами. Глобальный
// decimal.MarshalJSONWithoutQuotes не трогаем: на чтение decimal
// принимает и числа, и строки.

func number(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

func nullNumber(d decimal.NullDecimal) json.RawMessage {
	if !d.Valid {
		return json.RawMessage("null")
	}
	return number(d.Decimal)
}

func (l LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		Quantity json.RawMessage `json:"quantity"`
		Price    json.RawMessage `json:"price"`
		Subtotal json.RawMessage `json:"subtotal"`
	}{plain(l), number(l.Quantity), number(l.Price), number(l.Subtotal)})
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		TotalPrice json.RawMessage `json:"totalPrice"`
	}{plain(o), number(o.TotalPrice)})
}

func (l RequestedLine) MarshalJSON() ([]byte, error) {
	type plain RequestedLine
	return json.Marshal(struct {
		plain
		Quantity json.RawMessage `json:"quantity"`
		Price    json.RawMessage `json:"price"`
	}{plain(l), number(l.Quantity), nullNumber(l.Price)})
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price json.RawMessage `json:"price"`
	}{plain(p), number(p.Price)})
}

func (p SpecificPrice) MarshalJSON() ([]byte, error) {
	type plain SpecificPrice
	return json.Marshal(struct {
		plain
		Price json.RawMessage `json:"price"`
	}{plain(p), nullNumber(p.Price)})
}
