package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/example/commerce-service/internal/domain"
)

// SpecificPriceRepo дублирует entity_id/product_id в колонки: по ним
// уникальный частичный индекс и поиск цены.
type SpecificPriceRepo struct {
	*DocumentRepo[domain.SpecificPrice]
}

func NewSpecificPriceRepo(pool *pgxpool.Pool) *SpecificPriceRepo {
	return &SpecificPriceRepo{DocumentRepo: NewDocumentRepo[domain.SpecificPrice](pool, TableSpecificPrices)}
}

func (r *SpecificPriceRepo) Create(ctx context.Context, p domain.SpecificPrice) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `INSERT INTO specific_prices(id, entity_type, entity_id, product_id, payload)
        VALUES($1, $2, $3, $4, $5)`,
		p.SpecificPriceID, string(p.EntityType), p.EntityID, p.ProductID, raw)
	return translate(err)
}

func (r *SpecificPriceRepo) Update(ctx context.Context, p domain.SpecificPrice) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE specific_prices
        SET entity_type = $2, entity_id = $3, product_id = $4, payload = $5, updated_at = now()
        WHERE id = $1 AND NOT deleted`,
		p.SpecificPriceID, string(p.EntityType), p.EntityID, p.ProductID, raw)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindPrice при унаследованных дублях берёт самую раннюю запись.
func (r *SpecificPriceRepo) FindPrice(ctx context.Context, entityID, productID string) (decimal.Decimal, bool, error) {
	var raw []byte
	err := r.Pool.QueryRow(ctx, `SELECT payload FROM specific_prices
        WHERE entity_id = $1 AND product_id = $2 AND NOT deleted
        ORDER BY created_at, id LIMIT 1`, entityID, productID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	var p domain.SpecificPrice
	if err := json.Unmarshal(raw, &p); err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("decode specific price: %w", err)
	}
	return p.Price.Decimal, true, nil
}

var _ domain.SpecificPriceRepository = (*SpecificPriceRepo)(nil)
