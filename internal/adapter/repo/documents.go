package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/commerce-service/internal/domain"
)

// Таблицы справочников: id, payload jsonb, deleted, created_at, updated_at.
const (
	TableCustomers      = "customers"
	TableSuppliers      = "suppliers"
	TableProducts       = "products"
	TableSpecificPrices = "specific_prices"
)

// DocumentRepo хранит запись справочника целиком в jsonb.
// Table задаётся только константами пакета.
type DocumentRepo[T domain.Entity[T]] struct {
	Pool  *pgxpool.Pool
	Table string
}

func NewDocumentRepo[T domain.Entity[T]](pool *pgxpool.Pool, table string) *DocumentRepo[T] {
	return &DocumentRepo[T]{Pool: pool, Table: table}
}

func (r *DocumentRepo[T]) Create(ctx context.Context, e T) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s(id, payload) VALUES($1, $2)`, r.Table), e.ID(), raw)
	return translate(err)
}

func (r *DocumentRepo[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	var raw []byte
	err := r.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1 AND NOT deleted`, r.Table), id).Scan(&raw)
	if err != nil {
		return zero, translate(err)
	}
	var e T
	if err := json.Unmarshal(raw, &e); err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", r.Table, id, err)
	}
	return e, nil
}

func (r *DocumentRepo[T]) List(ctx context.Context) ([]T, error) {
	rows, err := r.Pool.Query(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE NOT deleted ORDER BY created_at, id`, r.Table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var e T
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.Table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *DocumentRepo[T]) Update(ctx context.Context, e T) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	tag, err := r.Pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET payload = $2, updated_at = now() WHERE id = $1 AND NOT deleted`, r.Table), e.ID(), raw)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo[T]) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET deleted = true, updated_at = now() WHERE id = $1 AND NOT deleted`, r.Table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.EntityRepository[domain.Product] = (*DocumentRepo[domain.Product])(nil)
