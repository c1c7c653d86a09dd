package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/commerce-service/internal/domain"
)

type PostgresOrderRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{Pool: pool}
}

func (r *PostgresOrderRepo) Put(ctx context.Context, o domain.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `INSERT INTO orders(order_id, kind, entity_id, payload, created_at) VALUES($1, $2, $3, $4, $5)
        ON CONFLICT (order_id) DO UPDATE SET payload = EXCLUDED.payload`,
		o.OrderID, string(o.Kind), o.EntityID(), raw, o.CreatedAt)
	return translate(err)
}

func (r *PostgresOrderRepo) Get(ctx context.Context, kind domain.OrderKind, id string) (domain.Order, error) {
	var raw []byte
	err := r.Pool.QueryRow(ctx, `SELECT payload FROM orders WHERE order_id = $1 AND kind = $2`, id, string(kind)).Scan(&raw)
	if err != nil {
		return domain.Order{}, translate(err)
	}
	return decodeOrder(kind, raw)
}

func (r *PostgresOrderRepo) List(ctx context.Context, kind domain.OrderKind) ([]domain.Order, error) {
	rows, err := r.Pool.Query(ctx, `SELECT payload FROM orders WHERE kind = $1 ORDER BY created_at, order_id`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Order{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		o, err := decodeOrder(kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// LoadAll обходит все заказы; битые записи пропускаются, не прерывая загрузку.
func (r *PostgresOrderRepo) LoadAll(ctx context.Context, fn func(o domain.Order) error) error {
	rows, err := r.Pool.Query(ctx, `SELECT kind, payload FROM orders`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var raw []byte
		if err := rows.Scan(&kind, &raw); err != nil {
			return err
		}
		o, err := decodeOrder(domain.OrderKind(kind), raw)
		if err != nil {
			continue
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	return rows.Err()
}

func decodeOrder(kind domain.OrderKind, raw []byte) (domain.Order, error) {
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return domain.Order{}, fmt.Errorf("decode order: %w", err)
	}
	o.Kind = kind
	return o, nil
}

var _ domain.OrderRepository = (*PostgresOrderRepo)(nil)

// translate переводит ошибки pgx в доменные.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
