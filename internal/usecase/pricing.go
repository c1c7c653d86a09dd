package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/example/commerce-service/internal/domain"
)

const (
	defaultLookupTimeout     = 2 * time.Second
	defaultLookupConcurrency = 8
)

var tracer = otel.Tracer("github.com/example/commerce-service/internal/usecase")

// PriceResolver выбирает эффективную цену каждой позиции заказа.
// Специальная цена всегда побеждает цену, присланную клиентом.
type PriceResolver struct {
	Prices domain.PriceLookup
	// Timeout ограничивает один поиск цены; истечение считается ошибкой хранилища.
	Timeout time.Duration
	// Concurrency ограничивает число одновременных поисков в одном заказе.
	Concurrency int
}

// ResolveOverride возвращает специальную цену для пары (контрагент, товар), если она есть.
func (r PriceResolver) ResolveOverride(ctx context.Context, entityID, productID string) (decimal.Decimal, bool, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	price, found, err := r.Prices.FindPrice(ctx, entityID, productID)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("lookup specific price for %s/%s: %w", entityID, productID, err)
	}
	return price, found, nil
}

func (r PriceResolver) ResolveLine(ctx context.Context, entityID string, line domain.RequestedLine) (domain.LineItem, error) {
	ctx, span := tracer.Start(ctx, "ResolveLine")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", line.ProductID))

	price := line.Price.Decimal
	override, found, err := r.ResolveOverride(ctx, entityID, line.ProductID)
	if err != nil {
		span.RecordError(err)
		return domain.LineItem{}, err
	}
	if found {
		price = override
	}
	span.SetAttributes(attribute.Bool("price.override", found))

	return domain.LineItem{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		Price:     price,
		Subtotal:  price.Mul(line.Quantity),
	}, nil
}

// ResolveLines разрешает все позиции параллельно и дожидается всех.
// Порядок результата совпадает с порядком запроса; первая ошибка отменяет остальные.
func (r PriceResolver) ResolveLines(ctx context.Context, entityID string, lines []domain.RequestedLine) ([]domain.LineItem, decimal.Decimal, error) {
	items := make([]domain.LineItem, len(lines))

	limit := r.Concurrency
	if limit <= 0 {
		limit = defaultLookupConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, l := range lines {
		g.Go(func() error {
			item, err := r.ResolveLine(gctx, entityID, l)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Decimal{}, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return items, total, nil
}
