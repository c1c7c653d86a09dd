package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/example/commerce-service/internal/adapter/cache"
	"github.com/example/commerce-service/internal/adapter/httpapi"
	"github.com/example/commerce-service/internal/adapter/idempotency"
	"github.com/example/commerce-service/internal/adapter/kafkabus"
	"github.com/example/commerce-service/internal/adapter/memstore"
	"github.com/example/commerce-service/internal/adapter/natsstan"
	"github.com/example/commerce-service/internal/adapter/repo"
	"github.com/example/commerce-service/internal/config"
	"github.com/example/commerce-service/internal/domain"
	"github.com/example/commerce-service/internal/usecase"
)

// App собранный сервис: HTTP-обработчик и сценарий приёма заказов из очереди.
type App struct {
	Handler http.Handler
	Intake  usecase.ProcessIncomingOrder

	log     *slog.Logger
	closers []func()
}

type stores struct {
	orders         domain.OrderRepository
	customers      domain.EntityRepository[domain.Customer]
	suppliers      domain.EntityRepository[domain.Supplier]
	products       domain.EntityRepository[domain.Product]
	specificPrices domain.SpecificPriceRepository
}

func NewApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	orderCache := cache.NewMemoryOrderCache()
	n, err := usecase.LoadCache{Repo: st.orders, Cache: orderCache}.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	log.Info("order cache warmed", "orders", n)

	idem, err := a.openIdempotency(ctx, cfg)
	if err != nil {
		return nil, err
	}
	events, err := a.openEvents(cfg)
	if err != nil {
		return nil, err
	}

	create := usecase.CreateOrder{
		Resolver: usecase.PriceResolver{
			Prices:      st.specificPrices,
			Timeout:     cfg.PriceLookupTimeout,
			Concurrency: cfg.LookupConcurrency,
		},
		Repo:   st.orders,
		Cache:  orderCache,
		Events: events,
		Idem:   idem,
		Log:    log,
	}
	a.Intake = usecase.ProcessIncomingOrder{Create: create, Log: log}
	a.Handler = httpapi.NewServer(httpapi.Options{
		Log:            log,
		CreateOrder:    create,
		GetOrder:       usecase.GetOrderByID{Cache: orderCache, Repo: st.orders},
		ListOrders:     usecase.ListOrders{Repo: st.orders},
		Customers:      usecase.ManageEntities[domain.Customer]{Repo: st.customers},
		Suppliers:      usecase.ManageEntities[domain.Supplier]{Repo: st.suppliers},
		Products:       usecase.ManageEntities[domain.Product]{Repo: st.products},
		SpecificPrices: usecase.ManageEntities[domain.SpecificPrice]{Repo: st.specificPrices},
		AuthTokens:     cfg.AuthTokens,
	})
	ok = true
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		a.log.Warn("using in-memory store, data is lost on restart")
		return stores{
			orders:         memstore.NewOrders(),
			customers:      memstore.NewEntities[domain.Customer](),
			suppliers:      memstore.NewEntities[domain.Supplier](),
			products:       memstore.NewEntities[domain.Product](),
			specificPrices: memstore.NewSpecificPrices(),
		}, nil
	}

	if cfg.AutoMigrate {
		if err := repo.Migrate(cfg.DatabaseURL); err != nil {
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pool.Ping(ctx); err != nil {
		return stores{}, fmt.Errorf("db ping: %w", err)
	}
	return stores{
		orders:         repo.NewPostgresOrderRepo(pool),
		customers:      repo.NewDocumentRepo[domain.Customer](pool, repo.TableCustomers),
		suppliers:      repo.NewDocumentRepo[domain.Supplier](pool, repo.TableSuppliers),
		products:       repo.NewDocumentRepo[domain.Product](pool, repo.TableProducts),
		specificPrices: repo.NewSpecificPriceRepo(pool),
	}, nil
}

func (a *App) openIdempotency(ctx context.Context, cfg config.Config) (domain.IdempotencyStore, error) {
	if cfg.RedisAddr == "" {
		return memstore.NewIdempotency(cfg.IdempotencyTTL), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL), nil
}

func (a *App) openEvents(cfg config.Config) (domain.OrderEventPublisher, error) {
	switch cfg.EventsBackend {
	case config.EventsStan:
		sc, err := natsstan.Connect(cfg.Stan.ClusterID, cfg.Stan.ClientID+"-pub", cfg.Stan.URL)
		if err != nil {
			return nil, fmt.Errorf("stan connect: %w", err)
		}
		p := &natsstan.Publisher{Conn: sc, Subject: cfg.Stan.EventsSubject}
		a.closers = append(a.closers, func() { _ = p.Close() })
		return p, nil
	case config.EventsKafka:
		w := kafkabus.NewWriter(cfg.KafkaBrokers)
		a.closers = append(a.closers, func() { _ = w.Close() })
		return &kafkabus.Publisher{Producer: w, Topic: cfg.KafkaTopic}, nil
	}
	return nil, nil
}

// Close освобождает ресурсы в обратном порядке открытия.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
