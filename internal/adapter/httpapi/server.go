package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/commerce-service/internal/domain"
	"github.com/example/commerce-service/internal/usecase"
)

// Options зависимости HTTP-адаптера.
type Options struct {
	Log *slog.Logger

	CreateOrder usecase.CreateOrder
	GetOrder    usecase.GetOrderByID
	ListOrders  usecase.ListOrders

	Customers      usecase.ManageEntities[domain.Customer]
	Suppliers      usecase.ManageEntities[domain.Supplier]
	Products       usecase.ManageEntities[domain.Product]
	SpecificPrices usecase.ManageEntities[domain.SpecificPrice]

	// AuthTokens пустой означает, что авторизация выключена.
	AuthTokens []string
}

type Server struct {
	Router *mux.Router
	log    *slog.Logger
	opts   Options
}

func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{Router: mux.NewRouter(), log: log, opts: opts}

	s.Router.Use(logRequests(log), RequireToken(opts.AuthTokens, "/healthz"))
	s.Router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Unsupported HTTP method"})
	})
	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Unsupported route"})
	})

	s.Router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	s.registerOrders("/sales-orders", domain.KindSales, "Sales order")
	s.registerOrders("/purchase-orders", domain.KindPurchase, "Purchase order")

	registerEntity(s, "/customers", "Customer", opts.Customers)
	registerEntity(s, "/suppliers", "Supplier", opts.Suppliers)
	registerEntity(s, "/products", "Product", opts.Products)
	registerEntity(s, "/specific-prices", "Specific price", opts.SpecificPrices)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
