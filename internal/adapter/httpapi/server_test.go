package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commerce-service/internal/adapter/cache"
	"github.com/example/commerce-service/internal/adapter/memstore"
	"github.com/example/commerce-service/internal/domain"
	"github.com/example/commerce-service/internal/usecase"
)

type testEnv struct {
	server *Server
	orders *memstore.Orders
	prices *memstore.SpecificPrices
}

func newTestEnv(t *testing.T, tokens ...string) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orders := memstore.NewOrders()
	prices := memstore.NewSpecificPrices()
	orderCache := cache.NewMemoryOrderCache()

	srv := NewServer(Options{
		Log: log,
		CreateOrder: usecase.CreateOrder{
			Resolver: usecase.PriceResolver{Prices: prices},
			Repo:     orders,
			Cache:    orderCache,
			Idem:     memstore.NewIdempotency(time.Minute),
			Log:      log,
		},
		GetOrder:       usecase.GetOrderByID{Cache: orderCache, Repo: orders},
		ListOrders:     usecase.ListOrders{Repo: orders},
		Customers:      usecase.ManageEntities[domain.Customer]{Repo: memstore.NewEntities[domain.Customer]()},
		Suppliers:      usecase.ManageEntities[domain.Supplier]{Repo: memstore.NewEntities[domain.Supplier]()},
		Products:       usecase.ManageEntities[domain.Product]{Repo: memstore.NewEntities[domain.Product]()},
		SpecificPrices: usecase.ManageEntities[domain.SpecificPrice]{Repo: prices},
		AuthTokens:     tokens,
	})
	return &testEnv{server: srv, orders: orders, prices: prices}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.server.Router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestCreateSalesOrderEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/specific-prices", `{"entityType":"customer","entityId":"C1","productId":"P1","price":8}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/sales-orders",
		`{"customerId":"C1","products":[{"productId":"P1","quantity":2,"price":10},{"productId":"P2","quantity":1,"price":5}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeMap(t, w)
	assert.Equal(t, "C1", body["customerId"])
	assert.Equal(t, "Pending", body["status"])
	assert.Equal(t, float64(21), body["totalPrice"])
	assert.Equal(t, "", body["notes"])
	assert.NotEmpty(t, body["orderId"])
	assert.NotEmpty(t, body["createdAt"])

	products := body["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, map[string]any{"productId": "P1", "quantity": float64(2), "price": float64(8), "subtotal": float64(16)}, products[0])
	assert.Equal(t, map[string]any{"productId": "P2", "quantity": float64(1), "price": float64(5), "subtotal": float64(5)}, products[1])

	id := body["orderId"].(string)
	w = env.do(t, http.MethodGet, "/sales-orders/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(21), decodeMap(t, w)["totalPrice"])

	w = env.do(t, http.MethodGet, "/purchase-orders/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/sales-orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].OrderID)
	assert.True(t, list[0].TotalPrice.Equal(decimal.NewFromInt(21)))
}

func TestCreatePurchaseOrderUsesSupplierOverride(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.prices.Create(context.Background(), domain.SpecificPrice{
		SpecificPriceID: "sp1", EntityType: domain.EntitySupplier, EntityID: "S1", ProductID: "P1", Price: decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
	}))

	w := env.do(t, http.MethodPost, "/purchase-orders", `{"supplierId":"S1","products":[{"productId":"P1","quantity":4,"price":3}],"notes":"monthly"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeMap(t, w)
	assert.Equal(t, "S1", body["supplierId"])
	assert.NotContains(t, body, "customerId")
	assert.Equal(t, float64(10), body["totalPrice"])
	assert.Equal(t, "monthly", body["notes"])
}

func TestGetUnknownOrder(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sales-orders/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]any{"message": "Sales order not found"}, decodeMap(t, w))
}

func TestListOrdersEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/purchase-orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"customerId":`},
		{"missing customer", `{"products":[]}`},
		{"missing products", `{"customerId":"C1"}`},
		{"supplier on sales order", `{"customerId":"C1","supplierId":"S1","products":[]}`},
		{"unknown field", `{"customerId":"C1","products":[],"discount":5}`},
		{"negative quantity", `{"customerId":"C1","products":[{"productId":"P1","quantity":-1,"price":1}]}`},
		{"missing price", `{"customerId":"C1","products":[{"productId":"P1","quantity":1}]}`},
		{"products not an array", `{"customerId":"C1","products":"P1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/sales-orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decodeMap(t, w)
			assert.Equal(t, "Invalid request", body["message"])
			assert.NotEmpty(t, body["error"])
		})
	}

	list, err := env.orders.List(context.Background(), domain.KindSales)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateOrderEmptyProductList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/sales-orders", `{"customerId":"C1","products":[]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.Equal(t, float64(0), body["totalPrice"])
	assert.Equal(t, []any{}, body["products"])
}

type failingLookup struct{}

func (failingLookup) FindPrice(context.Context, string, string) (decimal.Decimal, bool, error) {
	return decimal.Decimal{}, false, errors.New("secret connection string leaked")
}

func TestCreateOrderStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.server.opts.CreateOrder.Resolver.Prices = failingLookup{}

	w := env.do(t, http.MethodPost, "/sales-orders", `{"customerId":"C1","products":[{"productId":"P1","quantity":1,"price":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"message": "Internal Server Error"}, decodeMap(t, w))
	assert.NotContains(t, w.Body.String(), "secret")

	list, err := env.orders.List(context.Background(), domain.KindSales)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnsupportedMethodAndRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodDelete, "/sales-orders", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unsupported HTTP method", decodeMap(t, w)["message"])

	w = env.do(t, http.MethodPut, "/sales-orders/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/invoices", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unsupported route", decodeMap(t, w)["message"])
}

func TestIdempotencyKeyReplaysOrder(t *testing.T) {
	env := newTestEnv(t)
	body := `{"customerId":"C1","products":[{"productId":"P1","quantity":1,"price":3}]}`

	w1 := env.do(t, http.MethodPost, "/sales-orders", body, "Idempotency-Key", "req-1")
	require.Equal(t, http.StatusCreated, w1.Code)
	w2 := env.do(t, http.MethodPost, "/sales-orders", body, "Idempotency-Key", "req-1")
	require.Equal(t, http.StatusCreated, w2.Code)
	w3 := env.do(t, http.MethodPost, "/sales-orders", body, "Idempotency-Key", "req-2")
	require.Equal(t, http.StatusCreated, w3.Code)

	assert.Equal(t, decodeMap(t, w1)["orderId"], decodeMap(t, w2)["orderId"])
	assert.NotEqual(t, decodeMap(t, w1)["orderId"], decodeMap(t, w3)["orderId"])

	list, err := env.orders.List(context.Background(), domain.KindSales)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestIdempotencyKeyOnlyFromHeader(t *testing.T) {
	env := newTestEnv(t)
	body := `{"customerId":"C1","products":[{"productId":"P1","quantity":1,"price":3}],"idempotencyKey":"req-1"}`

	w1 := env.do(t, http.MethodPost, "/sales-orders", body)
	require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())
	w2 := env.do(t, http.MethodPost, "/sales-orders", body)
	require.Equal(t, http.StatusCreated, w2.Code, w2.Body.String())

	assert.NotEqual(t, decodeMap(t, w1)["orderId"], decodeMap(t, w2)["orderId"])
	list, err := env.orders.List(context.Background(), domain.KindSales)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCustomerCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/customers", `{"name":"Ana","email":"ana@example.com","cpfCnpj":"123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeMap(t, w)
	id := created["customerId"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, []any{}, created["contacts"])

	w = env.do(t, http.MethodGet, "/customers/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decodeMap(t, w)["name"])

	w = env.do(t, http.MethodPut, "/customers/"+id, `{"name":"Ana Maria","enabled":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeMap(t, w)
	assert.Equal(t, id, updated["customerId"])
	assert.Equal(t, true, updated["enabled"])

	w = env.do(t, http.MethodGet, "/customers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Maria", list[0].Name)

	w = env.do(t, http.MethodDelete, "/customers/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Customer deleted", decodeMap(t, w)["message"])

	w = env.do(t, http.MethodGet, "/customers/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer not found", decodeMap(t, w)["message"])

	w = env.do(t, http.MethodDelete, "/customers/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/customers/"+id, `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/customers", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestEntityValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/suppliers", `{"email":"x@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/products", `{"name":"Alface","price":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/specific-prices", `{"entityType":"partner","entityId":"C1","productId":"P1","price":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSpecificPriceRequiresPrice(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/specific-prices", `{"entityType":"customer","entityId":"C1","productId":"P1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decodeMap(t, w)["error"], "price is required")

	w = env.do(t, http.MethodPost, "/specific-prices", `{"entityType":"customer","entityId":"C1","productId":"P1","price":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	list, err := env.prices.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	w = env.do(t, http.MethodPost, "/sales-orders", `{"customerId":"C1","products":[{"productId":"P1","quantity":3,"price":10}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(30), decodeMap(t, w)["totalPrice"])
}

func TestSpecificPriceUpdateRequiresPrice(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/specific-prices", `{"entityType":"customer","entityId":"C1","productId":"P1","price":8}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeMap(t, w)["specificPriceId"].(string)

	w = env.do(t, http.MethodPut, "/specific-prices/"+id, `{"entityType":"customer","entityId":"C1","productId":"P1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/specific-prices/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(8), decodeMap(t, w)["price"])
}

func TestSpecificPriceConflict(t *testing.T) {
	env := newTestEnv(t)
	body := `{"entityType":"customer","entityId":"C1","productId":"P1","price":8}`

	w := env.do(t, http.MethodPost, "/specific-prices", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/specific-prices", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Specific price already exists", decodeMap(t, w)["message"])
}

func TestProductPriceRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/products", `{"name":"Alface","sku":"ALF-1","unit":"kg","price":"4.75"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 4.75, decodeMap(t, w)["price"])
}

func TestRequireToken(t *testing.T) {
	env := newTestEnv(t, "s3cret")

	w := env.do(t, http.MethodGet, "/customers", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/customers", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/customers", "", "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
