package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/commerce-service/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

func (s *Server) registerOrders(path string, kind domain.OrderKind, label string) {
	s.Router.HandleFunc(path, s.handleCreateOrder(kind, label)).Methods(http.MethodPost)
	s.Router.HandleFunc(path, s.handleListOrders(kind, label)).Methods(http.MethodGet)
	s.Router.HandleFunc(path+"/{id}", s.handleGetOrder(kind, label)).Methods(http.MethodGet)
}

func (s *Server) handleCreateOrder(kind domain.OrderKind, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.OrderRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		// вид заказа задаёт маршрут, ключ идемпотентности только заголовок
		req.Kind = kind
		req.IdempotencyKey = r.Header.Get(idempotencyHeader)

		o, err := s.opts.CreateOrder.Execute(r.Context(), req)
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
	}
}

func (s *Server) handleGetOrder(kind domain.OrderKind, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		o, err := s.opts.GetOrder.Execute(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func (s *Server) handleListOrders(kind domain.OrderKind, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := s.opts.ListOrders.Execute(r.Context(), kind)
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}
