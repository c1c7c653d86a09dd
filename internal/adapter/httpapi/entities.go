package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/commerce-service/internal/domain"
	"github.com/example/commerce-service/internal/usecase"
)

// registerEntity вешает на path стандартный CRUD справочника.
func registerEntity[T domain.Entity[T]](s *Server, path, label string, uc usecase.ManageEntities[T]) {
	s.Router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		var e T
		if err := decodeBody(r, &e); err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		created, err := uc.Create(r.Context(), e)
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}).Methods(http.MethodPost)

	s.Router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.List(r.Context())
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		if list == nil {
			list = []T{}
		}
		writeJSON(w, http.StatusOK, list)
	}).Methods(http.MethodGet)

	s.Router.HandleFunc(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		e, err := uc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}).Methods(http.MethodGet)

	s.Router.HandleFunc(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var e T
		if err := decodeBody(r, &e); err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		updated, err := uc.Update(r.Context(), mux.Vars(r)["id"], e)
		if err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}).Methods(http.MethodPut)

	s.Router.HandleFunc(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeError(w, r, s.log, label, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: label + " deleted"})
	}).Methods(http.MethodDelete)
}
