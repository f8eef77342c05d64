package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/services/sales"
)

func (r *Router) listSalesOrders(w http.ResponseWriter, req *http.Request) {
	out, err := r.sales.List(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (r *Router) createSalesOrder(w http.ResponseWriter, req *http.Request) {
	var body sales.OrderInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	so, err := r.sales.Create(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, so)
}

func (r *Router) deleteSalesOrder(w http.ResponseWriter, req *http.Request) {
	if err := r.sales.Delete(req.Context(), actor(req), mux.Vars(req)["so"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondMessage(w, "Sales order deleted successfully")
}
