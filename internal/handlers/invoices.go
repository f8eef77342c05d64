package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/services/invoicing"
)

func (r *Router) listInvoices(w http.ResponseWriter, req *http.Request) {
	out, err := r.invoicing.List(req.Context(), req.URL.Query().Get("po_number"))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (r *Router) createInvoice(w http.ResponseWriter, req *http.Request) {
	var body invoicing.InvoiceInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	inv, err := r.invoicing.Create(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (r *Router) deleteInvoice(w http.ResponseWriter, req *http.Request) {
	if err := r.invoicing.Delete(req.Context(), actor(req), mux.Vars(req)["id"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondMessage(w, "Invoice deleted successfully")
}
