package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/services/payments"
)

func (r *Router) listPayments(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	out, err := r.payments.List(req.Context(), q.Get("po_number"), q.Get("payment_type"))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (r *Router) createInternalPayment(w http.ResponseWriter, req *http.Request) {
	var body payments.InternalInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	p, err := r.payments.CreateInternal(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) createExternalPayment(w http.ResponseWriter, req *http.Request) {
	var body payments.ExternalInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	p, err := r.payments.CreateExternal(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) paymentSummary(w http.ResponseWriter, req *http.Request) {
	sum, err := r.payments.Summary(req.Context(), mux.Vars(req)["po"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (r *Router) deletePayment(w http.ResponseWriter, req *http.Request) {
	if err := r.payments.Delete(req.Context(), actor(req), mux.Vars(req)["id"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondMessage(w, "Payment deleted successfully")
}
