package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/services/inventory"
)

func (r *Router) listInventory(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	items, err := r.inventory.List(req.Context(), q.Get("status"), q.Get("organization"))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (r *Router) getInventory(w http.ResponseWriter, req *http.Request) {
	item, err := r.inventory.Get(req.Context(), mux.Vars(req)["imei"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// lookupIMEI pre-fills scan and sales forms
func (r *Router) lookupIMEI(w http.ResponseWriter, req *http.Request) {
	l, err := r.inventory.Lookup(req.Context(), mux.Vars(req)["imei"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (r *Router) scanInventory(w http.ResponseWriter, req *http.Request) {
	var body inventory.ScanInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	res, err := r.inventory.Scan(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (r *Router) deleteInventory(w http.ResponseWriter, req *http.Request) {
	if err := r.inventory.Delete(req.Context(), actor(req), mux.Vars(req)["imei"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondMessage(w, "Inventory item deleted successfully")
}
