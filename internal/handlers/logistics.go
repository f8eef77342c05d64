package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/services/logistics"
)

func (r *Router) listShipments(w http.ResponseWriter, req *http.Request) {
	out, err := r.logistics.List(req.Context(), req.URL.Query().Get("po_number"))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (r *Router) createShipment(w http.ResponseWriter, req *http.Request) {
	var body logistics.ShipmentInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	sh, err := r.logistics.Create(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, sh)
}

func (r *Router) updateShipmentStatus(w http.ResponseWriter, req *http.Request) {
	var body logistics.StatusInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	sh, err := r.logistics.UpdateStatus(req.Context(), actor(req), mux.Vars(req)["id"], body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Status updated successfully",
		"shipment": sh,
	})
}

func (r *Router) deleteShipment(w http.ResponseWriter, req *http.Request) {
	if err := r.logistics.Delete(req.Context(), actor(req), mux.Vars(req)["id"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondMessage(w, "Shipment deleted successfully")
}
