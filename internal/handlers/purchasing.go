package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/services/purchasing"
)

func (r *Router) listPOs(w http.ResponseWriter, req *http.Request) {
	pos, err := r.purchasing.ListPOs(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, pos)
}

func (r *Router) createPO(w http.ResponseWriter, req *http.Request) {
	var body purchasing.CreatePOInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	po, err := r.purchasing.CreatePO(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, po)
}

func (r *Router) getPO(w http.ResponseWriter, req *http.Request) {
	po, err := r.purchasing.GetPO(req.Context(), mux.Vars(req)["po"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, po)
}

func (r *Router) approvePO(w http.ResponseWriter, req *http.Request) {
	var body purchasing.ApprovalInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	po, err := r.purchasing.Approve(req.Context(), actor(req), mux.Vars(req)["po"], body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":        fmt.Sprintf("PO %sd successfully", body.Action),
		"purchase_order": po,
	})
}

func (r *Router) relatedCounts(w http.ResponseWriter, req *http.Request) {
	rc, err := r.purchasing.RelatedCounts(req.Context(), mux.Vars(req)["po"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rc)
}

// deletePO cascades to every record of the order
func (r *Router) deletePO(w http.ResponseWriter, req *http.Request) {
	po := mux.Vars(req)["po"]
	dc, err := r.purchasing.DeletePO(req.Context(), actor(req), po)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":        fmt.Sprintf("Purchase order %s and all related records deleted successfully", po),
		"deleted_counts": dc,
	})
}

func (r *Router) poWorkflow(w http.ResponseWriter, req *http.Request) {
	v, err := r.purchasing.Workflow(req.Context(), mux.Vars(req)["po"])
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (r *Router) listProcurement(w http.ResponseWriter, req *http.Request) {
	recs, err := r.purchasing.ListProcurement(req.Context(), req.URL.Query().Get("po_number"))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (r *Router) createProcurement(w http.ResponseWriter, req *http.Request) {
	var body purchasing.ProcurementInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}
	rec, err := r.purchasing.CreateProcurement(req.Context(), actor(req), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (r *Router) deleteProcurement(w http.ResponseWriter, req *http.Request) {
	if err := r.purchasing.DeleteProcurement(req.Context(), actor(req), mux.Vars(req)["id"]); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondMessage(w, "Procurement record deleted successfully")
}
