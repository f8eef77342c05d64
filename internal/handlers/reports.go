package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/xelth-com/tradetrack/internal/reconcile"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func stamp() string {
	return time.Now().UTC().Format("20060102_150405")
}

func (r *Router) dashboard(w http.ResponseWriter, req *http.Request) {
	d, err := r.reports.Dashboard(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (r *Router) poSummary(w http.ResponseWriter, req *http.Request) {
	po := req.URL.Query().Get("po_number")
	if po == "" {
		respondDetail(w, http.StatusBadRequest, "po_number is required")
		return
	}
	sum, err := r.reports.POSummary(req.Context(), po)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

// master builds the filtered report from the search and po query parameters
func (r *Router) master(req *http.Request) (*reconcile.Master, error) {
	q := req.URL.Query()
	return r.reports.Master(req.Context(), q.Get("search"), q.Get("po"))
}

func (r *Router) masterReport(w http.ResponseWriter, req *http.Request) {
	m, err := r.master(req)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (r *Router) masterCSV(w http.ResponseWriter, req *http.Request) {
	m, err := r.master(req)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var buf bytes.Buffer
	if err := reconcile.WriteCSV(&buf, m.Rows); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondFile(w, "text/csv; charset=utf-8", fmt.Sprintf("master_report_%s.csv", stamp()), buf.Bytes())
}

func (r *Router) exportMaster(w http.ResponseWriter, req *http.Request) {
	m, err := r.master(req)
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var buf bytes.Buffer
	if err := reconcile.WriteXLSX(&buf, m.Rows); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondFile(w, xlsxType, "master_report.xlsx", buf.Bytes())
}

func (r *Router) exportInventory(w http.ResponseWriter, req *http.Request) {
	items, err := r.reports.Inventory(req.Context())
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	var buf bytes.Buffer
	if err := reconcile.WriteInventoryXLSX(&buf, items); err != nil {
		r.respondError(w, req, err)
		return
	}
	respondFile(w, xlsxType, "inventory_report.xlsx", buf.Bytes())
}

func (r *Router) listAuditLogs(w http.ResponseWriter, req *http.Request) {
	logs, err := r.audit.List(req.Context(), req.URL.Query().Get("entity_type"))
	if err != nil {
		r.respondError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
