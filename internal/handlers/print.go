package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xelth-com/tradetrack/internal/services/inventory"
)

// generateLabels renders a QR label sheet for the requested IMEIs
func (r *Router) generateLabels(w http.ResponseWriter, req *http.Request) {
	var body inventory.LabelsInput
	if err := decode(req, &body); err != nil {
		r.respondError(w, req, err)
		return
	}

	pdfBytes, err := r.inventory.Labels(req.Context(), body)
	if err != nil {
		r.respondError(w, req, err)
		return
	}

	name := fmt.Sprintf("imei_labels_%s.pdf", time.Now().UTC().Format("20060102_150405"))
	respondFile(w, "application/pdf", name, pdfBytes)
}
