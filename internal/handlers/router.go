package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/buildinfo"
	"github.com/xelth-com/tradetrack/internal/config"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/middleware"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/reconcile"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"github.com/xelth-com/tradetrack/internal/services/inventory"
	"github.com/xelth-com/tradetrack/internal/services/invoicing"
	"github.com/xelth-com/tradetrack/internal/services/logistics"
	"github.com/xelth-com/tradetrack/internal/services/payments"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
	"github.com/xelth-com/tradetrack/internal/services/sales"
	"github.com/xelth-com/tradetrack/internal/websocket"
)

// Router wraps the mux router and the services behind it
type Router struct {
	*mux.Router
	db  *database.DB
	cfg *config.Config
	bus *notify.Bus
	hub *websocket.Hub
	log *zap.Logger

	purchasing *purchasing.Service
	payments   *payments.Service
	inventory  *inventory.Service
	logistics  *logistics.Service
	invoicing  *invoicing.Service
	sales      *sales.Service
	reports    *reconcile.Service
	audit      *audit.Service
}

// NewRouter creates a new HTTP router with all routes. hub may be nil, which
// disables the websocket stream.
func NewRouter(db *database.DB, cfg *config.Config, bus *notify.Bus, hub *websocket.Hub, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		cfg:    cfg,
		bus:    bus,
		hub:    hub,
		log:    log,

		purchasing: purchasing.NewService(db, bus, log.Named("purchasing")),
		payments:   payments.NewService(db, bus, log.Named("payments")),
		inventory:  inventory.NewService(db, bus, log.Named("inventory")),
		logistics:  logistics.NewService(db, bus, log.Named("logistics")),
		invoicing:  invoicing.NewService(db, bus, log.Named("invoicing")),
		sales:      sales.NewService(db, bus, log.Named("sales")),
		reports:    reconcile.NewService(db, log.Named("reports")),
		audit:      audit.NewService(db),
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	api.HandleFunc("/auth/register", r.register).Methods("POST")
	api.HandleFunc("/auth/login", r.login).Methods("POST")

	// Everything below needs a bearer token
	p := api.NewRoute().Subrouter()
	p.Use(middleware.Auth(cfg.JWTSecret))

	p.HandleFunc("/auth/me", r.me).Methods("GET")

	// Purchase orders
	p.HandleFunc("/purchase-orders", r.listPOs).Methods("GET")
	p.HandleFunc("/purchase-orders", r.createPO).Methods("POST")
	p.HandleFunc("/purchase-orders/{po}", r.getPO).Methods("GET")
	p.HandleFunc("/purchase-orders/{po}", r.deletePO).Methods("DELETE")
	p.Handle("/purchase-orders/{po}/approve",
		middleware.RequireRole(models.RoleApprover, models.RoleAdmin)(http.HandlerFunc(r.approvePO))).Methods("POST")
	p.HandleFunc("/purchase-orders/{po}/related-counts", r.relatedCounts).Methods("GET")
	p.HandleFunc("/purchase-orders/{po}/workflow", r.poWorkflow).Methods("GET")

	// Procurement
	p.HandleFunc("/procurement", r.listProcurement).Methods("GET")
	p.HandleFunc("/procurement", r.createProcurement).Methods("POST")
	p.HandleFunc("/procurement/{id}", r.deleteProcurement).Methods("DELETE")

	// Payments
	p.HandleFunc("/payments", r.listPayments).Methods("GET")
	p.HandleFunc("/payments/internal", r.createInternalPayment).Methods("POST")
	p.HandleFunc("/payments/external", r.createExternalPayment).Methods("POST")
	p.HandleFunc("/payments/summary/{po}", r.paymentSummary).Methods("GET")
	p.HandleFunc("/payments/{id}", r.deletePayment).Methods("DELETE")

	// Inventory
	p.HandleFunc("/inventory", r.listInventory).Methods("GET")
	p.HandleFunc("/inventory/scan", r.scanInventory).Methods("POST")
	p.HandleFunc("/inventory/labels", r.generateLabels).Methods("POST")
	p.HandleFunc("/inventory/lookup/{imei}", r.lookupIMEI).Methods("GET")
	p.HandleFunc("/inventory/{imei}", r.getInventory).Methods("GET")
	p.HandleFunc("/inventory/{imei}", r.deleteInventory).Methods("DELETE")

	// Logistics
	p.HandleFunc("/logistics/shipments", r.listShipments).Methods("GET")
	p.HandleFunc("/logistics/shipments", r.createShipment).Methods("POST")
	p.HandleFunc("/logistics/shipments/{id}/status", r.updateShipmentStatus).Methods("PATCH")
	p.HandleFunc("/logistics/shipments/{id}", r.deleteShipment).Methods("DELETE")

	// Invoices
	p.HandleFunc("/invoices", r.listInvoices).Methods("GET")
	p.HandleFunc("/invoices", r.createInvoice).Methods("POST")
	p.HandleFunc("/invoices/{id}", r.deleteInvoice).Methods("DELETE")

	// Sales orders
	p.HandleFunc("/sales-orders", r.listSalesOrders).Methods("GET")
	p.HandleFunc("/sales-orders", r.createSalesOrder).Methods("POST")
	p.HandleFunc("/sales-orders/{so}", r.deleteSalesOrder).Methods("DELETE")

	// Reports
	p.HandleFunc("/reports/dashboard", r.dashboard).Methods("GET")
	p.HandleFunc("/reports/po-summary", r.poSummary).Methods("GET")
	p.HandleFunc("/reports/master", r.masterReport).Methods("GET")
	p.HandleFunc("/reports/master.csv", r.masterCSV).Methods("GET")
	p.HandleFunc("/reports/export/master", r.exportMaster).Methods("GET")
	p.HandleFunc("/reports/export/inventory", r.exportInventory).Methods("GET")

	p.HandleFunc("/audit-logs", r.listAuditLogs).Methods("GET")

	// Notification bus
	p.HandleFunc("/notifications", r.listNotifications).Methods("GET")
	p.HandleFunc("/notifications/refresh", r.triggerRefresh).Methods("POST")
	p.HandleFunc("/notifications/{topic}", r.topicNotifications).Methods("GET")
	p.HandleFunc("/notifications/{topic}", r.clearTopic).Methods("DELETE")
	p.HandleFunc("/notifications/{topic}/{po}", r.clearNotification).Methods("DELETE")
	p.HandleFunc("/ws", r.serveWs).Methods("GET")

	// Static files
	if dir := cfg.FrontendDir; dir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.FS(os.DirFS(dir))))
	}

	return r
}

// Handler returns the router wrapped in the process-wide middleware. CORS sits
// outside routing so preflight requests are answered for every path.
func (r *Router) Handler() http.Handler {
	var h http.Handler = r.Router
	h = middleware.RequestLogger(r.log)(h)
	return middleware.CORS(r.cfg.CORSOrigins)(h)
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	status := "ok"
	if sqlDB, err := r.db.DB.DB(); err != nil || sqlDB.PingContext(req.Context()) != nil {
		status = "degraded"
	}
	body := map[string]interface{}{
		"status":      status,
		"build_time":  buildinfo.BuildTime,
		"commit_hash": buildinfo.CommitHash,
		"commit_time": buildinfo.CommitTime,
		"start_time":  buildinfo.StartTime,
		"time":        time.Now().UTC().Format(time.RFC3339),
	}
	if r.hub != nil {
		body["ws_clients"] = r.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, body)
}

// actor returns the authenticated caller. Routes behind Auth always have one.
func actor(req *http.Request) models.Actor {
	a, _ := middleware.ActorFrom(req.Context())
	return a
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondDetail sends an error body in the {"detail": ...} shape clients toast.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

// respondError maps a service error to its status. Unclassified errors are logged.
func (r *Router) respondError(w http.ResponseWriter, req *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, verr)
		return
	}
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		r.log.Error("request failed", zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
	}
	respondDetail(w, status, apperr.Message(err))
}

// respondMessage answers a write that returns no entity.
func respondMessage(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// respondFile sends a binary attachment.
func respondFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
