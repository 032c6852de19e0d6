package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/buildinfo"
	"github.com/beachmarket/beachmarketgo/internal/catalog"
	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/database"
	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/middleware"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/notify"
	"github.com/beachmarket/beachmarketgo/internal/reports"
	ws "github.com/beachmarket/beachmarketgo/internal/websocket"
	"github.com/gorilla/mux"
)

// CatalogSource is the slice of the catalog reader the HTTP layer needs
type CatalogSource interface {
	RecentProducts(ctx context.Context, branchCode string, filters catalog.ProductFilters) ([]models.CatalogProduct, error)
	Sales(ctx context.Context, branchCode string, from, to time.Time) (*catalog.SalesSummary, error)
}

// Router wraps the mux router and the application services
type Router struct {
	*mux.Router
	db        *database.DB
	cfg       *config.Config
	store     *inventory.Store
	source    CatalogSource
	generator reports.Generator
	whatsapp  notify.Sender
	email     notify.Sender
	hub       *ws.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, store *inventory.Store, source CatalogSource,
	generator reports.Generator, whatsapp, email notify.Sender, hub *ws.Hub) *Router {

	r := &Router{
		Router:    mux.NewRouter(),
		db:        db,
		cfg:       cfg,
		store:     store,
		source:    source,
		generator: generator,
		whatsapp:  whatsapp,
		email:     email,
		hub:       hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/logout", r.logout).Methods("POST")

	// Inventory routes
	inv := r.PathPrefix("/api/inventory").Subrouter()
	inv.HandleFunc("/recent-products", r.recentProducts).Methods("GET")
	inv.HandleFunc("/attach-data", r.attachData).Methods("POST")
	inv.HandleFunc("/extended", r.listExtended).Methods("GET")
	inv.HandleFunc("/item/{id}/promotion", r.togglePromotion).Methods("PUT")
	inv.HandleFunc("/item/{id}", r.deleteItem).Methods("DELETE")
	inv.HandleFunc("/stats", r.inventoryStats).Methods("GET")
	inv.HandleFunc("/send-whatsapp-alert", r.sendWhatsAppAlert).Methods("POST")
	inv.HandleFunc("/send-report", r.sendReport).Methods("POST")
	inv.HandleFunc("/report/pdf", r.reportPDF).Methods("GET")
	inv.HandleFunc("/report/html", r.reportHTML).Methods("GET")

	// Sales dashboard
	api.HandleFunc("/sales/summary", r.salesSummary).Methods("GET")

	// Branch monitoring
	api.HandleFunc("/monitor/branches", r.monitorBranches).Methods("GET")
	api.HandleFunc("/monitor/alerts", r.monitorAlerts).Methods("GET")

	// Branch registry (holds catalog credentials, so Bearer auth required)
	branches := r.PathPrefix("/api/branches").Subrouter()
	branches.Use(middleware.Auth(cfg.JWTSecret))
	branches.HandleFunc("", r.listBranches).Methods("GET")
	branches.HandleFunc("", r.createBranch).Methods("POST")
	branches.HandleFunc("/{id}", r.updateBranch).Methods("PUT")
	branches.HandleFunc("/{id}", r.deleteBranch).Methods("DELETE")

	// Ticketing
	tickets := r.PathPrefix("/api/tickets").Subrouter()
	tickets.HandleFunc("", r.listTickets).Methods("GET")
	tickets.HandleFunc("", r.createTicket).Methods("POST")
	tickets.HandleFunc("/{id}", r.getTicket).Methods("GET")
	tickets.HandleFunc("/{id}", r.updateTicket).Methods("PUT")
	tickets.HandleFunc("/{id}", r.deleteTicket).Methods("DELETE")

	// Live dashboard feed
	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			ws.ServeWS(hub, w, req)
		})
	}

	// Generated reports
	if cfg != nil && cfg.Reports.Enabled {
		r.PathPrefix(cfg.Reports.BaseURL + "/").Handler(
			http.StripPrefix(cfg.Reports.BaseURL+"/", http.FileServer(http.Dir(cfg.Reports.OutputDir))))
	}

	// Static files - the public marketing site
	publicDir := os.Getenv("FRONTEND_DIR")
	if publicDir == "" {
		publicDir = "./public"
	}
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(publicDir)))

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "beachmarket",
	})
}

// getStatus returns the current status and build metadata
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "running",
		"buildTime":  buildinfo.BuildTime,
		"commitTime": buildinfo.CommitTime,
		"commitHash": buildinfo.CommitHash,
		"startTime":  buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondSuccess sends the standard success envelope
func respondSuccess(w http.ResponseWriter, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	respondJSON(w, http.StatusOK, body)
}

// respondSoftFailure reports a recoverable condition: HTTP 200 with
// success=false, so clients treat it as data rather than a transport error.
// The raw error detail is only exposed in development mode.
func (r *Router) respondSoftFailure(w http.ResponseWriter, message string, err error) {
	body := map[string]interface{}{
		"success": false,
		"message": message,
	}
	if err != nil && r.cfg != nil && r.cfg.NodeEnv == "development" {
		body["error"] = err.Error()
	}
	respondJSON(w, http.StatusOK, body)
}

// respondError sends an error response (malformed input, auth, not found)
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
