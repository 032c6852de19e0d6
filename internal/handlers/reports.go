package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/reports"
)

func (r *Router) expiringItems(req *http.Request) ([]inventory.ItemView, error) {
	alertDays := 7
	if raw := req.URL.Query().Get("alertDays"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			alertDays = n
		}
	}
	return r.store.ListActive(req.Context(), inventory.ListFilters{MaxDaysRemaining: &alertDays})
}

// reportPDF generates the expiration report as a PDF and returns its URL
func (r *Router) reportPDF(w http.ResponseWriter, req *http.Request) {
	items, err := r.expiringItems(req)
	if err != nil {
		r.respondSoftFailure(w, "Could not load expiring products", err)
		return
	}

	descriptor, err := r.generator.ExpirationPDF(items, time.Now())
	if errors.Is(err, reports.ErrNotConfigured) {
		r.respondSoftFailure(w, "Report generation is not configured", err)
		return
	}
	if err != nil {
		r.respondSoftFailure(w, "Could not generate the report", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": descriptor})
}

// reportHTML generates the expiration report as a standalone HTML page
func (r *Router) reportHTML(w http.ResponseWriter, req *http.Request) {
	items, err := r.expiringItems(req)
	if err != nil {
		r.respondSoftFailure(w, "Could not load expiring products", err)
		return
	}

	descriptor, err := r.generator.ExpirationHTML(items, time.Now())
	if errors.Is(err, reports.ErrNotConfigured) {
		r.respondSoftFailure(w, "Report generation is not configured", err)
		return
	}
	if err != nil {
		r.respondSoftFailure(w, "Could not generate the report", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": descriptor})
}
