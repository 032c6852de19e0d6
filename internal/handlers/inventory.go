package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/catalog"
	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/notify"
	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

// parseID extracts a numeric path id
func parseID(req *http.Request) (uint, error) {
	raw := mux.Vars(req)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// recentProducts lists branch catalog products with their processed flag
func (r *Router) recentProducts(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	branchID := q.Get("branchId")
	if branchID == "" {
		respondError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	filters := catalog.ProductFilters{Search: q.Get("search")}
	if raw := q.Get("dateFrom"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "dateFrom must be YYYY-MM-DD")
			return
		}
		filters.DateFrom = &t
	}
	if raw := q.Get("dateTo"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "dateTo must be YYYY-MM-DD")
			return
		}
		filters.DateTo = &t
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.Limit = n
		}
	}

	products, err := r.source.RecentProducts(req.Context(), branchID, filters)
	if err != nil {
		r.respondSoftFailure(w, "Could not reach the branch catalog", err)
		return
	}

	if err := r.store.MarkProcessed(req.Context(), products); err != nil {
		r.respondSoftFailure(w, "Could not check processed products", err)
		return
	}

	processed := 0
	for _, p := range products {
		if p.Processed {
			processed++
		}
	}

	respondSuccess(w, map[string]interface{}{
		"data": products,
		"summary": map[string]int{
			"total":     len(products),
			"processed": processed,
			"pending":   len(products) - processed,
		},
	})
}

// AttachDataRequest is the batch attach payload
type AttachDataRequest struct {
	BranchID       string   `json:"branchId"`
	Barcodes       []string `json:"barcodes"`
	ExpirationDate string   `json:"expirationDate"`
	Temperature    *string  `json:"temperature,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// attachData attaches trazability data to a batch of barcodes
func (r *Router) attachData(w http.ResponseWriter, req *http.Request) {
	var body AttachDataRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(body.Barcodes) == 0 {
		respondError(w, http.StatusBadRequest, "barcodes is required")
		return
	}
	expiration, err := time.Parse(dateLayout, body.ExpirationDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "expirationDate must be YYYY-MM-DD")
		return
	}

	result, err := r.store.AttachBatch(req.Context(), inventory.AttachRequest{
		BranchCode:     body.BranchID,
		Barcodes:       body.Barcodes,
		ExpirationDate: expiration,
		Temperature:    body.Temperature,
		Notes:          body.Notes,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Partial failures still report success: every barcode has its own outcome
	respondSuccess(w, map[string]interface{}{
		"data": map[string]interface{}{
			"inserted":         len(result.Inserted),
			"alreadyProcessed": len(result.AlreadyProcessed),
			"errors":           len(result.Errors),
			"detail":           result,
		},
	})
}

// listExtended returns active extended inventory rows with urgency and stats
func (r *Router) listExtended(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filters := inventory.ListFilters{
		BranchCode:    q.Get("branchId"),
		Search:        q.Get("search"),
		PromotionOnly: q.Get("promotion") == "true",
	}
	if raw := q.Get("maxDaysRemaining"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "maxDaysRemaining must be a number")
			return
		}
		filters.MaxDaysRemaining = &n
	}

	items, err := r.store.ListActive(req.Context(), filters)
	if err != nil {
		r.respondSoftFailure(w, "Could not load extended inventory", err)
		return
	}

	stats, err := r.store.Stats(req.Context())
	if err != nil {
		stats = &inventory.Stats{}
	}

	respondSuccess(w, map[string]interface{}{
		"data":  items,
		"stats": stats,
	})
}

// togglePromotion flips the promotion flag of one item
func (r *Router) togglePromotion(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	result, err := r.store.TogglePromotion(req.Context(), id)
	if errors.Is(err, inventory.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		r.respondSoftFailure(w, "Could not update item", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": result})
}

// deleteItem soft-deletes one item
func (r *Router) deleteItem(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	err = r.store.SoftDelete(req.Context(), id)
	if errors.Is(err, inventory.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		r.respondSoftFailure(w, "Could not delete item", err)
		return
	}

	respondSuccess(w, nil)
}

// inventoryStats returns the aggregate stats. It never fails: a broken or
// absent store degrades to zeros.
func (r *Router) inventoryStats(w http.ResponseWriter, req *http.Request) {
	stats, err := r.store.Stats(req.Context())
	if err != nil {
		stats = &inventory.Stats{}
	}
	respondSuccess(w, map[string]interface{}{"stats": stats})
}

// WhatsAppAlertRequest is the manual alert dispatch payload
type WhatsAppAlertRequest struct {
	AlertDays int  `json:"alertDays"`
	ForceSend bool `json:"forceSend,omitempty"`
}

// sendWhatsAppAlert renders the expiration digest and sends it via WhatsApp
func (r *Router) sendWhatsAppAlert(w http.ResponseWriter, req *http.Request) {
	var body WhatsAppAlertRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.AlertDays <= 0 {
		body.AlertDays = 7
	}

	r.dispatchDigest(w, req, r.whatsapp, body.AlertDays, body.ForceSend)
}

// sendReport renders the expiration digest and emails it
func (r *Router) sendReport(w http.ResponseWriter, req *http.Request) {
	var body WhatsAppAlertRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.AlertDays <= 0 {
		body.AlertDays = 7
	}

	r.dispatchDigest(w, req, r.email, body.AlertDays, body.ForceSend)
}

func (r *Router) dispatchDigest(w http.ResponseWriter, req *http.Request, sender notify.Sender, alertDays int, forceSend bool) {
	items, err := r.store.ListActive(req.Context(), inventory.ListFilters{MaxDaysRemaining: &alertDays})
	if err != nil {
		r.respondSoftFailure(w, "Could not load expiring products", err)
		return
	}

	if len(items) == 0 && !forceSend {
		respondSuccess(w, map[string]interface{}{
			"sent":    false,
			"message": "No products close to expiration",
		})
		return
	}

	message := notify.RenderDigest(notify.DigestData{
		GeneratedAt: time.Now(),
		AlertDays:   alertDays,
		Items:       items,
	})

	result := sender.Send(req.Context(), message, nil)
	r.logAlert(req, sender.Channel(), result)

	if !result.Success {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":   false,
			"message":   "Notification could not be delivered",
			"errorKind": result.ErrorKind,
			"error":     result.Detail,
		})
		return
	}

	respondSuccess(w, map[string]interface{}{
		"sent":              true,
		"productCount":      len(items),
		"providerMessageId": result.ProviderMessageID,
	})
}

// logAlert records a manual dispatch in the alert log; failures only log
func (r *Router) logAlert(req *http.Request, channel string, result notify.SendResult) {
	payload, _ := json.Marshal(result)
	entry := models.AlertLog{
		Kind:    notify.KindDigest,
		Channel: channel,
		Success: result.Success,
		Payload: payload,
	}
	r.db.WithContext(req.Context()).Create(&entry)
}
