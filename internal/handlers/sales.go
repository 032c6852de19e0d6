package handlers

import (
	"net/http"
	"time"
)

// salesSummary aggregates sales from a branch point-of-sale database. The
// date range defaults to the current day.
func (r *Router) salesSummary(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	branchID := q.Get("branchId")
	if branchID == "" {
		respondError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Second)

	if raw := q.Get("dateFrom"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "dateFrom must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if raw := q.Get("dateTo"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "dateTo must be YYYY-MM-DD")
			return
		}
		to = t.AddDate(0, 0, 1).Add(-time.Second)
	}

	summary, err := r.source.Sales(req.Context(), branchID, from, to)
	if err != nil {
		r.respondSoftFailure(w, "Could not reach the branch sales database", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": summary})
}
