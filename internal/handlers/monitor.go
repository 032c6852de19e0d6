package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/models"
)

// BranchHealthView is a branch with its current outage state, if any
type BranchHealthView struct {
	BranchCode       string     `json:"branchCode"`
	Name             string     `json:"name"`
	Healthy          bool       `json:"healthy"`
	ErrorKind        string     `json:"errorKind,omitempty"`
	ProblemStartedAt *time.Time `json:"problemStartedAt,omitempty"`
	OutageSeconds    int64      `json:"outageSeconds,omitempty"`
}

// monitorBranches reports the health of every active branch. It reads the
// persisted outage rows, so the answer survives monitor restarts.
func (r *Router) monitorBranches(w http.ResponseWriter, req *http.Request) {
	var branches []models.Branch
	if err := r.db.WithContext(req.Context()).Where("active = ?", true).Order("code").Find(&branches).Error; err != nil {
		r.respondSoftFailure(w, "Could not load branches", err)
		return
	}

	var states []models.BranchMonitorState
	if err := r.db.WithContext(req.Context()).Find(&states).Error; err != nil {
		r.respondSoftFailure(w, "Could not load monitor state", err)
		return
	}
	byCode := make(map[string]models.BranchMonitorState, len(states))
	for _, s := range states {
		byCode[s.BranchCode] = s
	}

	now := time.Now()
	views := make([]BranchHealthView, 0, len(branches))
	unhealthy := 0
	for _, b := range branches {
		view := BranchHealthView{BranchCode: b.Code, Name: b.Name, Healthy: true}
		if s, ok := byCode[b.Code]; ok {
			started := s.ProblemStartedAt
			view.Healthy = false
			view.ErrorKind = s.ErrorKind
			view.ProblemStartedAt = &started
			view.OutageSeconds = int64(now.Sub(started).Seconds())
			unhealthy++
		}
		views = append(views, view)
	}

	respondSuccess(w, map[string]interface{}{
		"data": views,
		"summary": map[string]int{
			"total":     len(views),
			"healthy":   len(views) - unhealthy,
			"unhealthy": unhealthy,
		},
	})
}

// monitorAlerts lists recent alert log entries, newest first
func (r *Router) monitorAlerts(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	query := r.db.WithContext(req.Context()).Order("created_at DESC").Limit(limit)
	if branch := req.URL.Query().Get("branchId"); branch != "" {
		query = query.Where("branch_code = ?", branch)
	}

	var logs []models.AlertLog
	if err := query.Find(&logs).Error; err != nil {
		r.respondSoftFailure(w, "Could not load alert history", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": logs})
}
