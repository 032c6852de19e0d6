package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TicketRequest is the create/update payload for tickets
type TicketRequest struct {
	BranchCode  string          `json:"branchCode"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	CreatedBy   string          `json:"createdBy"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

func validTicketStatus(status string) bool {
	switch status {
	case models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusClosed:
		return true
	}
	return false
}

// listTickets returns tickets, newest first, optionally filtered
func (r *Router) listTickets(w http.ResponseWriter, req *http.Request) {
	query := r.db.WithContext(req.Context()).Order("created_at DESC")

	if status := req.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if branch := req.URL.Query().Get("branchId"); branch != "" {
		query = query.Where("branch_code = ?", branch)
	}
	limit := 100
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var tickets []models.Ticket
	if err := query.Limit(limit).Find(&tickets).Error; err != nil {
		r.respondSoftFailure(w, "Could not load tickets", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": tickets})
}

// createTicket opens a new ticket with a generated reference
func (r *Router) createTicket(w http.ResponseWriter, req *http.Request) {
	var body TicketRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Subject == "" {
		respondError(w, http.StatusBadRequest, "subject is required")
		return
	}

	ticket := models.Ticket{
		Reference:   "TCK-" + uuid.NewString()[:8],
		BranchCode:  body.BranchCode,
		Subject:     body.Subject,
		Description: body.Description,
		Status:      models.TicketStatusOpen,
		Priority:    body.Priority,
		CreatedBy:   body.CreatedBy,
	}
	if ticket.Priority == "" {
		ticket.Priority = "normal"
	}
	if len(body.Metadata) > 0 {
		ticket.Metadata = datatypes.JSON(body.Metadata)
	}

	if err := r.db.WithContext(req.Context()).Create(&ticket).Error; err != nil {
		r.respondSoftFailure(w, "Could not create ticket", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    ticket,
	})
}

// getTicket returns one ticket by id
func (r *Router) getTicket(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	var ticket models.Ticket
	if err := r.db.WithContext(req.Context()).First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		r.respondSoftFailure(w, "Could not load ticket", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": ticket})
}

// updateTicket modifies a ticket's mutable fields
func (r *Router) updateTicket(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	var ticket models.Ticket
	if err := r.db.WithContext(req.Context()).First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		r.respondSoftFailure(w, "Could not load ticket", err)
		return
	}

	var body TicketRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if body.Status != "" {
		if !validTicketStatus(body.Status) {
			respondError(w, http.StatusBadRequest, "Invalid ticket status")
			return
		}
		ticket.Status = body.Status
	}
	if body.Subject != "" {
		ticket.Subject = body.Subject
	}
	if body.Description != "" {
		ticket.Description = body.Description
	}
	if body.Priority != "" {
		ticket.Priority = body.Priority
	}
	if len(body.Metadata) > 0 {
		ticket.Metadata = datatypes.JSON(body.Metadata)
	}

	if err := r.db.WithContext(req.Context()).Save(&ticket).Error; err != nil {
		r.respondSoftFailure(w, "Could not update ticket", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": ticket})
}

// deleteTicket soft-deletes a ticket
func (r *Router) deleteTicket(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	result := r.db.WithContext(req.Context()).Delete(&models.Ticket{}, id)
	if result.Error != nil {
		r.respondSoftFailure(w, "Could not delete ticket", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Ticket not found")
		return
	}

	respondSuccess(w, nil)
}
