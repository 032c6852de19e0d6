package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/utils"
	"gorm.io/gorm"
)

// BranchRequest is the create/update payload for the branch registry.
// CatalogPassword arrives in plaintext and is stored encrypted.
type BranchRequest struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Active          *bool   `json:"active,omitempty"`
	CatalogHost     string  `json:"catalogHost"`
	CatalogPort     int     `json:"catalogPort"`
	CatalogUser     string  `json:"catalogUser"`
	CatalogPassword *string `json:"catalogPassword,omitempty"`
	CatalogDatabase string  `json:"catalogDatabase"`
}

// listBranches returns every registered branch
func (r *Router) listBranches(w http.ResponseWriter, req *http.Request) {
	var branches []models.Branch
	if err := r.db.WithContext(req.Context()).Order("code").Find(&branches).Error; err != nil {
		r.respondSoftFailure(w, "Could not load branches", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"data": branches})
}

// createBranch registers a branch and encrypts its catalog credentials
func (r *Router) createBranch(w http.ResponseWriter, req *http.Request) {
	var body BranchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Code == "" || body.Name == "" || body.CatalogHost == "" {
		respondError(w, http.StatusBadRequest, "code, name and catalogHost are required")
		return
	}

	branch := models.Branch{
		Code:            body.Code,
		Name:            body.Name,
		Active:          true,
		CatalogHost:     body.CatalogHost,
		CatalogPort:     body.CatalogPort,
		CatalogUser:     body.CatalogUser,
		CatalogDatabase: body.CatalogDatabase,
	}
	if branch.CatalogPort == 0 {
		branch.CatalogPort = 3306
	}
	if body.Active != nil {
		branch.Active = *body.Active
	}
	if body.CatalogPassword != nil {
		encrypted, err := utils.EncryptCredential(*body.CatalogPassword, r.cfg.EncKey)
		if err != nil {
			r.respondSoftFailure(w, "Could not store catalog credentials", err)
			return
		}
		branch.CatalogPassword = encrypted
	}

	if err := r.db.WithContext(req.Context()).Create(&branch).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create branch (code might exist)")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    branch,
	})
}

// updateBranch modifies a registered branch. The stored password is only
// replaced when the payload carries one.
func (r *Router) updateBranch(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid branch id")
		return
	}

	var branch models.Branch
	if err := r.db.WithContext(req.Context()).First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Branch not found")
			return
		}
		r.respondSoftFailure(w, "Could not load branch", err)
		return
	}

	var body BranchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if body.Name != "" {
		branch.Name = body.Name
	}
	if body.CatalogHost != "" {
		branch.CatalogHost = body.CatalogHost
	}
	if body.CatalogPort != 0 {
		branch.CatalogPort = body.CatalogPort
	}
	if body.CatalogUser != "" {
		branch.CatalogUser = body.CatalogUser
	}
	if body.CatalogDatabase != "" {
		branch.CatalogDatabase = body.CatalogDatabase
	}
	if body.Active != nil {
		branch.Active = *body.Active
	}
	if body.CatalogPassword != nil {
		encrypted, err := utils.EncryptCredential(*body.CatalogPassword, r.cfg.EncKey)
		if err != nil {
			r.respondSoftFailure(w, "Could not store catalog credentials", err)
			return
		}
		branch.CatalogPassword = encrypted
	}

	if err := r.db.WithContext(req.Context()).Save(&branch).Error; err != nil {
		r.respondSoftFailure(w, "Could not update branch", err)
		return
	}

	respondSuccess(w, map[string]interface{}{"data": branch})
}

// deleteBranch removes a branch from the registry
func (r *Router) deleteBranch(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid branch id")
		return
	}

	result := r.db.WithContext(req.Context()).Delete(&models.Branch{}, id)
	if result.Error != nil {
		r.respondSoftFailure(w, "Could not delete branch", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Branch not found")
		return
	}

	respondSuccess(w, nil)
}
