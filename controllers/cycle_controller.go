package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"kindred_server/services"
)

// CycleController handles HTTP requests for prompt cycles
type CycleController struct {
	Cycles *services.CycleService
}

// NewCycleController creates a new CycleController instance
func NewCycleController(cycles *services.CycleService) *CycleController {
	return &CycleController{Cycles: cycles}
}

// GetActiveCycle returns the currently active cycle
func (cc *CycleController) GetActiveCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := cc.Cycles.GetActiveCycle(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if cycle == nil {
		http.Error(w, "no active cycle", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cycle": cycle,
	})
}

// CreateCycle authors a scheduled cycle for the week of releaseAt
func (cc *CycleController) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Prompt    string `json:"prompt"`
		ReleaseAt string `json:"releaseAt"`
		MatchAt   string `json:"matchAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	releaseAt, err := time.Parse(time.RFC3339, request.ReleaseAt)
	if err != nil {
		http.Error(w, "releaseAt must be RFC 3339", http.StatusBadRequest)
		return
	}
	matchAt, err := time.Parse(time.RFC3339, request.MatchAt)
	if err != nil {
		http.Error(w, "matchAt must be RFC 3339", http.StatusBadRequest)
		return
	}

	cycle, err := cc.Cycles.CreateCycle(r.Context(), request.Prompt, releaseAt, matchAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Cycle created",
		"cycle":   cycle,
	})
}
