package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kindred_server/services"
)

// MatchController handles HTTP requests for reading and revealing matches
type MatchController struct {
	Records *services.MatchRecordService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(records *services.MatchRecordService) *MatchController {
	return &MatchController{Records: records}
}

// GetMatchRecord fetches one user's record for one cycle
func (mc *MatchController) GetMatchRecord(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	cycleID := r.URL.Query().Get("cycleId")
	if userID == "" || cycleID == "" {
		http.Error(w, "userId and cycleId are required", http.StatusBadRequest)
		return
	}

	record, err := mc.Records.GetRecord(r.Context(), userID, cycleID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "no match record for this user and cycle", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"record": record,
	})
}

// GetMatchHistory fetches all of a user's match records across cycles
func (mc *MatchController) GetMatchHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	records, err := mc.Records.GetHistory(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"records": records,
	})
}

// RevealMatch flips the revealed flag for one matched user
func (mc *MatchController) RevealMatch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID        string `json:"userId"`
		CycleID       string `json:"cycleId"`
		MatchedUserID string `json:"matchedUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.CycleID == "" || request.MatchedUserID == "" {
		http.Error(w, "userId, cycleId and matchedUserId are required", http.StatusBadRequest)
		return
	}

	record, err := mc.Records.RevealMatch(r.Context(), request.UserID, request.CycleID, request.MatchedUserID)
	if errors.Is(err, services.ErrMatchNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Match revealed",
		"record":  record,
	})
}
