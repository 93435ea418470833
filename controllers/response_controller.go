package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kindred_server/services"
)

// ResponseController handles HTTP requests for prompt answers
type ResponseController struct {
	Responses *services.ResponseService
}

// NewResponseController creates a new ResponseController instance
func NewResponseController(responses *services.ResponseService) *ResponseController {
	return &ResponseController{Responses: responses}
}

// SubmitResponse records a user's answer to the cycle's prompt
func (rc *ResponseController) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CycleID string `json:"cycleId"`
		UserID  string `json:"userId"`
		Answer  string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.CycleID == "" || request.UserID == "" || request.Answer == "" {
		http.Error(w, "cycleId, userId and answer are required", http.StatusBadRequest)
		return
	}

	response, err := rc.Responses.SubmitResponse(r.Context(), request.CycleID, request.UserID, request.Answer)
	if errors.Is(err, services.ErrAlreadyResponded) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Answer recorded",
		"response": response,
	})
}
