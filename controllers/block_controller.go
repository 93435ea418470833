package controllers

import (
	"encoding/json"
	"net/http"

	"kindred_server/services"
)

// BlockController handles HTTP requests for the block registry
type BlockController struct {
	Blocks *services.BlockService
}

// NewBlockController creates a new BlockController instance
func NewBlockController(blocks *services.BlockService) *BlockController {
	return &BlockController{Blocks: blocks}
}

type blockRequest struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// BlockUser records a block; the pair is excluded from each other's matches
// in every future run
func (bc *BlockController) BlockUser(w http.ResponseWriter, r *http.Request) {
	var request blockRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetUserID == "" || request.UserID == request.TargetUserID {
		http.Error(w, "userId and a distinct targetUserId are required", http.StatusBadRequest)
		return
	}

	if err := bc.Blocks.BlockUser(r.Context(), request.UserID, request.TargetUserID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "User blocked"})
}

// UnblockUser removes a block the user created
func (bc *BlockController) UnblockUser(w http.ResponseWriter, r *http.Request) {
	var request blockRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetUserID == "" {
		http.Error(w, "userId and targetUserId are required", http.StatusBadRequest)
		return
	}

	if err := bc.Blocks.UnblockUser(r.Context(), request.UserID, request.TargetUserID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "User unblocked"})
}
