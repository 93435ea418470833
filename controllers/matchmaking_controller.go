package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"kindred_server/services"
)

// MatchmakingController exposes the operator trigger for a matching run
type MatchmakingController struct {
	Matchmaking *services.MatchmakingService
}

// NewMatchmakingController creates a new MatchmakingController instance
func NewMatchmakingController(matchmaking *services.MatchmakingService) *MatchmakingController {
	return &MatchmakingController{Matchmaking: matchmaking}
}

// HandleRunCycle triggers a matching run on demand. Body: {"force": bool}.
// A forced run skips the match-boundary check so an operator can re-run a
// cycle or run it early; re-runs are safe because the store upsert is
// idempotent.
func (mc *MatchmakingController) HandleRunCycle(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Force bool `json:"force"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&request) // empty body means a scheduled-style run
	}

	summary, err := mc.Matchmaking.RunCycle(r.Context(), request.Force)
	if errors.Is(err, services.ErrCycleNotDue) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Matching run failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Matching run completed",
		"summary": summary,
	})
}
