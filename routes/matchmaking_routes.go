package routes

import (
	"kindred_server/controllers"
	"kindred_server/services"

	"github.com/gorilla/mux"
)

func RegisterMatchmakingRoutes(r *mux.Router, matchmaking *services.MatchmakingService) {
	controller := controllers.NewMatchmakingController(matchmaking)

	matchmakingRouter := r.PathPrefix("/api/matchmaking").Subrouter()
	matchmakingRouter.HandleFunc("/run", controller.HandleRunCycle).Methods("POST") // ✅ Operator trigger for a matching run
}
