package routes

import (
	"kindred_server/controllers"
	"kindred_server/services"

	"github.com/gorilla/mux"
)

func RegisterMatchRoutes(r *mux.Router, records *services.MatchRecordService) {
	controller := controllers.NewMatchController(records)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()
	matchRouter.HandleFunc("/history", controller.GetMatchHistory).Methods("GET")
	matchRouter.HandleFunc("/reveal", controller.RevealMatch).Methods("POST")
	matchRouter.HandleFunc("", controller.GetMatchRecord).Methods("GET") // ✅ Lookup by (userId, cycleId)
}
