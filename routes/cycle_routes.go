package routes

import (
	"kindred_server/controllers"
	"kindred_server/services"

	"github.com/gorilla/mux"
)

func RegisterCycleRoutes(r *mux.Router, cycles *services.CycleService) {
	controller := controllers.NewCycleController(cycles)

	cycleRouter := r.PathPrefix("/api/cycles").Subrouter()
	cycleRouter.HandleFunc("/active", controller.GetActiveCycle).Methods("GET")
	cycleRouter.HandleFunc("", controller.CreateCycle).Methods("POST")
}
