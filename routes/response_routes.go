package routes

import (
	"kindred_server/controllers"
	"kindred_server/services"

	"github.com/gorilla/mux"
)

func RegisterResponseRoutes(r *mux.Router, responses *services.ResponseService) {
	controller := controllers.NewResponseController(responses)

	responseRouter := r.PathPrefix("/api/responses").Subrouter()
	responseRouter.HandleFunc("", controller.SubmitResponse).Methods("POST") // ✅ One answer per user per cycle
}
