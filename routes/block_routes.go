package routes

import (
	"kindred_server/controllers"
	"kindred_server/services"

	"github.com/gorilla/mux"
)

func RegisterBlockRoutes(r *mux.Router, blocks *services.BlockService) {
	controller := controllers.NewBlockController(blocks)

	blockRouter := r.PathPrefix("/api/blocks").Subrouter()
	blockRouter.HandleFunc("", controller.BlockUser).Methods("POST")
	blockRouter.HandleFunc("", controller.UnblockUser).Methods("DELETE")
}
