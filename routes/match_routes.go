package routes

import (
	"field_mates_server/controllers"
	"field_mates_server/logging"
	"field_mates_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match operations under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService, log logging.Logger) {
	controller := controllers.NewMatchController(matchService, log)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()
	matchRouter.HandleFunc("", controller.GetMatches).Methods("GET")
	matchRouter.HandleFunc("", controller.CreateMatch).Methods("POST")
	matchRouter.HandleFunc("/{id}", controller.GetMatch).Methods("GET")
	matchRouter.HandleFunc("/{id}", controller.UpdateMatch).Methods("PUT")
	matchRouter.HandleFunc("/{id}", controller.DeleteMatch).Methods("DELETE")
	matchRouter.HandleFunc("/{id}/participants", controller.AddParticipant).Methods("POST")
	matchRouter.HandleFunc("/{id}/participants/{userId}", controller.RemoveParticipant).Methods("DELETE")
	matchRouter.HandleFunc("/{id}/participations", controller.GetParticipations).Methods("GET")
}
