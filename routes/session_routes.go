package routes

import (
	"field_mates_server/controllers"
	"field_mates_server/logging"
	"field_mates_server/services"

	"github.com/gorilla/mux"
)

// RegisterSessionRoutes sets up sign-in and account routes under /api/session
func RegisterSessionRoutes(r *mux.Router, sessionService *services.SessionService, userService *services.UserService, log logging.Logger) {
	controller := controllers.NewSessionController(sessionService, userService, log)

	sessionRouter := r.PathPrefix("/api/session").Subrouter()
	sessionRouter.HandleFunc("", controller.GetStatus).Methods("GET")
	sessionRouter.HandleFunc("/user", controller.GetCurrentUser).Methods("GET")
	sessionRouter.HandleFunc("/sign-in", controller.SignIn).Methods("POST")
	sessionRouter.HandleFunc("/account", controller.SaveAccount).Methods("POST")
	sessionRouter.HandleFunc("/sign-out", controller.SignOut).Methods("POST")
	sessionRouter.HandleFunc("/onboarding", controller.CompleteOnboarding).Methods("POST")
}
