package routes

import (
	"field_mates_server/controllers"
	"field_mates_server/logging"
	"field_mates_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up routes for user operations under /api/users
func RegisterUserRoutes(r *mux.Router, userService *services.UserService, log logging.Logger) {
	controller := controllers.NewUserController(userService, log)

	userRouter := r.PathPrefix("/api/users").Subrouter()
	userRouter.HandleFunc("", controller.CreateUser).Methods("POST")
	userRouter.HandleFunc("/{id}", controller.GetUser).Methods("GET")
	userRouter.HandleFunc("/{id}", controller.UpdateUser).Methods("PUT")
	userRouter.HandleFunc("/{id}", controller.DeleteUser).Methods("DELETE")
	userRouter.HandleFunc("/{id}/username-available", controller.UsernameAvailable).Methods("GET")
	userRouter.HandleFunc("/{id}/profile-picture", controller.GetProfilePicture).Methods("GET")
}
