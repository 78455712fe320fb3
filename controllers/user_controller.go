package controllers

import (
	"fmt"
	"net/http"

	"field_mates_server/logging"
	"field_mates_server/models"
	"field_mates_server/services"

	"github.com/gorilla/mux"
)

// UserController handles requests related to users
type UserController struct {
	UserService *services.UserService
	Log         logging.Logger
}

// NewUserController creates a new instance of UserController
func NewUserController(userService *services.UserService, log logging.Logger) *UserController {
	return &UserController{UserService: userService, Log: logging.OrNoOp(log)}
}

func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := decodeBody(r, &user); err != nil {
		WriteError(w, c.Log, err)
		return
	}
	user.RecordID = nil
	user.InUTC()

	created, err := c.UserService.CreateUser(r.Context(), &user)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	c.Log.Infof("created user %s", created.ID)
	WriteJSONResponse(w, http.StatusCreated, created)
}

func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := c.UserService.FetchUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, user)
}

// UpdateUser replaces the stored fields of a user with the request body.
// Optional fields missing from the body are cleared.
func (c *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var user models.User
	if err := decodeBody(r, &user); err != nil {
		WriteError(w, c.Log, err)
		return
	}

	existing, err := c.UserService.FetchUser(r.Context(), id)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	user.ID = id
	user.RecordID = existing.RecordID
	user.InUTC()

	updated, err := c.UserService.UpdateUser(r.Context(), &user)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, updated)
}

func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	existing, err := c.UserService.FetchUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}

	deleted, err := c.UserService.DeleteUser(r.Context(), existing)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	c.Log.Infof("deleted user %s", existing.ID)
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// UsernameAvailable reports whether ?username= is free for the user.
func (c *UserController) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		WriteError(w, c.Log, fmt.Errorf("%w: username query parameter is required", services.ErrInvalidInput))
		return
	}

	taken, err := c.UserService.IsUsernameTaken(r.Context(), mux.Vars(r)["id"], username)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"username":  username,
		"available": !taken,
	})
}

// GetProfilePicture serves the user's picture as an image.
func (c *UserController) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	user, err := c.UserService.FetchUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	if len(user.ProfilePicture) == 0 {
		WriteError(w, c.Log, fmt.Errorf("user %s has no profile picture: %w", user.ID, services.ErrNotFound))
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(user.ProfilePicture))
	w.WriteHeader(http.StatusOK)
	w.Write(user.ProfilePicture)
}
