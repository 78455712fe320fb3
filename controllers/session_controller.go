package controllers

import (
	"errors"
	"net/http"

	"field_mates_server/identity"
	"field_mates_server/logging"
	"field_mates_server/services"
)

// SessionController handles sign-in, sign-out and the signed-in user's
// account.
type SessionController struct {
	SessionService *services.SessionService
	UserService    *services.UserService
	Log            logging.Logger
}

// NewSessionController creates a new instance of SessionController
func NewSessionController(sessionService *services.SessionService, userService *services.UserService, log logging.Logger) *SessionController {
	return &SessionController{SessionService: sessionService, UserService: userService, Log: logging.OrNoOp(log)}
}

type signInRequest struct {
	IdentityToken string `json:"identityToken"`
}

func (c *SessionController) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.SessionService.Status(r.Context())
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, status)
}

// SignIn accepts the identity token either as a bearer token or in the body.
func (c *SessionController) SignIn(w http.ResponseWriter, r *http.Request) {
	tok, err := identity.BearerToken(r)
	if errors.Is(err, identity.ErrNoToken) {
		var req signInRequest
		if err := decodeBody(r, &req); err != nil {
			WriteError(w, c.Log, err)
			return
		}
		if req.IdentityToken == "" {
			WriteError(w, c.Log, identity.ErrNoToken)
			return
		}
		tok = req.IdentityToken
	} else if err != nil {
		WriteError(w, c.Log, err)
		return
	}

	result, err := c.SessionService.SignIn(r.Context(), tok)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	c.Log.Infof("user %s signed in (account exists: %t)", result.Identity.UserID, result.AccountExists)
	WriteJSONResponse(w, http.StatusOK, result)
}

// SaveAccount creates or modifies the signed-in user's account.
func (c *SessionController) SaveAccount(w http.ResponseWriter, r *http.Request) {
	var in services.AccountInput
	if err := decodeBody(r, &in); err != nil {
		WriteError(w, c.Log, err)
		return
	}

	user, err := c.SessionService.SaveAccount(r.Context(), in)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, user)
}

func (c *SessionController) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := c.UserService.FetchCurrentUser(r.Context())
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, user)
}

func (c *SessionController) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := c.SessionService.SignOut(r.Context()); err != nil {
		WriteError(w, c.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *SessionController) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := c.SessionService.CompleteOnboarding(r.Context()); err != nil {
		WriteError(w, c.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
