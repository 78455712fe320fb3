package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"field_mates_server/identity"
	"field_mates_server/models"
	"field_mates_server/services"
	"field_mates_server/settings"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixVerifier accepts tokens of the form "valid:<user id>".
type prefixVerifier struct{}

func (prefixVerifier) Verify(tok string) (identity.Identity, error) {
	id, ok := strings.CutPrefix(tok, "valid:")
	if !ok || id == "" {
		return identity.Identity{}, fmt.Errorf("%w: unknown token", identity.ErrInvalidToken)
	}
	return identity.Identity{UserID: id, Email: id + "@privaterelay.appleid.com"}, nil
}

type testServer struct {
	router  *mux.Router
	users   *services.UserService
	matches *services.MatchService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := settings.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	store := services.NewRecordStore(services.NewMemoryDatabase(), nil, 0)
	users := &services.UserService{Store: store, Session: st}
	matches := &services.MatchService{Store: store}
	session := &services.SessionService{Settings: st, Verifier: prefixVerifier{}, Users: users}

	r := mux.NewRouter()
	r.HandleFunc("/health", HealthCheckHandler).Methods("GET")

	uc := NewUserController(users, nil)
	r.HandleFunc("/api/users", uc.CreateUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", uc.GetUser).Methods("GET")
	r.HandleFunc("/api/users/{id}", uc.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/users/{id}", uc.DeleteUser).Methods("DELETE")
	r.HandleFunc("/api/users/{id}/username-available", uc.UsernameAvailable).Methods("GET")
	r.HandleFunc("/api/users/{id}/profile-picture", uc.GetProfilePicture).Methods("GET")

	mc := NewMatchController(matches, nil)
	r.HandleFunc("/api/matches", mc.GetMatches).Methods("GET")
	r.HandleFunc("/api/matches", mc.CreateMatch).Methods("POST")
	r.HandleFunc("/api/matches/{id}", mc.GetMatch).Methods("GET")
	r.HandleFunc("/api/matches/{id}", mc.UpdateMatch).Methods("PUT")
	r.HandleFunc("/api/matches/{id}", mc.DeleteMatch).Methods("DELETE")
	r.HandleFunc("/api/matches/{id}/participants", mc.AddParticipant).Methods("POST")
	r.HandleFunc("/api/matches/{id}/participants/{userId}", mc.RemoveParticipant).Methods("DELETE")
	r.HandleFunc("/api/matches/{id}/participations", mc.GetParticipations).Methods("GET")

	sc := NewSessionController(session, users, nil)
	r.HandleFunc("/api/session", sc.GetStatus).Methods("GET")
	r.HandleFunc("/api/session/user", sc.GetCurrentUser).Methods("GET")
	r.HandleFunc("/api/session/sign-in", sc.SignIn).Methods("POST")
	r.HandleFunc("/api/session/account", sc.SaveAccount).Methods("POST")
	r.HandleFunc("/api/session/sign-out", sc.SignOut).Methods("POST")

	return &testServer{router: r, users: users, matches: matches}
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func Test_StatusFor(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect int
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad", services.ErrInvalidInput), expect: http.StatusBadRequest},
		{name: "missing identifier", err: services.ErrMissingIdentifier, expect: http.StatusBadRequest},
		{name: "not signed in", err: services.ErrNotSignedIn, expect: http.StatusUnauthorized},
		{name: "no token", err: identity.ErrNoToken, expect: http.StatusUnauthorized},
		{name: "invalid token", err: identity.ErrInvalidToken, expect: http.StatusUnauthorized},
		{name: "not found", err: services.ErrNotFound, expect: http.StatusNotFound},
		{name: "already exists", err: errors.Join(services.ErrTransport, services.ErrAlreadyExists), expect: http.StatusConflict},
		{name: "username taken", err: services.ErrUsernameTaken, expect: http.StatusConflict},
		{name: "transport", err: services.ErrTransport, expect: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), expect: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, StatusFor(tc.err))
		})
	}
}

func Test_HealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func Test_UserController(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)

	w := s.do(t, "POST", "/api/users", map[string]interface{}{
		"id":        "u1",
		"email":     "one@example.com",
		"username":  "one",
		"firstName": "Ana",
		"lastName":  "Pop",
		"bio":       "winger",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeResponse[models.User](t, w)
	assert.Equal("u1", created.ID)
	require.NotNil(t, created.RecordID)

	w = s.do(t, "POST", "/api/users", map[string]interface{}{
		"id": "u1", "email": "x@example.com", "username": "x", "firstName": "X", "lastName": "Y",
	})
	assert.Equal(http.StatusConflict, w.Code)

	w = s.do(t, "GET", "/api/users/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(created, decodeResponse[models.User](t, w))

	w = s.do(t, "PUT", "/api/users/u1", map[string]interface{}{
		"email":     "one@example.com",
		"username":  "one",
		"firstName": "Ana",
		"lastName":  "Popescu",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeResponse[models.User](t, w)
	assert.Equal("Popescu", updated.LastName)
	assert.Nil(updated.Bio)

	w = s.do(t, "GET", "/api/users/u2/username-available?username=one", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(`{"username":"one","available":false}`, w.Body.String())

	w = s.do(t, "GET", "/api/users/u2/username-available", nil)
	assert.Equal(http.StatusBadRequest, w.Code)

	w = s.do(t, "GET", "/api/users/u1/profile-picture", nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = s.do(t, "DELETE", "/api/users/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, "GET", "/api/users/u1", nil)
	assert.Equal(http.StatusNotFound, w.Code)
	body := decodeResponse[ErrorResponse](t, w)
	assert.Equal(http.StatusNotFound, body.Status)
}

func Test_UserController_ProfilePicture(t *testing.T) {
	s := newTestServer(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err := s.users.CreateUser(context.Background(), &models.User{
		ID: "u1", Email: "a@b.com", Username: "one", FirstName: "A", LastName: "B", ProfilePicture: png,
	})
	require.NoError(t, err)

	w := s.do(t, "GET", "/api/users/u1/profile-picture", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())
}

func Test_UserController_BadBody(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "POST", "/api/users", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "POST", "/api/users", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing id")
}

func Test_MatchController(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)
	matchDate := time.Date(2025, time.July, 4, 19, 0, 0, 0, time.UTC)

	w := s.do(t, "POST", "/api/matches", map[string]interface{}{
		"matchDate":   matchDate,
		"location":    "Parcul Herastrau",
		"latitude":    44.47,
		"longitude":   26.08,
		"maxPlayers":  2,
		"skillLevel":  2,
		"organizerId": "u1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	match := decodeResponse[models.Match](t, w)
	assert.NotEmpty(match.ID)
	assert.Equal([]string{}, match.Participants)

	w = s.do(t, "POST", "/api/matches", map[string]interface{}{
		"matchDate": matchDate, "location": "Nowhere", "maxPlayers": 0, "skillLevel": 2, "organizerId": "u1",
	})
	assert.Equal(http.StatusBadRequest, w.Code)

	for _, userID := range []string{"u1", "u2"} {
		w = s.do(t, "POST", "/api/matches/"+match.ID+"/participants", map[string]string{"userId": userID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = s.do(t, "POST", "/api/matches/"+match.ID+"/participants", map[string]string{"userId": "u3"})
	require.Equal(t, http.StatusOK, w.Code)
	full := decodeResponse[joinResponse](t, w)
	assert.Equal([]string{"u1", "u2"}, full.Match.Participants)
	assert.Nil(full.Participation)

	w = s.do(t, "POST", "/api/matches/"+match.ID+"/participants", map[string]string{})
	assert.Equal(http.StatusBadRequest, w.Code)

	w = s.do(t, "DELETE", "/api/matches/"+match.ID+"/participants/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal([]string{"u2"}, decodeResponse[models.Match](t, w).Participants)

	w = s.do(t, "GET", "/api/matches/"+match.ID+"/participations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	statuses := map[string]models.MatchStatus{}
	for _, p := range decodeResponse[[]models.MatchParticipants](t, w) {
		statuses[p.UserID] = p.Status
	}
	assert.Equal(map[string]models.MatchStatus{"u1": models.MatchStatusLeft, "u2": models.MatchStatusJoined}, statuses)

	w = s.do(t, "GET", "/api/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(decodeResponse[[]models.Match](t, w), 1)

	w = s.do(t, "DELETE", "/api/matches/"+match.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, "GET", "/api/matches/"+match.ID, nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_MatchController_NonUTCDate(t *testing.T) {
	s := newTestServer(t)
	kickoff := time.Date(2025, time.July, 4, 21, 0, 0, 0, time.FixedZone("EEST", 3*60*60))

	w := s.do(t, "POST", "/api/matches", map[string]interface{}{
		"matchDate": kickoff, "location": "Arena", "maxPlayers": 10, "skillLevel": 1, "organizerId": "u1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeResponse[models.Match](t, w)

	stored, err := s.matches.FetchMatch(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, stored.MatchDate.Location())
	assert.True(t, kickoff.Equal(stored.MatchDate))
}

func Test_SessionController(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)

	w := s.do(t, "GET", "/api/session/user", nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(t, "POST", "/api/session/sign-in", nil, "Authorization", "Bearer forged")
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(t, "POST", "/api/session/sign-in", map[string]string{})
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(t, "POST", "/api/session/sign-in", nil, "Authorization", "Bearer valid:u1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeResponse[services.SignInResult](t, w)
	assert.False(result.AccountExists)
	assert.Equal("u1", result.Identity.UserID)

	w = s.do(t, "POST", "/api/session/account", map[string]interface{}{
		"username":  "one",
		"firstName": "Ana",
		"lastName":  "Pop",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal("u1@privaterelay.appleid.com", decodeResponse[models.User](t, w).Email)

	w = s.do(t, "GET", "/api/session/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal("one", decodeResponse[models.User](t, w).Username)

	w = s.do(t, "POST", "/api/session/sign-in", map[string]string{"identityToken": "valid:u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(decodeResponse[services.SignInResult](t, w).AccountExists)

	w = s.do(t, "POST", "/api/session/sign-out", nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = s.do(t, "GET", "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(settings.Values{Email: "u1@privaterelay.appleid.com"}, decodeResponse[settings.Values](t, w))
}
