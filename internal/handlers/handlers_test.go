package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dias221467/friendgraph/internal/repository"
	"github.com/Dias221467/friendgraph/internal/services"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRouter(store repository.UserStore) *mux.Router {
	return NewRouter(
		NewUserHandler(services.NewUserService(store)),
		NewFriendHandler(services.NewFriendService(store)),
	)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func registerUser(t *testing.T, router http.Handler, name string) string {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/users", map[string]string{"username": name, "email": name + "@x"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["user_id"].(string)
}

func TestFriendshipLifecycle(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())

	rec := doRequest(t, router, http.MethodPost, "/users", map[string]string{"username": "alice", "email": "alice@x"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	assert.Equal(t, "alice", created["username"])
	assert.NotEmpty(t, created["message"])
	aliceID := created["user_id"].(string)
	bobID := registerUser(t, router, "bob")

	rec = doRequest(t, router, http.MethodPost, "/friend-requests", map[string]string{"sender_id": aliceID, "receiver_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sent := decode(t, rec)
	assert.Equal(t, "alice", sent["sender"])
	assert.Equal(t, "bob", sent["receiver"])

	rec = doRequest(t, router, http.MethodGet, "/friend-requests/received/"+bobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	received := decode(t, rec)
	assert.EqualValues(t, 1, received["count"])
	entries := received["received_requests"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, aliceID, entry["sender_id"])
	assert.Equal(t, "alice", entry["sender_username"])
	assert.Equal(t, "alice@x", entry["sender_email"])
	assert.NotEmpty(t, entry["timestamp"])

	rec = doRequest(t, router, http.MethodGet, "/friend-requests/sent/"+aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sentList := decode(t, rec)
	assert.EqualValues(t, 1, sentList["count"])
	sentEntry := sentList["sent_requests"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, bobID, sentEntry["receiver_id"])
	assert.Equal(t, "bob", sentEntry["receiver_username"])

	rec = doRequest(t, router, http.MethodPut, "/friend-requests/respond", map[string]string{"user_id": bobID, "sender_id": aliceID, "action": "accept"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "accepted", decode(t, rec)["status"])

	rec = doRequest(t, router, http.MethodGet, "/friends/"+aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	friends := decode(t, rec)
	assert.EqualValues(t, 1, friends["count"])
	friend := friends["friends"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, bobID, friend["id"])
	assert.Equal(t, "bob", friend["username"])
	assert.Equal(t, "bob@x", friend["email"])

	rec = doRequest(t, router, http.MethodGet, "/friend-requests/received/"+bobID, nil)
	assert.EqualValues(t, 0, decode(t, rec)["count"])

	rec = doRequest(t, router, http.MethodDelete, "/friends/"+aliceID+"/"+bobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["message"])

	rec = doRequest(t, router, http.MethodGet, "/friends/"+aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	friends = decode(t, rec)
	assert.EqualValues(t, 0, friends["count"])
	assert.Empty(t, friends["friends"])

	rec = doRequest(t, router, http.MethodDelete, "/friends/"+aliceID+"/"+bobID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectFlow(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())
	aliceID := registerUser(t, router, "alice")
	bobID := registerUser(t, router, "bob")

	rec := doRequest(t, router, http.MethodPost, "/friend-requests", map[string]string{"sender_id": aliceID, "receiver_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/friend-requests/respond", map[string]string{"user_id": bobID, "sender_id": aliceID, "action": "reject"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", decode(t, rec)["status"])

	rec = doRequest(t, router, http.MethodGet, "/friends/"+bobID, nil)
	assert.EqualValues(t, 0, decode(t, rec)["count"])
	rec = doRequest(t, router, http.MethodGet, "/friend-requests/sent/"+aliceID, nil)
	assert.EqualValues(t, 0, decode(t, rec)["count"])
}

func TestRegisterUserErrors(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())
	registerUser(t, router, "alice")

	cases := []struct {
		name string
		body interface{}
	}{
		{"missing email", map[string]string{"username": "bob"}},
		{"missing username", map[string]string{"email": "bob@x"}},
		{"duplicate username", map[string]string{"username": "alice", "email": "new@x"}},
		{"duplicate email", map[string]string{"username": "carol", "email": "alice@x"}},
		{"not an object", "just a string"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/users", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestListUsersHandler(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())
	aliceID := registerUser(t, router, "alice")
	registerUser(t, router, "bob")

	rec := doRequest(t, router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["count"])

	first := body["users"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, aliceID, first["_id"])
	assert.Equal(t, "alice", first["username"])
	assert.IsType(t, "", first["created_at"])
	assert.Equal(t, []interface{}{}, first["friends"])
}

func TestSendFriendRequestHandlerErrors(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())
	aliceID := registerUser(t, router, "alice")
	bobID := registerUser(t, router, "bob")
	ghost := primitive.NewObjectID().Hex()

	rec := doRequest(t, router, http.MethodPost, "/friend-requests", map[string]string{"sender_id": aliceID, "receiver_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	cases := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"missing ids", map[string]string{}, http.StatusBadRequest},
		{"self request", map[string]string{"sender_id": aliceID, "receiver_id": aliceID}, http.StatusBadRequest},
		{"self request unknown user", map[string]string{"sender_id": ghost, "receiver_id": ghost}, http.StatusBadRequest},
		{"self request mixed case", map[string]string{"sender_id": aliceID, "receiver_id": strings.ToUpper(aliceID)}, http.StatusBadRequest},
		{"malformed id", map[string]string{"sender_id": "xyz", "receiver_id": bobID}, http.StatusBadRequest},
		{"duplicate", map[string]string{"sender_id": aliceID, "receiver_id": bobID}, http.StatusBadRequest},
		{"unknown receiver", map[string]string{"sender_id": aliceID, "receiver_id": ghost}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/friend-requests", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}

	rec = doRequest(t, router, http.MethodPut, "/friend-requests/respond", map[string]string{"user_id": bobID, "sender_id": aliceID, "action": "accept"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/friend-requests", map[string]string{"sender_id": bobID, "receiver_id": aliceID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.ErrAlreadyFriends.Error(), decode(t, rec)["error"])
}

func TestRespondHandlerErrors(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())
	aliceID := registerUser(t, router, "alice")
	bobID := registerUser(t, router, "bob")

	rec := doRequest(t, router, http.MethodPut, "/friend-requests/respond", map[string]string{"user_id": bobID, "sender_id": aliceID, "action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/friend-requests/respond", map[string]string{"user_id": "bad", "sender_id": aliceID, "action": "accept"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/friend-requests/respond", map[string]string{"user_id": primitive.NewObjectID().Hex(), "sender_id": aliceID, "action": "accept"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookupHandlersErrors(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())
	ghost := primitive.NewObjectID().Hex()

	for _, prefix := range []string{"/friend-requests/received/", "/friend-requests/sent/", "/friends/"} {
		rec := doRequest(t, router, http.MethodGet, prefix+"not-an-id", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, prefix)
		assert.NotEmpty(t, decode(t, rec)["error"])

		rec = doRequest(t, router, http.MethodGet, prefix+ghost, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, prefix)
		assert.Equal(t, "user not found", decode(t, rec)["error"])
	}

	rec := doRequest(t, router, http.MethodDelete, "/friends/not-an-id/"+ghost, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenStore struct {
	*repository.MemoryUserRepository
}

func (brokenStore) GetAllUserDocuments(context.Context) ([]bson.M, error) {
	return nil, errors.New("server selection timeout")
}

func (brokenStore) Ping(context.Context) error {
	return errors.New("server selection timeout")
}

func TestStoreFailureSurfacesRawError(t *testing.T) {
	router := newTestRouter(brokenStore{repository.NewMemoryUserRepository()})

	rec := doRequest(t, router, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server selection timeout", decode(t, rec)["error"])

	rec = doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(services.ErrDuplicateIdentity))
	assert.Equal(t, http.StatusBadRequest, statusFor(services.ErrSelfRequest))
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(services.ErrStoreUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("unexpected")))
}

func TestUnmatchedRoutesReturnJSON(t *testing.T) {
	router := newTestRouter(repository.NewMemoryUserRepository())

	rec := doRequest(t, router, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "route not found", decode(t, rec)["error"])

	rec = doRequest(t, router, http.MethodPatch, "/users", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method not allowed", decode(t, rec)["error"])
}
