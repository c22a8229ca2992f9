package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every endpoint of the API on a fresh router.
func NewRouter(userHandler *UserHandler, friendHandler *FriendHandler) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/health", userHandler.HealthHandler).Methods("GET")

	// User routes
	router.HandleFunc("/users", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users", userHandler.GetAllUsersHandler).Methods("GET")

	// Friend request routes
	router.HandleFunc("/friend-requests", friendHandler.SendFriendRequestHandler).Methods("POST")
	router.HandleFunc("/friend-requests/received/{user_id}", friendHandler.GetReceivedRequestsHandler).Methods("GET")
	router.HandleFunc("/friend-requests/sent/{user_id}", friendHandler.GetSentRequestsHandler).Methods("GET")
	router.HandleFunc("/friend-requests/respond", friendHandler.RespondToFriendRequestHandler).Methods("PUT")

	// Friend routes
	router.HandleFunc("/friends/{user_id}", friendHandler.GetFriendsHandler).Methods("GET")
	router.HandleFunc("/friends/{user_id}/{friend_id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	return router
}
