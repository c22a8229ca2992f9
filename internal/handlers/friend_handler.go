package handlers

import (
	"net/http"

	"github.com/Dias221467/friendgraph/internal/models"
	"github.com/Dias221467/friendgraph/internal/services"
	"github.com/Dias221467/friendgraph/pkg/logger"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints for friend requests and friendships.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

type sendFriendRequestBody struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

type sendFriendRequestResponse struct {
	Message  string `json:"message"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

type respondBody struct {
	UserID   string `json:"user_id"`
	SenderID string `json:"sender_id"`
	Action   string `json:"action"`
}

type respondResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type receivedRequestsResponse struct {
	ReceivedRequests []models.ReceivedRequest `json:"received_requests"`
	Count            int                      `json:"count"`
}

type sentRequestsResponse struct {
	SentRequests []models.SentRequest `json:"sent_requests"`
	Count        int                  `json:"count"`
}

type friendsResponse struct {
	Friends []models.PublicUser `json:"friends"`
	Count   int                 `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// SendFriendRequestHandler handles POST /friend-requests.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body sendFriendRequestBody
	if err := decodeBody(r, &body); err != nil {
		logger.Log.Warnf("Failed to decode friend request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.Service.SendFriendRequest(r.Context(), body.SenderID, body.ReceiverID)
	if err != nil {
		logger.Log.Warnf("Failed to send friend request: %v", err)
		writeServiceError(w, err)
		return
	}

	logger.Log.Infof("User %s sent a friend request to %s", body.SenderID, body.ReceiverID)
	writeJSON(w, http.StatusCreated, sendFriendRequestResponse{
		Message:  "friend request sent",
		Sender:   result.Sender,
		Receiver: result.Receiver,
	})
}

// GetReceivedRequestsHandler handles GET /friend-requests/received/{user_id}.
func (h *FriendHandler) GetReceivedRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	requests, err := h.Service.ListReceivedRequests(r.Context(), userID)
	if err != nil {
		logger.Log.Warnf("Failed to get received requests for %s: %v", userID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receivedRequestsResponse{ReceivedRequests: requests, Count: len(requests)})
}

// GetSentRequestsHandler handles GET /friend-requests/sent/{user_id}.
func (h *FriendHandler) GetSentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	requests, err := h.Service.ListSentRequests(r.Context(), userID)
	if err != nil {
		logger.Log.Warnf("Failed to get sent requests for %s: %v", userID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sentRequestsResponse{SentRequests: requests, Count: len(requests)})
}

// RespondToFriendRequestHandler handles PUT /friend-requests/respond.
func (h *FriendHandler) RespondToFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body respondBody
	if err := decodeBody(r, &body); err != nil {
		logger.Log.Warnf("Failed to decode respond body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	status, err := h.Service.RespondToRequest(r.Context(), body.UserID, body.SenderID, body.Action)
	if err != nil {
		logger.Log.Warnf("Failed to respond to friend request from %s: %v", body.SenderID, err)
		writeServiceError(w, err)
		return
	}

	message := "friend request rejected"
	if status == services.StatusAccepted {
		message = "friend request accepted"
	}

	logger.Log.Infof("User %s responded to friend request from %s (%s)", body.UserID, body.SenderID, status)
	writeJSON(w, http.StatusOK, respondResponse{Message: message, Status: status})
}

// GetFriendsHandler handles GET /friends/{user_id}.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	friends, err := h.Service.GetFriends(r.Context(), userID)
	if err != nil {
		logger.Log.Warnf("Failed to fetch friends for user %s: %v", userID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, friendsResponse{Friends: friends, Count: len(friends)})
}

// RemoveFriendHandler handles DELETE /friends/{user_id}/{friend_id}.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, friendID := vars["user_id"], vars["friend_id"]

	if err := h.Service.RemoveFriend(r.Context(), userID, friendID); err != nil {
		logger.Log.Warnf("Failed to remove friend %s from %s: %v", friendID, userID, err)
		writeServiceError(w, err)
		return
	}

	logger.Log.Infof("User %s removed friend %s", userID, friendID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "friend removed"})
}
