package handlers

import (
	"net/http"

	"github.com/Dias221467/friendgraph/internal/services"
	"github.com/Dias221467/friendgraph/pkg/logger"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type registerUserResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type listUsersResponse struct {
	Users []map[string]interface{} `json:"users"`
	Count int                      `json:"count"`
}

// RegisterUserHandler handles POST /users.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var body registerUserRequest
	if err := decodeBody(r, &body); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), body.Username, body.Email)
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		writeServiceError(w, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, registerUserResponse{
		Message:  "user created",
		UserID:   user.ID.Hex(),
		Username: user.Username,
	})
}

// GetAllUsersHandler handles GET /users.
func (h *UserHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		logger.Log.Errorf("Failed to fetch users: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listUsersResponse{Users: users, Count: len(users)})
}

// HealthHandler handles GET /health.
func (h *UserHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Health(r.Context()); err != nil {
		logger.Log.Errorf("Health check failed: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
