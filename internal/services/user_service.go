package services

import (
	"context"
	"errors"
	"time"

	"github.com/Dias221467/friendgraph/internal/models"
	"github.com/Dias221467/friendgraph/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService encapsulates registration and listing of users.
type UserService struct {
	repo repository.UserStore
	now  func() time.Time
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserStore) *UserService {
	return &UserService{
		repo: repo,
		now:  time.Now,
	}
}

// RegisterUser creates a user with empty relationship lists. Username and email are
// compared exactly as given.
func (s *UserService) RegisterUser(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" || email == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, invalidInput("username and email are required")
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, storeFailure(err)
	}
	if exists {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"email":    email,
		}).Warn("Username or email already in use")
		return nil, ErrDuplicateIdentity
	}

	user := &models.User{
		Username:        username,
		Email:           email,
		Friends:         []primitive.ObjectID{},
		PendingRequests: []models.PendingRequest{},
		SentRequests:    []primitive.ObjectID{},
		CreatedAt:       s.now().UTC(),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, ErrDuplicateIdentity
	}
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, storeFailure(err)
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User registered successfully")
	return created, nil
}

// ListUsers returns every stored user document in display-safe form.
func (s *UserService) ListUsers(ctx context.Context) ([]map[string]interface{}, error) {
	docs, err := s.repo.GetAllUserDocuments(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, storeFailure(err)
	}

	users := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		users = append(users, models.DisplaySafe(doc))
	}
	return users, nil
}

// Health reports whether the underlying store is reachable.
func (s *UserService) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return storeFailure(err)
	}
	return nil
}
