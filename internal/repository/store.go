package repository

import (
	"context"
	"errors"

	"github.com/Dias221467/friendgraph/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUserNotFound indicates no user document has the requested id.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateKey indicates an insert collided with an existing username or email.
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserStore is the document store behind the relationship operations. Every mutating
// method touches exactly one user document.
type UserStore interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	GetAllUserDocuments(ctx context.Context) ([]bson.M, error)

	PushPendingRequest(ctx context.Context, receiverID primitive.ObjectID, req models.PendingRequest) error
	PushSentRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error
	PullPendingRequest(ctx context.Context, userID, fromUserID primitive.ObjectID) error
	PullSentRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error

	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	// RemoveFriend reports whether the user's friends list actually changed.
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) (bool, error)

	// WithTransaction runs fn so that its writes commit together when the store
	// supports it. Otherwise fn's writes are applied independently.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
