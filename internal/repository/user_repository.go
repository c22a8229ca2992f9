package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/friendgraph/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	client          *mongo.Client
	collection      *mongo.Collection
	useTransactions bool
}

// NewUserRepository creates a new instance of UserRepository.
// Transactions require a replica set or sharded cluster.
func NewUserRepository(db *mongo.Database, useTransactions bool) *UserRepository {
	return &UserRepository{
		client:          db.Client(),
		collection:      db.Collection("users"),
		useTransactions: useTransactions,
	}
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// CreateUser inserts a new user with empty relationship lists.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.PendingRequests == nil {
		user.PendingRequests = []models.PendingRequest{}
	}
	if user.SentRequests == nil {
		user.SentRequests = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logrus.WithField("username", user.Username).Warn("Duplicate username or email on insert")
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": []bson.M{{"username": username}, {"email": email}}}
	err := r.collection.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user identity: %v", err)
	}
	return true, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		logrus.WithField("userID", id.Hex()).Debug("User not found by ID")
		return nil, ErrUserNotFound
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %v", err)
	}
	return &user, nil
}

// GetUsersByIDs fetches the users that still exist for a list of ids, keyed by id.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	users := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users[user.ID] = &user
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %v", err)
	}
	return users, nil
}

// GetAllUserDocuments returns every user document as stored, in natural order.
func (r *UserRepository) GetAllUserDocuments(ctx context.Context) ([]bson.M, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return docs, nil
}

func (r *UserRepository) PushPendingRequest(ctx context.Context, receiverID primitive.ObjectID, req models.PendingRequest) error {
	return r.update(ctx, receiverID, bson.M{"$push": bson.M{"pendingRequests": req}}, "push pending request")
}

func (r *UserRepository) PushSentRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	return r.update(ctx, senderID, bson.M{"$push": bson.M{"sentRequests": receiverID}}, "push sent request")
}

func (r *UserRepository) PullPendingRequest(ctx context.Context, userID, fromUserID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{"$pull": bson.M{"pendingRequests": bson.M{"fromUserId": fromUserID}}}, "pull pending request")
}

func (r *UserRepository) PullSentRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	return r.update(ctx, senderID, bson.M{"$pull": bson.M{"sentRequests": receiverID}}, "pull sent request")
}

func (r *UserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	// $addToSet keeps the list free of duplicates
	return r.update(ctx, userID, bson.M{"$addToSet": bson.M{"friends": friendID}}, "add friend")
}

// RemoveFriend pulls friendID from the user's friends list.
func (r *UserRepository) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"friends": friendID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove friend from user %s: %v", userID.Hex(), err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *UserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.useTransactions {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (r *UserRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M, op string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"op":     op,
			"error":  err,
		}).Error("User update failed")
		return fmt.Errorf("failed to %s for user %s: %v", op, id.Hex(), err)
	}
	return nil
}
