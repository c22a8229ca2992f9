package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dias221467/friendgraph/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps users in process memory with the same update semantics
// as the Mongo repository. Users are returned in insertion order.
type MemoryUserRepository struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[primitive.ObjectID]*models.User),
	}
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, fmt.Errorf("%w: username %q or email %q", ErrDuplicateKey, user.Username, user.Email)
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
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

	r.users[user.ID] = cloneUser(user)
	r.order = append(r.order, user.ID)
	return user, nil
}

func (r *MemoryUserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

// GetAllUserDocuments round-trips each user through BSON so callers see the same
// value types a Mongo cursor would produce.
func (r *MemoryUserRepository) GetAllUserDocuments(context.Context) ([]bson.M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]bson.M, 0, len(r.order))
	for _, id := range r.order {
		raw, err := bson.Marshal(r.users[id])
		if err != nil {
			return nil, fmt.Errorf("failed to encode user %s: %v", id.Hex(), err)
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %v", id.Hex(), err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *MemoryUserRepository) PushPendingRequest(_ context.Context, receiverID primitive.ObjectID, req models.PendingRequest) error {
	return r.mutate(receiverID, func(u *models.User) {
		u.PendingRequests = append(u.PendingRequests, req)
	})
}

func (r *MemoryUserRepository) PushSentRequest(_ context.Context, senderID, receiverID primitive.ObjectID) error {
	return r.mutate(senderID, func(u *models.User) {
		u.SentRequests = append(u.SentRequests, receiverID)
	})
}

func (r *MemoryUserRepository) PullPendingRequest(_ context.Context, userID, fromUserID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) {
		kept := u.PendingRequests[:0]
		for _, req := range u.PendingRequests {
			if req.FromUserID != fromUserID {
				kept = append(kept, req)
			}
		}
		u.PendingRequests = kept
	})
}

func (r *MemoryUserRepository) PullSentRequest(_ context.Context, senderID, receiverID primitive.ObjectID) error {
	return r.mutate(senderID, func(u *models.User) {
		u.SentRequests, _ = pullID(u.SentRequests, receiverID)
	})
}

func (r *MemoryUserRepository) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) {
		if !u.HasFriend(friendID) {
			u.Friends = append(u.Friends, friendID)
		}
	})
}

func (r *MemoryUserRepository) RemoveFriend(_ context.Context, userID, friendID primitive.ObjectID) (bool, error) {
	var changed bool
	_ = r.mutate(userID, func(u *models.User) {
		u.Friends, changed = pullID(u.Friends, friendID)
	})
	return changed, nil
}

func (r *MemoryUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SetUser replaces or inserts a user document as-is. It exists to seed states that the
// regular operations never produce, such as one-sided friendships.
func (r *MemoryUserRepository) SetUser(user *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		r.order = append(r.order, user.ID)
	}
	r.users[user.ID] = cloneUser(user)
}

// mutate applies fn to the stored user. A missing user matches nothing, like an
// UpdateOne whose filter finds no document.
func (r *MemoryUserRepository) mutate(id primitive.ObjectID, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	fn(u)
	return nil
}

func pullID(ids []primitive.ObjectID, target primitive.ObjectID) ([]primitive.ObjectID, bool) {
	kept := ids[:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept, len(kept) != len(ids)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Friends = append([]primitive.ObjectID{}, u.Friends...)
	c.PendingRequests = append([]models.PendingRequest{}, u.PendingRequests...)
	c.SentRequests = append([]primitive.ObjectID{}, u.SentRequests...)
	return &c
}
