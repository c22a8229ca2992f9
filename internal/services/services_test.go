package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/friendgraph/internal/models"
	"github.com/Dias221467/friendgraph/internal/repository"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *repository.MemoryUserRepository
	users   *UserService
	friends *FriendService
}

func newFixture() *fixture {
	repo := repository.NewMemoryUserRepository()
	users := NewUserService(repo)
	users.now = func() time.Time { return fixedNow }
	friends := NewFriendService(repo)
	friends.now = func() time.Time { return fixedNow }
	return &fixture{repo: repo, users: users, friends: friends}
}

func (f *fixture) register(t *testing.T, name string) string {
	t.Helper()
	u, err := f.users.RegisterUser(context.Background(), name, name+"@x")
	require.NoError(t, err)
	return u.ID.Hex()
}

func (f *fixture) user(t *testing.T, hex string) *models.User {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	u, err := f.repo.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func oid(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}

// failingStore fails reads and pings, and delegates everything else to memory.
type failingStore struct {
	*repository.MemoryUserRepository
	err error
}

func (s *failingStore) GetUserByID(context.Context, primitive.ObjectID) (*models.User, error) {
	return nil, s.err
}

func (s *failingStore) GetAllUserDocuments(context.Context) ([]bson.M, error) {
	return nil, s.err
}

func (s *failingStore) ExistsByUsernameOrEmail(context.Context, string, string) (bool, error) {
	return false, s.err
}

func (s *failingStore) Ping(context.Context) error {
	return s.err
}

func newFailingStore() *failingStore {
	return &failingStore{
		MemoryUserRepository: repository.NewMemoryUserRepository(),
		err:                  errors.New("connection refused"),
	}
}
