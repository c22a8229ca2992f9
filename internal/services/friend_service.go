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

const (
	ActionAccept = "accept"
	ActionReject = "reject"

	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// FriendService drives the request and friendship lifecycle between two users. Each
// mutation writes both user documents through the store, inside a transaction when
// the store provides one.
type FriendService struct {
	repo repository.UserStore
	now  func() time.Time
}

// NewFriendService creates a new FriendService.
func NewFriendService(repo repository.UserStore) *FriendService {
	return &FriendService{
		repo: repo,
		now:  time.Now,
	}
}

// SentRequestResult names both sides of a request that was just sent.
type SentRequestResult struct {
	Sender   string
	Receiver string
}

// SendFriendRequest records a request from sender to receiver on both user documents.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderHex, receiverHex string) (*SentRequestResult, error) {
	if senderHex == "" || receiverHex == "" {
		return nil, invalidInput("sender_id and receiver_id are required")
	}
	if senderHex == receiverHex {
		return nil, ErrSelfRequest
	}

	senderID, receiverID, err := parseIDPair(senderHex, receiverHex)
	if err != nil {
		return nil, err
	}
	// Hex ids are case-insensitive, so equal ObjectIDs can arrive as different strings.
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	sender, receiver, err := s.loadPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	if sender.HasFriend(receiverID) || receiver.HasFriend(senderID) {
		return nil, ErrAlreadyFriends
	}
	// Only the same direction counts as a duplicate. A reverse request B->A stays
	// a separate pending entry.
	if receiver.HasPendingFrom(senderID) {
		return nil, ErrDuplicateRequest
	}

	req := models.PendingRequest{
		FromUserID: senderID,
		Timestamp:  s.now().UTC(),
	}
	err = s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.PushPendingRequest(ctx, receiverID, req); err != nil {
			return err
		}
		return s.repo.PushSentRequest(ctx, senderID, receiverID)
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to record friend request")
		return nil, storeFailure(err)
	}

	logrus.WithFields(logrus.Fields{
		"senderID":   senderHex,
		"receiverID": receiverHex,
	}).Info("Friend request sent")

	return &SentRequestResult{Sender: sender.Username, Receiver: receiver.Username}, nil
}

// ListReceivedRequests resolves the senders of the user's pending requests in arrival
// order. Senders that no longer exist are skipped.
func (s *FriendService) ListReceivedRequests(ctx context.Context, userHex string) ([]models.ReceivedRequest, error) {
	user, err := s.loadUser(ctx, userHex)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(user.PendingRequests))
	for _, req := range user.PendingRequests {
		ids = append(ids, req.FromUserID)
	}
	senders, err := s.repo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeFailure(err)
	}

	out := make([]models.ReceivedRequest, 0, len(user.PendingRequests))
	for _, req := range user.PendingRequests {
		sender, ok := senders[req.FromUserID]
		if !ok {
			continue
		}
		var ts *string
		if !req.Timestamp.IsZero() {
			formatted := models.FormatTimestamp(req.Timestamp)
			ts = &formatted
		}
		out = append(out, models.ReceivedRequest{
			SenderID:       req.FromUserID.Hex(),
			SenderUsername: sender.Username,
			SenderEmail:    sender.Email,
			Timestamp:      ts,
		})
	}
	return out, nil
}

// ListSentRequests resolves the receivers of the user's outstanding requests.
func (s *FriendService) ListSentRequests(ctx context.Context, userHex string) ([]models.SentRequest, error) {
	user, err := s.loadUser(ctx, userHex)
	if err != nil {
		return nil, err
	}

	receivers, err := s.repo.GetUsersByIDs(ctx, user.SentRequests)
	if err != nil {
		return nil, storeFailure(err)
	}

	out := make([]models.SentRequest, 0, len(user.SentRequests))
	for _, id := range user.SentRequests {
		receiver, ok := receivers[id]
		if !ok {
			continue
		}
		out = append(out, models.SentRequest{
			ReceiverID:       id.Hex(),
			ReceiverUsername: receiver.Username,
			ReceiverEmail:    receiver.Email,
		})
	}
	return out, nil
}

// RespondToRequest clears the request from both sides and, on accept, links the users
// as friends. It does not require the request to exist, so responding to an unknown
// pair only cleans up and still succeeds.
func (s *FriendService) RespondToRequest(ctx context.Context, userHex, senderHex, action string) (string, error) {
	if userHex == "" || senderHex == "" || (action != ActionAccept && action != ActionReject) {
		return "", invalidInput("user_id, sender_id and an action of accept or reject are required")
	}

	userID, senderID, err := parseIDPair(userHex, senderHex)
	if err != nil {
		return "", err
	}
	if userID == senderID {
		return "", ErrSelfRequest
	}

	if _, _, err := s.loadPair(ctx, userID, senderID); err != nil {
		return "", err
	}

	err = s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.PullPendingRequest(ctx, userID, senderID); err != nil {
			return err
		}
		if err := s.repo.PullSentRequest(ctx, senderID, userID); err != nil {
			return err
		}
		if action != ActionAccept {
			return nil
		}
		if err := s.repo.AddFriend(ctx, userID, senderID); err != nil {
			return err
		}
		return s.repo.AddFriend(ctx, senderID, userID)
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to respond to friend request")
		return "", storeFailure(err)
	}

	status := StatusRejected
	if action == ActionAccept {
		status = StatusAccepted
	}

	logrus.WithFields(logrus.Fields{
		"userID":   userHex,
		"senderID": senderHex,
		"status":   status,
	}).Info("Friend request answered")
	return status, nil
}

// GetFriends lists the user's friends in stored order, skipping ids that no longer resolve.
func (s *FriendService) GetFriends(ctx context.Context, userHex string) ([]models.PublicUser, error) {
	user, err := s.loadUser(ctx, userHex)
	if err != nil {
		return nil, err
	}

	friends, err := s.repo.GetUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, storeFailure(err)
	}

	out := make([]models.PublicUser, 0, len(user.Friends))
	for _, id := range user.Friends {
		friend, ok := friends[id]
		if !ok {
			continue
		}
		out = append(out, models.PublicUser{
			ID:       friend.ID.Hex(),
			Username: friend.Username,
			Email:    friend.Email,
		})
	}
	return out, nil
}

// RemoveFriend drops the edge from both users. It fails only when neither side had it,
// so a one-sided edge left by an earlier partial write is cleaned up and reported as success.
func (s *FriendService) RemoveFriend(ctx context.Context, userHex, friendHex string) error {
	userID, friendID, err := parseIDPair(userHex, friendHex)
	if err != nil {
		return err
	}

	var removedFromUser, removedFromFriend bool
	err = s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if removedFromUser, err = s.repo.RemoveFriend(ctx, userID, friendID); err != nil {
			return err
		}
		removedFromFriend, err = s.repo.RemoveFriend(ctx, friendID, userID)
		return err
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to remove friend")
		return storeFailure(err)
	}

	if !removedFromUser && !removedFromFriend {
		return notFound("friend relationship not found")
	}

	logrus.WithFields(logrus.Fields{
		"userID":   userHex,
		"friendID": friendHex,
	}).Info("Friend removed")
	return nil
}

func (s *FriendService) loadUser(ctx context.Context, userHex string) (*models.User, error) {
	id, err := parseID(userHex)
	if err != nil {
		return nil, err
	}
	return s.getUser(ctx, id)
}

func (s *FriendService) loadPair(ctx context.Context, a, b primitive.ObjectID) (*models.User, *models.User, error) {
	first, err := s.getUser(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	second, err := s.getUser(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func (s *FriendService) getUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	return user, nil
}

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalidInput("invalid user ID")
	}
	return id, nil
}

func parseIDPair(a, b string) (primitive.ObjectID, primitive.ObjectID, error) {
	first, err := parseID(a)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	second, err := parseID(b)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return first, second, nil
}
