package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered identity together with the relationship lists it carries.
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username        string               `bson:"username" json:"username"`
	Email           string               `bson:"email" json:"email"`
	Friends         []primitive.ObjectID `bson:"friends" json:"friends"`
	PendingRequests []PendingRequest     `bson:"pendingRequests" json:"pendingRequests"`
	SentRequests    []primitive.ObjectID `bson:"sentRequests" json:"sentRequests"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
}

// PendingRequest is an invitation the owning user has received but not yet resolved.
type PendingRequest struct {
	FromUserID primitive.ObjectID `bson:"fromUserId" json:"fromUserId"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// HasFriend reports whether id is in the user's friends list.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// HasPendingFrom reports whether the user holds an unresolved request from senderID.
func (u *User) HasPendingFrom(senderID primitive.ObjectID) bool {
	for _, req := range u.PendingRequests {
		if req.FromUserID == senderID {
			return true
		}
	}
	return false
}

type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ReceivedRequest struct {
	SenderID       string  `json:"sender_id"`
	SenderUsername string  `json:"sender_username"`
	SenderEmail    string  `json:"sender_email"`
	Timestamp      *string `json:"timestamp"`
}

type SentRequest struct {
	ReceiverID       string `json:"receiver_id"`
	ReceiverUsername string `json:"receiver_username"`
	ReceiverEmail    string `json:"receiver_email"`
}

// FormatTimestamp renders t as ISO-8601 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
