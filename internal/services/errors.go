package services

import (
	"errors"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateIdentity = errors.New("username or email already exists")
	ErrAlreadyFriends    = errors.New("users are already friends")
	ErrDuplicateRequest  = errors.New("friend request already sent, waiting for a response")
	ErrSelfRequest       = errors.New("cannot send a friend request to yourself")
	ErrNotFound          = errors.New("not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// kindError carries a caller-facing message while matching one of the sentinels above
// through errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func invalidInput(msg string) error {
	return &kindError{kind: ErrInvalidInput, msg: msg}
}

func notFound(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

// storeFailure keeps the store's own error text.
func storeFailure(err error) error {
	return &kindError{kind: ErrStoreUnavailable, msg: err.Error()}
}
