package models

import "errors"

// Error kinds. Handlers map each kind to an HTTP status.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// Error is a domain error with a message safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError returns an error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrUserNotFound         = NewError(ErrNotFound, "User not found")
	ErrPostNotFound         = NewError(ErrNotFound, "Post not found")
	ErrStoryNotFound        = NewError(ErrNotFound, "Story not found")
	ErrCommentNotFound      = NewError(ErrNotFound, "Comment not found")
	ErrReplyNotFound        = NewError(ErrNotFound, "Reply not found")
	ErrNotificationNotFound = NewError(ErrNotFound, "Notification not found")
	ErrRequestNotFound      = NewError(ErrNotFound, "Friend request not found")

	ErrSelfRequest      = NewError(ErrBadRequest, "You cannot send a friend request to yourself")
	ErrAlreadyFriends   = NewError(ErrBadRequest, "You are already friends with this user")
	ErrDuplicateRequest = NewError(ErrBadRequest, "Friend request already sent")
	ErrNotFriends       = NewError(ErrBadRequest, "You are not friends with this user")
	ErrInvalidID        = NewError(ErrBadRequest, "Invalid ID")

	ErrNotOwner = NewError(ErrForbidden, "You are not allowed to modify this content")

	ErrEmailTaken    = NewError(ErrConflict, "User with this email already registered")
	ErrUsernameTaken = NewError(ErrConflict, "Username is already taken")
)
