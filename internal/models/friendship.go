package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// FriendRequest is the pending-request entity for an ordered (from, to) pair.
// A pair owns exactly one row; re-sending re-opens it.
type FriendRequest struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	FromID      uint          `json:"from_id" gorm:"uniqueIndex:idx_request_pair"`
	ToID        uint          `json:"to_id" gorm:"uniqueIndex:idx_request_pair;index"`
	Status      RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt   time.Time     `json:"created_at"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
}

// Friendship is one directed half of a friend edge. Both halves are
// written and deleted together.
type Friendship struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FriendID  uint      `json:"friend_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}

// SendFriendRequest defines the request body for sending a friend request
type SendFriendRequest struct {
	TargetID uint `json:"target_id" validate:"required"`
}

// PendingFriendRequest is an inbound request as shown to the recipient.
type PendingFriendRequest struct {
	RequestID      uint        `json:"request_id"`
	NotificationID uint        `json:"notification_id,omitempty"`
	From           UserCompact `json:"from"`
	CreatedAt      time.Time   `json:"created_at"`
}
