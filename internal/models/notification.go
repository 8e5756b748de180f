package models

import "time"

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend-request"
	NotificationFriendAccepted NotificationType = "friend-accepted"
	NotificationFriendDeclined NotificationType = "friend-declined"
	NotificationPostLike       NotificationType = "post-like"
	NotificationPostDislike    NotificationType = "post-dislike"
	NotificationStoryLike      NotificationType = "story-like"
	NotificationStoryDislike   NotificationType = "story-dislike"
	NotificationComment        NotificationType = "comment"
	NotificationCommentReply   NotificationType = "comment-reply"
	NotificationCommentLike    NotificationType = "comment-like"
	NotificationCommentDislike NotificationType = "comment-dislike"
	NotificationReplyLike      NotificationType = "reply-like"
	NotificationReplyDislike   NotificationType = "reply-dislike"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	Type      NotificationType `json:"type" gorm:"size:30;index"`
	FromID    uint             `json:"from_id" gorm:"index"`
	ToID      uint             `json:"to_id" gorm:"index"`
	RequestID *uint            `json:"request_id,omitempty" gorm:"index"`
	PostID    string           `json:"post_id,omitempty" gorm:"size:24"`
	StoryID   string           `json:"story_id,omitempty" gorm:"size:24"`
	CommentID string           `json:"comment_id,omitempty" gorm:"size:24"`
	ReplyID   string           `json:"reply_id,omitempty" gorm:"size:24"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

// NotificationView is a notification with the sender's display fields.
type NotificationView struct {
	Notification
	From UserCompact `json:"from"`
}
