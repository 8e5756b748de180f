package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is the aggregate root for a comment and its replies. Replies
// are addressed by ID.
type Comment struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID      primitive.ObjectID `json:"post_id" bson:"post_id"`
	PostOwnerID uint               `json:"post_owner_id" bson:"post_owner_id"`
	UserID      uint               `json:"user_id" bson:"user_id"`
	Content     string             `json:"content" bson:"content"`
	Reactions   `bson:",inline"`
	Replies     []Reply   `json:"replies" bson:"replies"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type Reply struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Content   string             `json:"content" bson:"content"`
	Reactions `bson:",inline"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func NewReply(userID uint, content string, now time.Time) Reply {
	return Reply{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   content,
		Reactions: Reactions{Likes: []Reaction{}, Dislikes: []Reaction{}},
		CreatedAt: now,
	}
}

func (c *Comment) Reply(id primitive.ObjectID) (*Reply, error) {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			return &c.Replies[i], nil
		}
	}
	return nil, ErrReplyNotFound
}

// RemoveReply deletes a reply authored by userID.
func (c *Comment) RemoveReply(replyID primitive.ObjectID, userID uint) (Reply, error) {
	for i, r := range c.Replies {
		if r.ID != replyID {
			continue
		}
		if r.UserID != userID {
			return Reply{}, ErrNotOwner
		}
		c.Replies = append(c.Replies[:i], c.Replies[i+1:]...)
		return r, nil
	}
	return Reply{}, ErrReplyNotFound
}

// CreateCommentRequest defines the request body for commenting or replying
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// ReplyDetail is a reply with its author populated.
type ReplyDetail struct {
	Reply
	Author        UserCompact `json:"author"`
	LikesCount    int         `json:"likes_count"`
	DislikesCount int         `json:"dislikes_count"`
}

// CommentDetail is a comment with authors populated.
type CommentDetail struct {
	Comment
	Author        UserCompact   `json:"author"`
	LikesCount    int           `json:"likes_count"`
	DislikesCount int           `json:"dislikes_count"`
	Replies       []ReplyDetail `json:"replies"`
}
