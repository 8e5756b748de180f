package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyFriends Privacy = "friends"
	PrivacyPrivate Privacy = "private"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	Content    string             `json:"content" bson:"content"`
	ImageURLs  []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	VideoURLs  []string           `json:"video_urls,omitempty" bson:"video_urls,omitempty"`
	Privacy    Privacy            `json:"privacy" bson:"privacy"`
	Reactions  `bson:",inline"`
	CommentIDs []primitive.ObjectID `json:"comment_ids" bson:"comment_ids"`
	// ContributorIDs are the users whose Contributor row was credited at
	// publication; deletion reverses exactly these rows.
	ContributorIDs []uint    `json:"-" bson:"contributor_ids"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// VisiblePrivacies lists the privacy levels of ownerID's content that
// viewerID may see.
func VisiblePrivacies(ownerID, viewerID uint, isFriend bool) []Privacy {
	switch {
	case ownerID == viewerID:
		return []Privacy{PrivacyPublic, PrivacyFriends, PrivacyPrivate}
	case isFriend:
		return []Privacy{PrivacyPublic, PrivacyFriends}
	}
	return []Privacy{PrivacyPublic}
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=2000"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURLs []string `json:"video_urls,omitempty" validate:"omitempty,dive,url"`
	Privacy   Privacy  `json:"privacy,omitempty" validate:"omitempty,oneof=public friends private"`
}

// PostDetails is a post with viewer flags, likers and populated comments.
type PostDetails struct {
	Post
	Author        UserCompact     `json:"author"`
	LikesCount    int             `json:"likes_count"`
	DislikesCount int             `json:"dislikes_count"`
	IsLiked       bool            `json:"is_liked"`
	IsDisliked    bool            `json:"is_disliked"`
	LikedBy       []UserCompact   `json:"liked_by"`
	Comments      []CommentDetail `json:"comments"`
}

// FeedPost is a post as shown in a feed.
type FeedPost struct {
	Post
	Author        UserCompact `json:"author"`
	LikesCount    int         `json:"likes_count"`
	DislikesCount int         `json:"dislikes_count"`
	CommentsCount int         `json:"comments_count"`
	IsLiked       bool        `json:"is_liked"`
	IsDisliked    bool        `json:"is_disliked"`
}
