package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryLifetime is how long a story stays visible after publication.
const StoryLifetime = 24 * time.Hour

// Story represents a user's story stored in MongoDB
type Story struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	MediaURL   string             `json:"media_url" bson:"media_url"`
	MediaType  string             `json:"media_type" bson:"media_type"`
	Text       string             `json:"text,omitempty" bson:"text,omitempty"`
	Visibility Privacy            `json:"visibility" bson:"visibility"`
	Reactions  `bson:",inline"`
	// ContributorIDs are the users credited at publication.
	ContributorIDs []uint    `json:"-" bson:"contributor_ids"`
	ExpiresAt      time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	MediaURL   string  `json:"media_url" validate:"required,url"`
	MediaType  string  `json:"media_type" validate:"required,oneof=image video"`
	Text       string  `json:"text,omitempty" validate:"omitempty,max=500"`
	Visibility Privacy `json:"visibility,omitempty" validate:"omitempty,oneof=public friends private"`
}

// StoryView is an active story with its author and the viewer's flags.
type StoryView struct {
	Story
	Author        UserCompact `json:"author"`
	LikesCount    int         `json:"likes_count"`
	DislikesCount int         `json:"dislikes_count"`
	IsLiked       bool        `json:"is_liked"`
	IsDisliked    bool        `json:"is_disliked"`
}
