package models

// ActiveFriend counts what FriendID did to UserID's content.
type ActiveFriend struct {
	UserID       uint  `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FriendID     uint  `json:"friend_id" gorm:"primaryKey;autoIncrement:false;index"`
	LikeCount    int64 `json:"like_count" gorm:"not null;default:0"`
	CommentCount int64 `json:"comment_count" gorm:"not null;default:0"`
	DislikeCount int64 `json:"dislike_count" gorm:"not null;default:0"`
}

func (a ActiveFriend) Total() int64 {
	return a.LikeCount + a.CommentCount + a.DislikeCount
}

// Contributor counts what FriendID published, attributed to UserID.
// The row with UserID == FriendID holds the author's own totals.
type Contributor struct {
	UserID           uint  `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FriendID         uint  `json:"friend_id" gorm:"primaryKey;autoIncrement:false;index"`
	SharedPostCount  int64 `json:"shared_post_count" gorm:"not null;default:0"`
	SharedStoryCount int64 `json:"shared_story_count" gorm:"not null;default:0"`
}

func (c Contributor) Total() int64 {
	return c.SharedPostCount + c.SharedStoryCount
}

// InteractionField names an ActiveFriend counter column.
type InteractionField string

const (
	FieldLikeCount    InteractionField = "like_count"
	FieldCommentCount InteractionField = "comment_count"
	FieldDislikeCount InteractionField = "dislike_count"
)

// ContributionField names a Contributor counter column.
type ContributionField string

const (
	FieldSharedPostCount  ContributionField = "shared_post_count"
	FieldSharedStoryCount ContributionField = "shared_story_count"
)

// RankedActiveFriend is an entry of the active-friends ranking.
type RankedActiveFriend struct {
	UserCompact
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	DislikeCount int64 `json:"dislike_count"`
	Total        int64 `json:"total"`
}

// RankedContributor is an entry of the top-contributors ranking.
type RankedContributor struct {
	UserCompact
	SharedPostCount  int64 `json:"shared_post_count"`
	SharedStoryCount int64 `json:"shared_story_count"`
	Total            int64 `json:"total"`
}
