package models

import "time"

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

type Reaction struct {
	UserID uint      `json:"user_id" bson:"user_id"`
	Date   time.Time `json:"date" bson:"date"`
}

// Reactions holds the likes and dislikes of one content item. A user
// appears in at most one of the two lists.
type Reactions struct {
	Likes    []Reaction `json:"likes" bson:"likes"`
	Dislikes []Reaction `json:"dislikes" bson:"dislikes"`
}

// ToggleResult describes the state after a toggle and the transition that
// produced it.
type ToggleResult struct {
	LikesCount    int          `json:"likes_count"`
	DislikesCount int          `json:"dislikes_count"`
	IsLiked       bool         `json:"is_liked"`
	IsDisliked    bool         `json:"is_disliked"`
	Kind          ReactionKind `json:"-"`
	Added         bool         `json:"-"`
}

// Delta is the signed counter change for the toggled kind.
func (t ToggleResult) Delta() int64 {
	if t.Added {
		return 1
	}
	return -1
}

// Toggle flips userID's membership in the kind list. Adding removes any
// opposite reaction from the same user.
func (r *Reactions) Toggle(kind ReactionKind, userID uint, now time.Time) ToggleResult {
	own, other := &r.Likes, &r.Dislikes
	if kind == ReactionDislike {
		own, other = &r.Dislikes, &r.Likes
	}

	if idx := indexOf(*own, userID); idx >= 0 {
		*own = append((*own)[:idx], (*own)[idx+1:]...)
	} else {
		*own = append(*own, Reaction{UserID: userID, Date: now})
		if j := indexOf(*other, userID); j >= 0 {
			*other = append((*other)[:j], (*other)[j+1:]...)
		}
	}
	return r.Outcome(kind, userID)
}

// Outcome describes the lists after a toggle of kind by userID. A toggle
// leaves userID in the kind list exactly when it added the reaction.
func (r *Reactions) Outcome(kind ReactionKind, userID uint) ToggleResult {
	return ToggleResult{
		LikesCount:    len(r.Likes),
		DislikesCount: len(r.Dislikes),
		IsLiked:       r.Has(ReactionLike, userID),
		IsDisliked:    r.Has(ReactionDislike, userID),
		Kind:          kind,
		Added:         r.Has(kind, userID),
	}
}

func (r *Reactions) Has(kind ReactionKind, userID uint) bool {
	if kind == ReactionDislike {
		return indexOf(r.Dislikes, userID) >= 0
	}
	return indexOf(r.Likes, userID) >= 0
}

// UserIDs returns the ids of everyone who reacted with kind, oldest first.
func (r *Reactions) UserIDs(kind ReactionKind) []uint {
	list := r.Likes
	if kind == ReactionDislike {
		list = r.Dislikes
	}
	ids := make([]uint, len(list))
	for i, re := range list {
		ids[i] = re.UserID
	}
	return ids
}

func indexOf(list []Reaction, userID uint) int {
	for i, re := range list {
		if re.UserID == userID {
			return i
		}
	}
	return -1
}

// ReactionList is the liker and disliker identities of a content item.
type ReactionList struct {
	Likes    []UserCompact `json:"likes"`
	Dislikes []UserCompact `json:"dislikes"`
}
