package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository maintains the ActiveFriend and Contributor counters.
// Every mutation is a single upsert with an in-database increment that
// never drops below zero.
type ActivityRepository interface {
	AdjustInteraction(ctx context.Context, ownerID, actorID uint, field models.InteractionField, delta int64) error
	AdjustContributions(ctx context.Context, authorID uint, userIDs []uint, field models.ContributionField, delta int64) error
	ActiveFriends(ctx context.Context, userID uint, friendIDs []uint) ([]models.ActiveFriend, error)
	Contributors(ctx context.Context, userID uint, friendIDs []uint) ([]models.Contributor, error)
}

type PostgresActivityRepository struct {
	db *gorm.DB
}

func NewPostgresActivityRepository(db *gorm.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

// AdjustInteraction adds delta to one counter of ActiveFriend(ownerID, actorID).
func (r *PostgresActivityRepository) AdjustInteraction(ctx context.Context, ownerID, actorID uint, field models.InteractionField, delta int64) error {
	row := models.ActiveFriend{UserID: ownerID, FriendID: actorID}
	switch field {
	case models.FieldLikeCount:
		row.LikeCount = clampZero(delta)
	case models.FieldCommentCount:
		row.CommentCount = clampZero(delta)
	case models.FieldDislikeCount:
		row.DislikeCount = clampZero(delta)
	default:
		return fmt.Errorf("unknown interaction field %q", field)
	}

	return r.db.WithContext(ctx).
		Clauses(incrementOnConflict("active_friends", string(field), delta)).
		Create(&row).Error
}

// AdjustContributions adds delta to Contributor(u, authorID) for every u in
// userIDs with one multi-row statement.
func (r *PostgresActivityRepository) AdjustContributions(ctx context.Context, authorID uint, userIDs []uint, field models.ContributionField, delta int64) error {
	if field != models.FieldSharedPostCount && field != models.FieldSharedStoryCount {
		return fmt.Errorf("unknown contribution field %q", field)
	}

	seen := make(map[uint]struct{}, len(userIDs))
	rows := make([]models.Contributor, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		row := models.Contributor{UserID: id, FriendID: authorID}
		if field == models.FieldSharedPostCount {
			row.SharedPostCount = clampZero(delta)
		} else {
			row.SharedStoryCount = clampZero(delta)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(incrementOnConflict("contributors", string(field), delta)).
		Create(&rows).Error
}

func (r *PostgresActivityRepository) ActiveFriends(ctx context.Context, userID uint, friendIDs []uint) ([]models.ActiveFriend, error) {
	if len(friendIDs) == 0 {
		return nil, nil
	}
	var rows []models.ActiveFriend
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id IN ?", userID, friendIDs).
		Find(&rows).Error
	return rows, err
}

func (r *PostgresActivityRepository) Contributors(ctx context.Context, userID uint, friendIDs []uint) ([]models.Contributor, error) {
	if len(friendIDs) == 0 {
		return nil, nil
	}
	var rows []models.Contributor
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id IN ?", userID, friendIDs).
		Find(&rows).Error
	return rows, err
}

func incrementOnConflict(table, column string, delta int64) clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(fmt.Sprintf("GREATEST(%s.%s + ?, 0)", table, column), delta),
		}),
	}
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
