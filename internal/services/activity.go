package services

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

// ActivityRecorder keeps the ActiveFriend and Contributor counters in step
// with content events. Counters are derived state: failures are logged and
// counted, never returned.
type ActivityRecorder struct {
	repo    repositories.ActivityRepository
	friends repositories.FriendshipRepository
	logger  *zap.Logger
}

func NewActivityRecorder(repo repositories.ActivityRepository, friends repositories.FriendshipRepository, logger *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{repo: repo, friends: friends, logger: logger}
}

// RecordReaction applies the delta of one like or dislike transition by
// actorID on content owned by ownerID.
func (a *ActivityRecorder) RecordReaction(ctx context.Context, ownerID, actorID uint, kind models.ReactionKind, delta int64) {
	field := models.FieldLikeCount
	if kind == models.ReactionDislike {
		field = models.FieldDislikeCount
	}
	a.adjust(ctx, ownerID, actorID, field, delta)
}

func (a *ActivityRecorder) RecordComment(ctx context.Context, ownerID, actorID uint, delta int64) {
	a.adjust(ctx, ownerID, actorID, models.FieldCommentCount, delta)
}

// PublicationAudience returns the users credited when authorID publishes
// now: the author and every current friend. If the friend list cannot be
// read only the author is credited.
func (a *ActivityRecorder) PublicationAudience(ctx context.Context, authorID uint) []uint {
	friendIDs, err := a.friends.FriendIDs(ctx, authorID)
	if err != nil {
		a.fail("contributors", err, zap.Uint("author", authorID))
		return []uint{authorID}
	}
	return append([]uint{authorID}, friendIDs...)
}

// RecordPublication applies delta to Contributor(u, authorID) for every u
// in audience in one batched statement. Deletion passes the audience stored
// at publication so the same rows are reversed.
func (a *ActivityRecorder) RecordPublication(ctx context.Context, authorID uint, audience []uint, field models.ContributionField, delta int64) {
	if err := a.repo.AdjustContributions(ctx, authorID, audience, field, delta); err != nil {
		a.fail("contributors", err,
			zap.Uint("author", authorID),
			zap.String("field", string(field)),
			zap.Int("rows", len(audience)))
	}
}

func (a *ActivityRecorder) adjust(ctx context.Context, ownerID, actorID uint, field models.InteractionField, delta int64) {
	if err := a.repo.AdjustInteraction(ctx, ownerID, actorID, field, delta); err != nil {
		a.fail("active_friends", err,
			zap.Uint("owner", ownerID),
			zap.Uint("actor", actorID),
			zap.String("field", string(field)),
			zap.Int64("delta", delta))
	}
}

func (a *ActivityRecorder) fail(table string, err error, fields ...zap.Field) {
	metrics.CounterUpdateFailures.WithLabelValues(table).Inc()
	a.logger.Warn("counter update failed", append(fields, zap.String("table", table), zap.Error(err))...)
}
