package services

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.uber.org/zap"
)

var (
	errUnknownReaction = models.NewError(models.ErrBadRequest, "Unknown reaction")
	errUnknownContent  = models.NewError(models.ErrBadRequest, "Unknown content type")
)

// ToggleReaction flips userID's like or dislike on the referenced item.
// Only the toggled kind's counter moves, by +1 on add and -1 on removal.
func (s *ContentService) ToggleReaction(ctx context.Context, ref ContentRef, userID uint, kind models.ReactionKind) (models.ToggleResult, error) {
	if !kind.Valid() {
		return models.ToggleResult{}, errUnknownReaction
	}
	now := s.now()
	switch ref.Kind {
	case KindPost:
		return s.togglePost(ctx, ref.ID, userID, kind, now)
	case KindStory:
		return s.toggleStory(ctx, ref.ID, userID, kind, now)
	case KindComment:
		return s.toggleComment(ctx, ref.ID, userID, kind, now)
	case KindReply:
		return s.toggleReply(ctx, ref.ID, ref.ReplyID, userID, kind, now)
	}
	return models.ToggleResult{}, errUnknownContent
}

func (s *ContentService) togglePost(ctx context.Context, id string, userID uint, kind models.ReactionKind, now time.Time) (models.ToggleResult, error) {
	if _, err := s.visiblePost(ctx, id, userID); err != nil {
		return models.ToggleResult{}, err
	}
	post, err := s.posts.ToggleReaction(ctx, id, kind, userID, now)
	if err != nil {
		return models.ToggleResult{}, err
	}
	res := post.Outcome(kind, userID)

	s.activity.RecordReaction(ctx, post.UserID, userID, kind, res.Delta())
	if res.Added {
		s.notifier.Notify(ctx, models.Notification{
			Type:   pick(kind, models.NotificationPostLike, models.NotificationPostDislike),
			FromID: userID,
			ToID:   post.UserID,
			PostID: post.ID.Hex(),
		})
	}
	return res, nil
}

func (s *ContentService) toggleStory(ctx context.Context, id string, userID uint, kind models.ReactionKind, now time.Time) (models.ToggleResult, error) {
	if _, err := s.liveStory(ctx, id, userID); err != nil {
		return models.ToggleResult{}, err
	}
	story, err := s.stories.ToggleReaction(ctx, id, kind, userID, now)
	if err != nil {
		return models.ToggleResult{}, err
	}
	res := story.Outcome(kind, userID)

	s.activity.RecordReaction(ctx, story.UserID, userID, kind, res.Delta())
	if res.Added {
		s.notifier.Notify(ctx, models.Notification{
			Type:    pick(kind, models.NotificationStoryLike, models.NotificationStoryDislike),
			FromID:  userID,
			ToID:    story.UserID,
			StoryID: story.ID.Hex(),
		})
	}
	return res, nil
}

func (s *ContentService) toggleComment(ctx context.Context, id string, userID uint, kind models.ReactionKind, now time.Time) (models.ToggleResult, error) {
	if _, err := s.visibleComment(ctx, id, userID); err != nil {
		return models.ToggleResult{}, err
	}
	comment, err := s.comments.ToggleReaction(ctx, id, kind, userID, now)
	if err != nil {
		return models.ToggleResult{}, err
	}
	res := comment.Outcome(kind, userID)

	if res.Added {
		s.notifier.Notify(ctx, models.Notification{
			Type:      pick(kind, models.NotificationCommentLike, models.NotificationCommentDislike),
			FromID:    userID,
			ToID:      comment.UserID,
			PostID:    comment.PostID.Hex(),
			CommentID: comment.ID.Hex(),
		})
	}
	return res, nil
}

func (s *ContentService) toggleReply(ctx context.Context, commentID, replyID string, userID uint, kind models.ReactionKind, now time.Time) (models.ToggleResult, error) {
	rid, err := parseReplyID(replyID)
	if err != nil {
		return models.ToggleResult{}, err
	}
	if _, err := s.visibleComment(ctx, commentID, userID); err != nil {
		return models.ToggleResult{}, err
	}
	comment, err := s.comments.ToggleReplyReaction(ctx, commentID, rid, kind, userID, now)
	if err != nil {
		return models.ToggleResult{}, err
	}
	reply, err := comment.Reply(rid)
	if err != nil {
		return models.ToggleResult{}, err
	}
	res := reply.Outcome(kind, userID)

	if res.Added {
		s.notifier.Notify(ctx, models.Notification{
			Type:      pick(kind, models.NotificationReplyLike, models.NotificationReplyDislike),
			FromID:    userID,
			ToID:      reply.UserID,
			PostID:    comment.PostID.Hex(),
			CommentID: comment.ID.Hex(),
			ReplyID:   reply.ID.Hex(),
		})
	}
	return res, nil
}

// AddComment creates a comment on a post and links it from the post.
func (s *ContentService) AddComment(ctx context.Context, postID string, userID uint, content string) (*models.CommentDetail, error) {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:      post.ID,
		PostOwnerID: post.UserID,
		UserID:      userID,
		Content:     content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.posts.AddCommentRef(ctx, post.ID, comment.ID); err != nil {
		if delErr := s.comments.DeleteComment(ctx, comment.ID.Hex()); delErr != nil {
			s.logger.Error("orphaned comment", zap.String("comment_id", comment.ID.Hex()), zap.Error(delErr))
		}
		return nil, err
	}

	s.activity.RecordComment(ctx, post.UserID, userID, 1)
	s.notifier.Notify(ctx, models.Notification{
		Type:      models.NotificationComment,
		FromID:    userID,
		ToID:      post.UserID,
		PostID:    post.ID.Hex(),
		CommentID: comment.ID.Hex(),
	})

	detail := commentDetail(*comment, s.authors(ctx, userID))
	return &detail, nil
}

// AddReply appends a reply to a comment and returns it with its author.
func (s *ContentService) AddReply(ctx context.Context, commentID string, userID uint, content string) (*models.ReplyDetail, error) {
	if _, err := s.visibleComment(ctx, commentID, userID); err != nil {
		return nil, err
	}
	reply := models.NewReply(userID, content, s.now())
	comment, err := s.comments.AddReply(ctx, commentID, reply)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, models.Notification{
		Type:      models.NotificationCommentReply,
		FromID:    userID,
		ToID:      comment.UserID,
		PostID:    comment.PostID.Hex(),
		CommentID: comment.ID.Hex(),
		ReplyID:   reply.ID.Hex(),
	})

	detail := replyDetail(reply, s.authors(ctx, userID))
	return &detail, nil
}

// DeleteContent removes an item owned by userID together with its
// reference from the parent, then reverses the counters it contributed.
// Reply deletion leaves counters untouched since reply creation never
// incremented them.
func (s *ContentService) DeleteContent(ctx context.Context, ref ContentRef, userID uint) error {
	switch ref.Kind {
	case KindPost:
		return s.deletePost(ctx, ref.ID, userID)
	case KindStory:
		return s.deleteStory(ctx, ref.ID, userID)
	case KindComment:
		return s.deleteComment(ctx, ref.ID, userID)
	case KindReply:
		rid, err := parseReplyID(ref.ReplyID)
		if err != nil {
			return err
		}
		return s.comments.RemoveReply(ctx, ref.ID, rid, userID)
	}
	return errUnknownContent
}

func (s *ContentService) deletePost(ctx context.Context, id string, userID uint) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.ErrNotOwner
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return err
	}
	if _, err := s.comments.DeleteByPostID(ctx, post.ID); err != nil {
		s.logger.Warn("delete comments of removed post", zap.String("post_id", id), zap.Error(err))
	}

	s.reverseReactions(ctx, post.UserID, &post.Reactions)
	for _, c := range comments {
		s.activity.RecordComment(ctx, post.UserID, c.UserID, -1)
	}
	s.activity.RecordPublication(ctx, post.UserID, post.ContributorIDs, models.FieldSharedPostCount, -1)
	return nil
}

func (s *ContentService) deleteStory(ctx context.Context, id string, userID uint) error {
	story, err := s.stories.GetStoryByID(ctx, id)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return models.ErrNotOwner
	}
	if err := s.stories.DeleteStory(ctx, id); err != nil {
		return err
	}
	s.reverseReactions(ctx, story.UserID, &story.Reactions)
	s.activity.RecordPublication(ctx, story.UserID, story.ContributorIDs, models.FieldSharedStoryCount, -1)
	return nil
}

func (s *ContentService) deleteComment(ctx context.Context, id string, userID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.ErrNotOwner
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return err
	}
	if err := s.posts.RemoveCommentRef(ctx, comment.PostID, comment.ID); err != nil {
		s.logger.Warn("unlink deleted comment", zap.String("comment_id", id), zap.Error(err))
	}
	s.activity.RecordComment(ctx, comment.PostOwnerID, comment.UserID, -1)
	return nil
}

func (s *ContentService) reverseReactions(ctx context.Context, ownerID uint, r *models.Reactions) {
	for _, id := range r.UserIDs(models.ReactionLike) {
		s.activity.RecordReaction(ctx, ownerID, id, models.ReactionLike, -1)
	}
	for _, id := range r.UserIDs(models.ReactionDislike) {
		s.activity.RecordReaction(ctx, ownerID, id, models.ReactionDislike, -1)
	}
}

// FetchReactions returns the liker and disliker identities of an item
// viewerID may see.
func (s *ContentService) FetchReactions(ctx context.Context, ref ContentRef, viewerID uint) (*models.ReactionList, error) {
	var reactions models.Reactions
	switch ref.Kind {
	case KindPost:
		post, err := s.visiblePost(ctx, ref.ID, viewerID)
		if err != nil {
			return nil, err
		}
		reactions = post.Reactions
	case KindStory:
		story, err := s.liveStory(ctx, ref.ID, viewerID)
		if err != nil {
			return nil, err
		}
		reactions = story.Reactions
	case KindComment, KindReply:
		comment, err := s.visibleComment(ctx, ref.ID, viewerID)
		if err != nil {
			return nil, err
		}
		reactions = comment.Reactions
		if ref.Kind == KindReply {
			rid, err := parseReplyID(ref.ReplyID)
			if err != nil {
				return nil, err
			}
			reply, err := comment.Reply(rid)
			if err != nil {
				return nil, err
			}
			reactions = reply.Reactions
		}
	default:
		return nil, errUnknownContent
	}

	likers := reactions.UserIDs(models.ReactionLike)
	dislikers := reactions.UserIDs(models.ReactionDislike)
	byID, err := compactUsers(ctx, s.users, append(append([]uint{}, likers...), dislikers...))
	if err != nil {
		return nil, err
	}
	return &models.ReactionList{
		Likes:    orderedCompacts(likers, byID),
		Dislikes: orderedCompacts(dislikers, byID),
	}, nil
}

// authors loads display identities for a freshly written item. The item
// is already stored, so a lookup failure only leaves the author blank.
func (s *ContentService) authors(ctx context.Context, ids ...uint) map[uint]models.UserCompact {
	byID, err := compactUsers(ctx, s.users, ids)
	if err != nil {
		s.logger.Warn("load authors", zap.Uints("user_ids", ids), zap.Error(err))
		return map[uint]models.UserCompact{}
	}
	return byID
}

func pick(kind models.ReactionKind, like, dislike models.NotificationType) models.NotificationType {
	if kind == models.ReactionDislike {
		return dislike
	}
	return like
}
