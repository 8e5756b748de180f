package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindStory   ContentKind = "story"
	KindComment ContentKind = "comment"
	KindReply   ContentKind = "reply"
)

// ContentRef addresses a reactable item. Replies are addressed by their
// comment ID plus ReplyID.
type ContentRef struct {
	Kind    ContentKind
	ID      string
	ReplyID string
}

// ContentService is the content interaction core: publication, reactions,
// comments and replies, deletion, and the read models built on them.
type ContentService struct {
	users    repositories.UserRepository
	friends  repositories.FriendshipRepository
	posts    repositories.PostRepository
	stories  repositories.StoryRepository
	comments repositories.CommentRepository
	activity *ActivityRecorder
	notifier *Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewContentService(
	users repositories.UserRepository,
	friends repositories.FriendshipRepository,
	posts repositories.PostRepository,
	stories repositories.StoryRepository,
	comments repositories.CommentRepository,
	activity *ActivityRecorder,
	notifier *Notifier,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		users:    users,
		friends:  friends,
		posts:    posts,
		stories:  stories,
		comments: comments,
		activity: activity,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ContentService) CreatePost(ctx context.Context, userID uint, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		UserID:    userID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		VideoURLs: req.VideoURLs,
		Privacy:   req.Privacy,
	}
	post.ContributorIDs = s.activity.PublicationAudience(ctx, userID)
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.activity.RecordPublication(ctx, userID, post.ContributorIDs, models.FieldSharedPostCount, 1)
	return post, nil
}

func (s *ContentService) CreateStory(ctx context.Context, userID uint, req models.CreateStoryRequest) (*models.Story, error) {
	story := &models.Story{
		UserID:     userID,
		MediaURL:   req.MediaURL,
		MediaType:  req.MediaType,
		Text:       req.Text,
		Visibility: req.Visibility,
	}
	story.ContributorIDs = s.activity.PublicationAudience(ctx, userID)
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, err
	}
	s.activity.RecordPublication(ctx, userID, story.ContributorIDs, models.FieldSharedStoryCount, 1)
	return story, nil
}

// GetPostDetails returns the post with viewer flags, likers and comments
// with replies, all authors populated.
func (s *ContentService) GetPostDetails(ctx context.Context, postID string, viewerID uint) (*models.PostDetails, error) {
	post, err := s.visiblePost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	ids := append([]uint{post.UserID}, post.UserIDs(models.ReactionLike)...)
	for _, c := range comments {
		ids = append(ids, c.UserID)
		for _, r := range c.Replies {
			ids = append(ids, r.UserID)
		}
	}
	byID, err := compactUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	details := &models.PostDetails{
		Post:          *post,
		Author:        byID[post.UserID],
		LikesCount:    len(post.Likes),
		DislikesCount: len(post.Dislikes),
		IsLiked:       post.Has(models.ReactionLike, viewerID),
		IsDisliked:    post.Has(models.ReactionDislike, viewerID),
		LikedBy:       orderedCompacts(post.UserIDs(models.ReactionLike), byID),
		Comments:      make([]models.CommentDetail, 0, len(comments)),
	}
	for _, c := range comments {
		details.Comments = append(details.Comments, commentDetail(c, byID))
	}
	return details, nil
}

// Feed returns the viewer's feed, newest first.
func (s *ContentService) Feed(ctx context.Context, viewerID uint, page, limit int) ([]models.FeedPost, int64, error) {
	friendIDs, err := s.friends.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	posts, total, err := s.posts.GetFeed(ctx, viewerID, friendIDs, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, 0, err
	}
	feed, err := s.feedPosts(ctx, posts, viewerID)
	return feed, total, err
}

// ListUserPosts returns a page of ownerID's posts that viewerID may see.
// Privacy is filtered in the query so every page is full.
func (s *ContentService) ListUserPosts(ctx context.Context, ownerID, viewerID uint, page, limit int) ([]models.FeedPost, error) {
	privacies, err := s.visiblePrivacies(ctx, ownerID, viewerID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.GetPostsByUserID(ctx, ownerID, privacies, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, err
	}
	return s.feedPosts(ctx, posts, viewerID)
}

// ActiveStories returns unexpired stories the viewer may see.
func (s *ContentService) ActiveStories(ctx context.Context, viewerID uint) ([]models.StoryView, error) {
	friendIDs, err := s.friends.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	stories, err := s.stories.GetActiveStories(ctx, viewerID, friendIDs, s.now())
	if err != nil {
		return nil, err
	}
	return s.storyViews(ctx, stories, viewerID)
}

// UserStories returns ownerID's unexpired stories that viewerID may see.
func (s *ContentService) UserStories(ctx context.Context, ownerID, viewerID uint) ([]models.StoryView, error) {
	privacies, err := s.visiblePrivacies(ctx, ownerID, viewerID)
	if err != nil {
		return nil, err
	}
	stories, err := s.stories.GetActiveStoriesByUser(ctx, ownerID, privacies, s.now())
	if err != nil {
		return nil, err
	}
	return s.storyViews(ctx, stories, viewerID)
}

func (s *ContentService) storyViews(ctx context.Context, stories []models.Story, viewerID uint) ([]models.StoryView, error) {
	ids := make([]uint, len(stories))
	for i, st := range stories {
		ids[i] = st.UserID
	}
	byID, err := compactUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.StoryView, 0, len(stories))
	for _, st := range stories {
		views = append(views, models.StoryView{
			Story:         st,
			Author:        byID[st.UserID],
			LikesCount:    len(st.Likes),
			DislikesCount: len(st.Dislikes),
			IsLiked:       st.Has(models.ReactionLike, viewerID),
			IsDisliked:    st.Has(models.ReactionDislike, viewerID),
		})
	}
	return views, nil
}

func (s *ContentService) feedPosts(ctx context.Context, posts []models.Post, viewerID uint) ([]models.FeedPost, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.UserID
	}
	byID, err := compactUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, models.FeedPost{
			Post:          p,
			Author:        byID[p.UserID],
			LikesCount:    len(p.Likes),
			DislikesCount: len(p.Dislikes),
			CommentsCount: len(p.CommentIDs),
			IsLiked:       p.Has(models.ReactionLike, viewerID),
			IsDisliked:    p.Has(models.ReactionDislike, viewerID),
		})
	}
	return out, nil
}

func (s *ContentService) visiblePrivacies(ctx context.Context, ownerID, viewerID uint) ([]models.Privacy, error) {
	isFriend := false
	if ownerID != viewerID {
		var err error
		if isFriend, err = s.friends.AreFriends(ctx, viewerID, ownerID); err != nil {
			return nil, err
		}
	}
	return models.VisiblePrivacies(ownerID, viewerID, isFriend), nil
}

// visiblePost loads a post, hiding it as not found from viewers who may
// not see it.
func (s *ContentService) visiblePost(ctx context.Context, id string, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, post.UserID, post.Privacy, viewerID, models.ErrPostNotFound); err != nil {
		return nil, err
	}
	return post, nil
}

// liveStory loads an unexpired story visible to viewerID.
func (s *ContentService) liveStory(ctx context.Context, id string, viewerID uint) (*models.Story, error) {
	story, err := s.stories.GetStoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(story.ExpiresAt) {
		return nil, models.ErrStoryNotFound
	}
	if err := s.ensureVisible(ctx, story.UserID, story.Visibility, viewerID, models.ErrStoryNotFound); err != nil {
		return nil, err
	}
	return story, nil
}

// visibleComment loads a comment whose post viewerID may see.
func (s *ContentService) visibleComment(ctx context.Context, id string, viewerID uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, comment.PostID.Hex())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrCommentNotFound
		}
		return nil, err
	}
	if err := s.ensureVisible(ctx, post.UserID, post.Privacy, viewerID, models.ErrCommentNotFound); err != nil {
		return nil, err
	}
	return comment, nil
}

// ensureVisible returns hidden when viewerID may not see content owned by
// ownerID with the given privacy.
func (s *ContentService) ensureVisible(ctx context.Context, ownerID uint, privacy models.Privacy, viewerID uint, hidden error) error {
	if ownerID == viewerID {
		return nil
	}
	switch privacy {
	case models.PrivacyPublic, "":
		return nil
	case models.PrivacyFriends:
		ok, err := s.friends.AreFriends(ctx, viewerID, ownerID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return hidden
}

func commentDetail(c models.Comment, byID map[uint]models.UserCompact) models.CommentDetail {
	d := models.CommentDetail{
		Comment:       c,
		Author:        byID[c.UserID],
		LikesCount:    len(c.Likes),
		DislikesCount: len(c.Dislikes),
		Replies:       make([]models.ReplyDetail, 0, len(c.Replies)),
	}
	for _, r := range c.Replies {
		d.Replies = append(d.Replies, replyDetail(r, byID))
	}
	return d
}

func replyDetail(r models.Reply, byID map[uint]models.UserCompact) models.ReplyDetail {
	return models.ReplyDetail{
		Reply:         r,
		Author:        byID[r.UserID],
		LikesCount:    len(r.Likes),
		DislikesCount: len(r.Dislikes),
	}
}

func parseReplyID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrReplyNotFound
	}
	return objID, nil
}
