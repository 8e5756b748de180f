package handlers

import (
	"context"
	"math"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContentService is the content interaction core as used by the post,
// comment and story handlers.
type ContentService interface {
	CreatePost(ctx context.Context, userID uint, req models.CreatePostRequest) (*models.Post, error)
	CreateStory(ctx context.Context, userID uint, req models.CreateStoryRequest) (*models.Story, error)
	GetPostDetails(ctx context.Context, postID string, viewerID uint) (*models.PostDetails, error)
	Feed(ctx context.Context, viewerID uint, page, limit int) ([]models.FeedPost, int64, error)
	ListUserPosts(ctx context.Context, ownerID, viewerID uint, page, limit int) ([]models.FeedPost, error)
	ActiveStories(ctx context.Context, viewerID uint) ([]models.StoryView, error)
	UserStories(ctx context.Context, ownerID, viewerID uint) ([]models.StoryView, error)
	ToggleReaction(ctx context.Context, ref services.ContentRef, userID uint, kind models.ReactionKind) (models.ToggleResult, error)
	AddComment(ctx context.Context, postID string, userID uint, content string) (*models.CommentDetail, error)
	AddReply(ctx context.Context, commentID string, userID uint, content string) (*models.ReplyDetail, error)
	DeleteContent(ctx context.Context, ref services.ContentRef, userID uint) error
	FetchReactions(ctx context.Context, ref services.ContentRef, viewerID uint) (*models.ReactionList, error)
}

// refFunc builds the content reference addressed by a request.
type refFunc func(c echo.Context) services.ContentRef

func byID(kind services.ContentKind) refFunc {
	return func(c echo.Context) services.ContentRef {
		return services.ContentRef{Kind: kind, ID: c.Param("id")}
	}
}

func replyRef(c echo.Context) services.ContentRef {
	return services.ContentRef{Kind: services.KindReply, ID: c.Param("id"), ReplyID: c.Param("replyId")}
}

// contentActions holds the reaction and deletion endpoints shared by
// every content kind.
type contentActions struct {
	content ContentService
	logger  *zap.Logger
}

func (a contentActions) toggle(ref refFunc, kind models.ReactionKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		res, err := a.content.ToggleReaction(c.Request().Context(), ref(c), userID, kind)
		if err != nil {
			return httpError(a.logger, c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func (a contentActions) reactions(ref refFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		list, err := a.content.FetchReactions(c.Request().Context(), ref(c), userID)
		if err != nil {
			return httpError(a.logger, c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (a contentActions) remove(ref refFunc, message string) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		if err := a.content.DeleteContent(c.Request().Context(), ref(c), userID); err != nil {
			return httpError(a.logger, c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": message})
	}
}

// register wires like, dislike, reactions and delete under path.
func (a contentActions) register(g *echo.Group, path string, ref refFunc, deleted string) {
	g.POST(path+"/like", a.toggle(ref, models.ReactionLike))
	g.POST(path+"/dislike", a.toggle(ref, models.ReactionDislike))
	g.GET(path+"/reactions", a.reactions(ref))
	g.DELETE(path, a.remove(ref, deleted))
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	contentActions
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content ContentService, logger *zap.Logger) *PostHandler {
	return &PostHandler{contentActions{content: content, logger: logger}}
}

// RegisterPostRoutes registers post and feed routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/feed", h.GetFeed)
	g.GET("/users/:id/posts", h.GetUserPosts)
	h.register(g, "/posts/:id", byID(services.KindPost), "Post deleted")
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.content.CreatePost(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost returns a post with its comments, replies and reactions.
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	details, err := h.content.GetPostDetails(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *PostHandler) GetFeed(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c, 10, 50)

	posts, total, err := h.content.Feed(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ownerID, err := parseIDParam(c, "id")
	if err != nil {
		return httpError(h.logger, c, err)
	}
	page, limit := pagination(c, 10, 50)

	posts, err := h.content.ListUserPosts(c.Request().Context(), ownerID, userID, page, limit)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, posts)
}
