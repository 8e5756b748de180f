package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles comments, their replies and their reactions.
type CommentHandler struct {
	contentActions
}

func NewCommentHandler(content ContentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{contentActions{content: content, logger: logger}}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.POST("/comments/:id/replies", h.CreateReply)
	h.register(g, "/comments/:id", byID(services.KindComment), "Comment deleted")
	h.register(g, "/comments/:id/replies/:replyId", replyRef, "Reply deleted")
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.content.AddComment(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) CreateReply(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply, err := h.content.AddReply(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, reply)
}
