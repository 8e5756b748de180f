package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	contentActions
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(content ContentService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{contentActions{content: content, logger: logger}}
}

// RegisterStoryRoutes registers story routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.GET("/users/:id/stories", h.GetUserStories)
	h.register(g, "/stories/:id", byID(services.KindStory), "Story deleted")
}

// GetStories returns the unexpired stories visible to the current user.
func (h *StoryHandler) GetStories(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	stories, err := h.content.ActiveStories(c.Request().Context(), userID)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, stories)
}

// GetUserStories returns one user's unexpired stories visible to the
// current user.
func (h *StoryHandler) GetUserStories(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ownerID, err := parseIDParam(c, "id")
	if err != nil {
		return httpError(h.logger, c, err)
	}
	stories, err := h.content.UserStories(c.Request().Context(), ownerID, userID)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, stories)
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	story, err := h.content.CreateStory(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, story)
}
