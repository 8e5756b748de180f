package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RelationshipService is the friend graph as used by FriendshipHandler.
type RelationshipService interface {
	SendRequest(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, notificationID, accepterID uint) error
	DeclineRequest(ctx context.Context, notificationID, accepterID uint) error
	RemoveFriend(ctx context.Context, userID, friendID uint) error
	ListFriends(ctx context.Context, userID uint) ([]models.UserCompact, error)
	PendingRequests(ctx context.Context, userID uint) ([]models.PendingFriendRequest, error)
}

// RankingService serves the ranked friend lists.
type RankingService interface {
	TopContributors(ctx context.Context, userID uint, query string) ([]models.RankedContributor, error)
	ActiveFriends(ctx context.Context, userID uint, query string) ([]models.RankedActiveFriend, error)
	SearchFriends(ctx context.Context, userID uint, query string) ([]models.RankedActiveFriend, error)
	Suggestions(ctx context.Context, userID uint, query string) ([]models.UserCompact, error)
}

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	relationships RelationshipService
	ranking       RankingService
	logger        *zap.Logger
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(relationships RelationshipService, ranking RankingService, logger *zap.Logger) *FriendshipHandler {
	return &FriendshipHandler{relationships: relationships, ranking: ranking, logger: logger}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/request", h.SendFriendRequest)
	g.GET("/friends/requests/pending", h.GetPendingFriendRequests)
	g.POST("/friends/requests/:notificationId/accept", h.AcceptFriendRequest)
	g.POST("/friends/requests/:notificationId/decline", h.DeclineFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.DeleteFriend)

	g.GET("/friends/top-contributors", h.GetTopContributors)
	g.GET("/friends/active", h.GetActiveFriends)
	g.GET("/friends/suggestions", h.GetSuggestions)
	g.GET("/friends/search", h.SearchFriends)
}

func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.SendFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	fr, err := h.relationships.SendRequest(c.Request().Context(), userID, req.TargetID)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Friend request sent", "request": fr})
}

func (h *FriendshipHandler) GetPendingFriendRequests(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	pending, err := h.relationships.PendingRequests(c.Request().Context(), userID)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, pending)
}

func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	return h.answer(c, h.relationships.AcceptRequest, "Friend request accepted")
}

func (h *FriendshipHandler) DeclineFriendRequest(c echo.Context) error {
	return h.answer(c, h.relationships.DeclineRequest, "Friend request declined")
}

func (h *FriendshipHandler) answer(c echo.Context, respond func(context.Context, uint, uint) error, message string) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	notificationID, err := parseIDParam(c, "notificationId")
	if err != nil {
		return httpError(h.logger, c, err)
	}
	if err := respond(c.Request().Context(), notificationID, userID); err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	friends, err := h.relationships.ListFriends(c.Request().Context(), userID)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, friends)
}

// DeleteFriend removes the friend edge in both directions.
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	friendID, err := parseIDParam(c, "id")
	if err != nil {
		return httpError(h.logger, c, err)
	}
	if err := h.relationships.RemoveFriend(c.Request().Context(), userID, friendID); err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend removed"})
}

func (h *FriendshipHandler) GetTopContributors(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.ranking.TopContributors(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FriendshipHandler) GetActiveFriends(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.ranking.ActiveFriends(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FriendshipHandler) GetSuggestions(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.ranking.Suggestions(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *FriendshipHandler) SearchFriends(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.ranking.SearchFriends(c.Request().Context(), userID, c.QueryParam("q"))
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, list)
}
