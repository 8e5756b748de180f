package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

// RelationshipService owns the friend graph and the friend-request state
// machine: NONE -> PENDING -> FRIENDS or back to NONE on decline.
type RelationshipService struct {
	users         repositories.UserRepository
	friends       repositories.FriendshipRepository
	notifications repositories.NotificationRepository
	notifier      *Notifier
	logger        *zap.Logger
}

func NewRelationshipService(
	users repositories.UserRepository,
	friends repositories.FriendshipRepository,
	notifications repositories.NotificationRepository,
	notifier *Notifier,
	logger *zap.Logger,
) *RelationshipService {
	return &RelationshipService{
		users:         users,
		friends:       friends,
		notifications: notifications,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *RelationshipService) SendRequest(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error) {
	if requesterID == targetID {
		return nil, models.ErrSelfRequest
	}
	for _, id := range []uint{requesterID, targetID} {
		if _, err := s.users.GetUserByID(ctx, id); err != nil {
			return nil, err
		}
	}

	friends, err := s.friends.AreFriends(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, models.ErrAlreadyFriends
	}

	req, err := s.friends.OpenRequest(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	requestID := req.ID
	s.notifier.Notify(ctx, models.Notification{
		Type:      models.NotificationFriendRequest,
		FromID:    requesterID,
		ToID:      targetID,
		RequestID: &requestID,
	})
	return req, nil
}

func (s *RelationshipService) AcceptRequest(ctx context.Context, notificationID, accepterID uint) error {
	req, err := s.requestFromNotification(ctx, notificationID, accepterID)
	if err != nil {
		return err
	}

	resolved := []uint{req.ID}
	reverse, err := s.friends.GetPendingRequest(ctx, req.ToID, req.FromID)
	switch {
	case err == nil:
		resolved = append(resolved, reverse.ID)
	case !errors.Is(err, models.ErrNotFound):
		return err
	}

	if err := s.friends.AcceptRequest(ctx, req); err != nil {
		return err
	}
	s.dropRequestNotifications(ctx, resolved)

	s.notifier.Notify(ctx, models.Notification{
		Type:   models.NotificationFriendAccepted,
		FromID: accepterID,
		ToID:   req.FromID,
	})
	return nil
}

func (s *RelationshipService) DeclineRequest(ctx context.Context, notificationID, accepterID uint) error {
	req, err := s.requestFromNotification(ctx, notificationID, accepterID)
	if err != nil {
		return err
	}
	if err := s.friends.DeclineRequest(ctx, req); err != nil {
		return err
	}
	s.dropRequestNotifications(ctx, []uint{req.ID})

	s.notifier.Notify(ctx, models.Notification{
		Type:   models.NotificationFriendDeclined,
		FromID: accepterID,
		ToID:   req.FromID,
	})
	return nil
}

// RemoveFriend deletes the friend edge. Activity counters are kept.
func (s *RelationshipService) RemoveFriend(ctx context.Context, userID, friendID uint) error {
	if userID == friendID {
		return models.ErrNotFriends
	}
	return s.friends.RemoveFriend(ctx, userID, friendID)
}

func (s *RelationshipService) ListFriends(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	ids, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID, err := compactUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	return orderedCompacts(ids, byID), nil
}

// PendingRequests lists inbound requests oldest first, each with the
// notification id used to answer it.
func (s *RelationshipService) PendingRequests(ctx context.Context, userID uint) ([]models.PendingFriendRequest, error) {
	requests, err := s.friends.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	fromIDs := make([]uint, len(requests))
	for i, r := range requests {
		fromIDs[i] = r.FromID
	}
	byID, err := compactUsers(ctx, s.users, fromIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.PendingFriendRequest, 0, len(requests))
	for _, r := range requests {
		from, ok := byID[r.FromID]
		if !ok {
			continue
		}
		item := models.PendingFriendRequest{RequestID: r.ID, From: from, CreatedAt: r.CreatedAt}
		if n, err := s.notifications.GetByRequestID(ctx, r.ID); err == nil {
			item.NotificationID = n.ID
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// requestFromNotification resolves a friend-request notification addressed
// to accepterID into its pending request.
func (s *RelationshipService) requestFromNotification(ctx context.Context, notificationID, accepterID uint) (*models.FriendRequest, error) {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Type != models.NotificationFriendRequest || n.ToID != accepterID || n.RequestID == nil {
		return nil, models.ErrNotificationNotFound
	}

	req, err := s.friends.GetRequestByID(ctx, *n.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending || req.ToID != accepterID {
		return nil, models.ErrRequestNotFound
	}
	return req, nil
}

func (s *RelationshipService) dropRequestNotifications(ctx context.Context, requestIDs []uint) {
	if err := s.notifications.DeleteByRequestIDs(ctx, requestIDs); err != nil {
		s.logger.Warn("delete answered friend-request notifications",
			zap.Uints("request_ids", requestIDs), zap.Error(err))
	}
}
