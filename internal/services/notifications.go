package services

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

var errNotRecipient = models.NewError(models.ErrForbidden, "You are not allowed to modify this notification")

// GroupedNotifications buckets a user's notifications by age.
type GroupedNotifications struct {
	Today     []models.NotificationView `json:"today"`
	Yesterday []models.NotificationView `json:"yesterday"`
	ThisWeek  []models.NotificationView `json:"thisWeek"`
	Older     []models.NotificationView `json:"older"`
}

// NotificationService is the read side of the notification feed.
type NotificationService struct {
	repo  repositories.NotificationRepository
	users repositories.UserRepository
	now   func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, users: users, now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, limit int) ([]models.NotificationView, int64, error) {
	list, total, err := s.repo.GetByRecipientID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.withSenders(ctx, list)
	return views, total, err
}

func (s *NotificationService) Grouped(ctx context.Context, userID uint) (*GroupedNotifications, error) {
	today, yesterday, thisWeek, older, err := s.repo.GetGrouped(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	all := make([]models.Notification, 0, len(today)+len(yesterday)+len(thisWeek)+len(older))
	for _, bucket := range [][]models.Notification{today, yesterday, thisWeek, older} {
		all = append(all, bucket...)
	}
	views, err := s.withSenders(ctx, all)
	if err != nil {
		return nil, err
	}

	g := &GroupedNotifications{}
	i := 0
	for _, target := range []struct {
		dst *[]models.NotificationView
		n   int
	}{{&g.Today, len(today)}, {&g.Yesterday, len(yesterday)}, {&g.ThisWeek, len(thisWeek)}, {&g.Older, len(older)}} {
		*target.dst = views[i : i+target.n]
		i += target.n
	}
	return g, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete removes a notification addressed to userID.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uint) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.ToID != userID {
		return errNotRecipient
	}
	return s.repo.Delete(ctx, notificationID)
}

// withSenders attaches sender display fields. Notifications whose sender
// no longer exists keep an empty sender.
func (s *NotificationService) withSenders(ctx context.Context, list []models.Notification) ([]models.NotificationView, error) {
	ids := make([]uint, len(list))
	for i, n := range list {
		ids[i] = n.FromID
	}
	byID, err := compactUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.NotificationView, len(list))
	for i, n := range list {
		views[i] = models.NotificationView{Notification: n, From: byID[n.FromID]}
	}
	return views, nil
}
