package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/anonto42/nano-social/backend/internal/events"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

// Deliverer pushes a payload to a user's live session, if any.
type Deliverer interface {
	Deliver(ctx context.Context, userID uint, payload []byte) bool
}

// Notifier persists notifications and fans them out to the event stream
// and to live sessions. Fan-out is best effort.
type Notifier struct {
	repo      repositories.NotificationRepository
	publisher events.Publisher
	live      Deliverer
	logger    *zap.Logger
	now       func() time.Time
}

func NewNotifier(repo repositories.NotificationRepository, publisher events.Publisher, live Deliverer, logger *zap.Logger) *Notifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Notifier{repo: repo, publisher: publisher, live: live, logger: logger, now: time.Now}
}

// Emit stores n. Notifications addressed to their own sender are dropped.
func (n *Notifier) Emit(ctx context.Context, notif *models.Notification) error {
	if notif.FromID == notif.ToID {
		return nil
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = n.now()
	}
	if err := n.repo.CreateNotification(ctx, notif); err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(string(notif.Type)).Inc()

	key := strconv.FormatUint(uint64(notif.ToID), 10)
	if err := n.publisher.Publish(ctx, key, events.NewEvent(string(notif.Type), notif)); err != nil {
		n.logger.Warn("publish notification event",
			zap.Uint("notification_id", notif.ID), zap.Error(err))
	}
	if n.live != nil {
		if payload, err := json.Marshal(livePayload{Type: "notification", Data: notif}); err == nil {
			n.live.Deliver(ctx, notif.ToID, payload)
		}
	}
	return nil
}

// Notify is Emit for callers that must not fail on notification errors.
func (n *Notifier) Notify(ctx context.Context, notif models.Notification) {
	if err := n.Emit(ctx, &notif); err != nil {
		n.logger.Warn("emit notification",
			zap.String("type", string(notif.Type)),
			zap.Uint("from", notif.FromID),
			zap.Uint("to", notif.ToID),
			zap.Error(err))
	}
}

type livePayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
