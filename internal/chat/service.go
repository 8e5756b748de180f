package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

var errSelfMessage = models.NewError(models.ErrBadRequest, "You cannot message yourself")

// Service persists direct messages and delivers them to both parties.
type Service struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	registry *Registry
	logger   *zap.Logger
}

func NewService(messages repositories.MessageRepository, users repositories.UserRepository, registry *Registry, logger *zap.Logger) *Service {
	return &Service{messages: messages, users: users, registry: registry, logger: logger}
}

// Envelope is the frame written to live sessions.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (s *Service) Send(ctx context.Context, senderID, receiverID uint, body string) (*models.Message, error) {
	if senderID == receiverID {
		return nil, errSelfMessage
	}
	if _, err := s.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(Envelope{Type: "message", Data: msg})
	if err != nil {
		return msg, nil
	}
	for _, id := range []uint{receiverID, senderID} {
		if !s.registry.Deliver(ctx, id, payload) {
			s.logger.Debug("message not delivered live", zap.Uint("user_id", id))
		}
	}
	return msg, nil
}

// History returns the conversation between userID and otherID, oldest first.
func (s *Service) History(ctx context.Context, userID, otherID uint, limit int64) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	return s.messages.GetConversation(ctx, userID, otherID, limit)
}
