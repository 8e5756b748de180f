package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/nano-social/backend/internal/chat"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameSize   = 8 << 10
	sendMessageTTL = 5 * time.Second
)

// ChatService persists and delivers direct messages.
type ChatService interface {
	Send(ctx context.Context, senderID, receiverID uint, body string) (*models.Message, error)
	History(ctx context.Context, userID, otherID uint, limit int64) ([]models.Message, error)
}

// ChatHandler serves the chat WebSocket and its REST fallbacks.
type ChatHandler struct {
	chat     ChatService
	sessions chat.SessionRegistry
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewChatHandler(svc ChatService, sessions chat.SessionRegistry, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:     svc,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// RegisterChatRoutes registers chat routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chat/ws", h.Connect)
	g.POST("/chat/messages", h.SendMessage)
	g.GET("/chat/messages/:userId", h.GetHistory)
}

// Connect upgrades the request and registers the connection as the user's
// live session. Inbound frames are {"to": id, "body": "..."}.
func (h *ChatHandler) Connect(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		return nil
	}

	session := h.sessions.Register(userID)
	replies := make(chan []byte, 8)
	done := make(chan struct{})
	go h.writePump(conn, session, replies, done)
	h.readPump(conn, userID, replies)
	// The reader sees the disconnect first; stop routing to the session
	// before waiting on the writer.
	h.sessions.Unregister(session)
	<-done
	return nil
}

func (h *ChatHandler) readPump(conn *websocket.Conn, userID uint, replies chan<- []byte) {
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("chat connection closed", zap.Uint("user_id", userID), zap.Error(err))
			}
			return
		}
		var frame models.SendMessageRequest
		if err := json.Unmarshal(data, &frame); err != nil || frame.To == 0 || frame.Body == "" {
			reply(replies, "Invalid message frame")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendMessageTTL)
		_, err = h.chat.Send(ctx, userID, frame.To, frame.Body)
		cancel()
		if err != nil {
			h.logger.Debug("chat send rejected", zap.Uint("user_id", userID), zap.Error(err))
			reply(replies, clientMessage(err))
		}
	}
}

// writePump is the connection's only writer. It drains the session until
// it is closed by Unregister or by a newer session for the same user.
func (h *ChatHandler) writePump(conn *websocket.Conn, session *chat.Session, replies <-chan []byte, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-session.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case msg := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues an error frame for the writer, dropping it if the writer
// is backed up.
func reply(replies chan<- []byte, message string) {
	payload, err := json.Marshal(chat.Envelope{Type: "error", Data: echo.Map{"message": message}})
	if err != nil {
		return
	}
	select {
	case replies <- payload:
	default:
	}
}

// clientMessage returns the message of a domain error, hiding anything else.
func clientMessage(err error) string {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Server error"
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.chat.Send(c.Request().Context(), userID, req.To, req.Body)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) GetHistory(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	otherID, err := parseIDParam(c, "userId")
	if err != nil {
		return httpError(h.logger, c, err)
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	messages, err := h.chat.History(c.Request().Context(), userID, otherID, limit)
	if err != nil {
		return httpError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, messages)
}
