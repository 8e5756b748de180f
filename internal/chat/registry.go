package chat

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "chat:user:"

// SessionRegistry maps users to their live connection.
type SessionRegistry interface {
	Register(userID uint) *Session
	Unregister(s *Session)
	Lookup(userID uint) (*Session, bool)
}

// Session is the handle of one live connection. The connection's writer
// drains Send until it is closed.
type Session struct {
	ID     string
	UserID uint
	Send   chan []byte

	closeOnce sync.Once
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.Send) })
}

// Registry keeps one session per user on this instance. With Redis
// configured, deliveries go through pub/sub so the instance holding the
// session receives them.
type Registry struct {
	redis    *redis.Client
	logger   *zap.Logger
	mu       sync.RWMutex
	sessions map[uint]*Session
	cancel   context.CancelFunc
	ready    chan struct{}
}

func NewRegistry(redisClient *redis.Client, logger *zap.Logger) *Registry {
	r := &Registry{
		redis:    redisClient,
		logger:   logger,
		sessions: map[uint]*Session{},
		ready:    make(chan struct{}),
	}
	if redisClient == nil {
		close(r.ready)
		return r
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.subscribe(ctx)
	return r
}

// Register installs a new session for userID, closing any previous one.
func (r *Registry) Register(userID uint) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[userID]; ok {
		old.close()
	} else {
		metrics.ChatSessions.Inc()
	}
	r.sessions[userID] = s
	return s
}

// Unregister removes s if it is still the user's current session.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[s.UserID]; ok && cur == s {
		delete(r.sessions, s.UserID)
		metrics.ChatSessions.Dec()
	}
	s.close()
}

func (r *Registry) Lookup(userID uint) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Deliver routes payload to userID's session wherever it lives. It reports
// whether the payload was handed off; a full or missing local session
// drops it.
func (r *Registry) Deliver(ctx context.Context, userID uint, payload []byte) bool {
	if r.redis != nil {
		if err := r.redis.Publish(ctx, channel(userID), payload).Err(); err != nil {
			r.logger.Warn("redis publish", zap.Uint("user_id", userID), zap.Error(err))
			return r.deliverLocal(userID, payload, "local")
		}
		metrics.ChatDeliveries.WithLabelValues("redis").Inc()
		return true
	}
	return r.deliverLocal(userID, payload, "local")
}

func (r *Registry) deliverLocal(userID uint, payload []byte, route string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	select {
	case s.Send <- payload:
		metrics.ChatDeliveries.WithLabelValues(route).Inc()
		return true
	default:
		return false
	}
}

// Close stops the Redis subscription and closes all sessions.
func (r *Registry) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.close()
		delete(r.sessions, id)
		metrics.ChatSessions.Dec()
	}
}

// Ready is closed once the Redis subscription is active.
func (r *Registry) Ready() <-chan struct{} { return r.ready }

func (r *Registry) subscribe(ctx context.Context) {
	pubsub := r.redis.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		r.logger.Error("redis subscribe", zap.Error(err))
		close(r.ready)
		return
	}
	close(r.ready)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, ok := userFromChannel(msg.Channel)
			if !ok {
				continue
			}
			r.deliverLocal(userID, []byte(msg.Payload), "redis")
		}
	}
}

func channel(userID uint) string {
	return channelPrefix + strconv.FormatUint(uint64(userID), 10)
}

func userFromChannel(ch string) (uint, bool) {
	if !strings.HasPrefix(ch, channelPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(ch, channelPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
