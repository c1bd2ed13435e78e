// Package cache keeps a read-through copy of session histories in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/models"
)

type cachedMessage struct {
	ID         uint              `json:"id"`
	SessionID  string            `json:"sessionId"`
	SenderType models.SenderType `json:"senderType"`
	Text       string            `json:"text"`
	SentAt     time.Time         `json:"sentAt"`
}

// History caches message lists per session. A nil client disables it. Redis
// errors are logged and reported as misses; they never fail a request.
type History struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewHistory(client *redis.Client, ttl time.Duration, logger *zap.Logger) *History {
	return &History{client: client, ttl: ttl, logger: logger}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// Get returns the cached history. Empty lists are never cached, so an empty
// result is always a miss.
func (h *History) Get(ctx context.Context, sessionID string) ([]models.Message, bool) {
	if h == nil || h.client == nil {
		return nil, false
	}

	raw, err := h.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err != nil {
		h.logger.Warn("failed to read history from cache", zap.String("session_id", sessionID), zap.Error(err))
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}

	messages := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var cm cachedMessage
		if err := json.Unmarshal([]byte(item), &cm); err != nil {
			h.logger.Warn("dropping undecodable cached history", zap.String("session_id", sessionID), zap.Error(err))
			h.Invalidate(ctx, sessionID)
			return nil, false
		}
		messages = append(messages, models.Message{
			ID:         cm.ID,
			SessionID:  cm.SessionID,
			SenderType: cm.SenderType,
			Text:       cm.Text,
			SentAt:     cm.SentAt,
		})
	}
	return messages, true
}

// Set replaces the cached history of the session.
func (h *History) Set(ctx context.Context, sessionID string, messages []models.Message) {
	if h == nil || h.client == nil || len(messages) == 0 {
		return
	}

	key := historyKey(sessionID)
	pipe := h.client.TxPipeline()
	pipe.Del(ctx, key)
	for _, msg := range messages {
		payload, err := json.Marshal(cachedMessage{
			ID:         msg.ID,
			SessionID:  msg.SessionID,
			SenderType: msg.SenderType,
			Text:       msg.Text,
			SentAt:     msg.SentAt,
		})
		if err != nil {
			h.logger.Warn("failed to marshal message for cache", zap.Error(err))
			return
		}
		pipe.RPush(ctx, key, payload)
	}
	pipe.Expire(ctx, key, h.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		h.logger.Warn("failed to cache history", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Invalidate drops the cached history of the session.
func (h *History) Invalidate(ctx context.Context, sessionID string) {
	if h == nil || h.client == nil {
		return
	}
	if err := h.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		h.logger.Warn("failed to invalidate cached history", zap.String("session_id", sessionID), zap.Error(err))
	}
}
