package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/apperr"
	"github.com/vresta/chatbot/internal/models"
	"github.com/vresta/chatbot/internal/repository"
)

var (
	ErrInvalidSender = apperr.New(apperr.InvalidInput, "sender_type must be one of: user, bot", nil)
	ErrEmptyText     = apperr.New(apperr.InvalidInput, "text must not be empty", nil)
)

// Responder produces the bot reply for a user message.
type Responder interface {
	Respond(text string) string
}

// HistoryCache is an optional read-through cache of session histories.
type HistoryCache interface {
	Get(ctx context.Context, sessionID string) ([]models.Message, bool)
	Set(ctx context.Context, sessionID string, messages []models.Message)
	Invalidate(ctx context.Context, sessionID string)
}

// Exchange is the result of sending a message. Reply is nil when the sent
// message was authored by the bot.
type Exchange struct {
	Message *models.Message
	Reply   *models.Message
}

// Pipeline stores messages and synthesizes bot replies.
type Pipeline struct {
	guard    *Guard
	messages *repository.MessageRepository
	bot      Responder
	cache    HistoryCache
	locks    *keyedMutex
	now      func() time.Time
	logger   *zap.Logger
}

func NewPipeline(guard *Guard, messages *repository.MessageRepository, bot Responder, cache HistoryCache, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		guard:    guard,
		messages: messages,
		bot:      bot,
		cache:    cache,
		locks:    newKeyedMutex(),
		now:      time.Now,
		logger:   logger,
	}
}

// Append validates and stores one message in its own transaction. Its
// timestamp never precedes the session's latest message. Callers that need
// ordering across several appends must hold the session lock.
func (p *Pipeline) Append(ctx context.Context, session *models.Session, sender models.SenderType, text string) (*models.Message, error) {
	if !sender.Valid() {
		return nil, ErrInvalidSender
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	msg := &models.Message{
		SessionID:  session.ID,
		SenderType: sender,
		Text:       text,
		SentAt:     p.now().UTC(),
	}

	err := p.messages.Transaction(ctx, func(tx *repository.MessageRepository) error {
		last, err := tx.LastBySession(ctx, session.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if last != nil && msg.SentAt.Before(last.SentAt) {
			msg.SentAt = last.SentAt
		}
		return tx.Create(ctx, msg)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "failed to save message")
	}

	if p.cache != nil {
		p.cache.Invalidate(ctx, session.ID)
	}
	return msg, nil
}

// Send stores a message in the requester's session. A user message is
// followed by the bot's reply; a bot message is stored as is. The pair is
// written under the session lock, so no other message of the session lands
// between them. If ctx ends after the user message is stored, that message
// stays and the context error is returned.
func (p *Pipeline) Send(ctx context.Context, sessionID string, requester *models.User, sender models.SenderType, text string) (*Exchange, error) {
	session, err := p.guard.Authorize(ctx, sessionID, requester)
	if err != nil {
		return nil, err
	}

	unlock, err := p.lock(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	msg, err := p.Append(ctx, session, sender, text)
	if err != nil {
		return nil, err
	}
	exchange := &Exchange{Message: msg}
	if sender == models.SenderBot {
		return exchange, nil
	}

	if err := ctx.Err(); err != nil {
		p.logger.Warn("request ended before bot reply",
			zap.String("session_id", session.ID), zap.Uint("message_id", msg.ID), zap.Error(err))
		return nil, err
	}

	reply, err := p.Append(ctx, session, models.SenderBot, p.bot.Respond(text))
	if err != nil {
		return nil, err
	}
	exchange.Reply = reply
	return exchange, nil
}

// History returns the session's messages oldest first; an empty session
// yields an empty slice.
func (p *Pipeline) History(ctx context.Context, sessionID string, requester *models.User) ([]models.Message, error) {
	session, err := p.guard.Authorize(ctx, sessionID, requester)
	if err != nil {
		return nil, err
	}

	// held so a concurrent append cannot invalidate between read and Set
	unlock, err := p.lock(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, session.ID); ok {
			return cached, nil
		}
	}

	messages, err := p.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to fetch messages")
	}

	if p.cache != nil {
		p.cache.Set(ctx, session.ID, messages)
	}
	return messages, nil
}

// Purge deletes every message of the session and returns how many were
// removed. An already empty session is not an error.
func (p *Pipeline) Purge(ctx context.Context, sessionID string, requester *models.User) (int64, error) {
	session, err := p.guard.Authorize(ctx, sessionID, requester)
	if err != nil {
		return 0, err
	}

	unlock, err := p.lock(ctx, session.ID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var deleted int64
	err = p.messages.Transaction(ctx, func(tx *repository.MessageRepository) error {
		n, err := tx.DeleteBySession(ctx, session.ID)
		deleted = n
		return err
	})
	if err != nil {
		return 0, apperr.Wrap(err, "failed to delete messages")
	}

	if p.cache != nil {
		p.cache.Invalidate(ctx, session.ID)
	}
	p.logger.Info("history purged", zap.String("session_id", session.ID), zap.Int64("deleted", deleted))
	return deleted, nil
}

// lock waits for the session lock, giving up when the request ends.
func (p *Pipeline) lock(ctx context.Context, sessionID string) (func(), error) {
	unlock, err := p.locks.Lock(ctx, sessionID)
	if err != nil {
		p.logger.Warn("request ended waiting for session lock",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return unlock, nil
}
