package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vresta/chatbot/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// Transaction runs fn inside a transaction that is committed when fn returns
// nil and rolled back otherwise.
func (r *MessageRepository) Transaction(ctx context.Context, fn func(tx *MessageRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create message: %w", translate(err))
	}
	return nil
}

// ListBySession returns the session's messages oldest first. Insertion order
// breaks timestamp ties.
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sent_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// LastBySession returns the newest message of the session.
func (r *MessageRepository) LastBySession(ctx context.Context, sessionID string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sent_at DESC").
		Order("id DESC").
		First(&msg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// DeleteBySession removes every message of the session and reports how many
// were removed.
func (r *MessageRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.Message{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete messages: %w", res.Error)
	}
	return res.RowsAffected, nil
}
