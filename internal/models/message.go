package models

import (
	"time"
)

type SenderType string

const (
	SenderUser SenderType = "user"
	SenderBot  SenderType = "bot"
)

// Valid reports whether s is one of the known sender tags.
func (s SenderType) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is one utterance in a session. Messages are ordered by SentAt,
// ties broken by ID.
type Message struct {
	ID         uint       `gorm:"primaryKey"`
	SessionID  string     `gorm:"type:varchar(36);not null;index"`
	Session    *Session   `gorm:"constraint:OnDelete:CASCADE"`
	SenderType SenderType `gorm:"type:varchar(10);not null;check:check_sender_type,sender_type IN ('user', 'bot')"`
	Text       string     `gorm:"not null"`
	SentAt     time.Time  `gorm:"not null;index"`
}
