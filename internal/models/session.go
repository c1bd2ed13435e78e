package models

import (
	"time"
)

// Session is a conversation thread owned by exactly one user. Deleting the
// user deletes its sessions.
type Session struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedDate time.Time `json:"created_date"`
}
