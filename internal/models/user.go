package models

import (
	"time"
)

// User is a registered account.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	Username       string `gorm:"size:64;not null;uniqueIndex"`
	HashedPassword string `gorm:"size:255;not null"`
}
