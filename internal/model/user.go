package model

import "time"

// User is an account of the identity service.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt hash

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
