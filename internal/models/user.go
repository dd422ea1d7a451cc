package models

import "gorm.io/gorm"

// User represents a user in the system. Live participation is tracked by
// Participant rows, not on the user itself.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
}
