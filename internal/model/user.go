package model

import "time"

const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	Phone        string    `gorm:"size:32" json:"phone"`
	City         string    `gorm:"size:64" json:"city"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
