package models

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is an API account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Nom              string     `gorm:"size:255" json:"nom,omitempty"`
	Password         string     `gorm:"size:255;not null" json:"-"`
	Role             string     `gorm:"size:20;not null;default:USER" json:"role"`
	FailedAttempts   int        `gorm:"not null;default:0" json:"failedAttempts"`
	Locked           bool       `gorm:"not null;default:false" json:"locked"`
	LockExpiry       *time.Time `json:"lockExpiry,omitempty"`
	ResetToken       *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	Timestamps
}

// IsLocked reports whether the account is still locked at now.
func (u *User) IsLocked(now time.Time) bool {
	if !u.Locked {
		return false
	}
	return u.LockExpiry == nil || now.Before(*u.LockExpiry)
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func (User) TableName() string { return "users" }
