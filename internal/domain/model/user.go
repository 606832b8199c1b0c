package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// OAuthログインのユーザーは PasswordHash が空になる
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash"`
	FullName     string `gorm:"type:varchar(255);not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'"`
	TokenVersion int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`

	// 'google' / 'github'、メール＋パスワードのユーザーは空
	OAuthProvider string `gorm:"column:oauth_provider;type:varchar(50)"`
	OAuthID       string `gorm:"column:oauth_id;type:varchar(255);index"`

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
