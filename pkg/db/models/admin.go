package models

import (
	"time"

	"github.com/andalib/andalib-backend/pkg/enums"
)

// Admin is a staff account that signs in and owns a notification inbox.
type Admin struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Name         string          `gorm:"column:name;not null"`
	Role         enums.AdminRole `gorm:"column:role;type:varchar(32);not null;default:admin"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
