package models

import (
	"time"

	"gorm.io/gorm"
)

// Member is a library patron identified by a student number (NIM).
type Member struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	NIM       string         `gorm:"column:nim;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null"`
	Email     *string        `gorm:"column:email"`
	Phone     *string        `gorm:"column:phone"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
