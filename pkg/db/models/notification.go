package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/andalib/andalib-backend/pkg/enums"
)

// Notification is one admin's copy of a fanned-out event.
type Notification struct {
	ID        int64                  `gorm:"primaryKey;autoIncrement"`
	AdminID   int64                  `gorm:"column:admin_id;not null;index:idx_notifications_admin_created,priority:1"`
	Type      enums.NotificationType `gorm:"column:type;type:varchar(32);not null"`
	Title     string                 `gorm:"column:title;not null"`
	Message   string                 `gorm:"column:message;not null"`
	Metadata  datatypes.JSON         `gorm:"column:metadata"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false;index:idx_notifications_read_at,priority:1"`
	ReadAt    *time.Time             `gorm:"column:read_at;index:idx_notifications_read_at,priority:2"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime;index:idx_notifications_admin_created,priority:2"`
}
