package notifications

import (
	"encoding/json"
	"time"

	"github.com/andalib/andalib-backend/pkg/db/models"
)

// NotificationDTO is the inbox projection returned to admins.
type NotificationDTO struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	IsRead    bool            `json:"isRead"`
	ReadAt    *time.Time      `json:"readAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewNotificationDTO(n models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Metadata) > 0 {
		dto.Metadata = json.RawMessage(n.Metadata)
	}
	return dto
}
