package admins

import (
	"time"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
)

// AdminDTO is the transport shape that omits the password hash.
type AdminDTO struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        enums.AdminRole `json:"role"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func FromModel(a *models.Admin) *AdminDTO {
	if a == nil {
		return nil
	}
	return &AdminDTO{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}
