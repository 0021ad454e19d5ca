package admins

import (
	"context"
	"strings"
	"time"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes admin persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to the transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new admin.
func (r *Repository) Create(ctx context.Context, admin *models.Admin) error {
	admin.Email = NormalizeEmail(admin.Email)
	return r.db.WithContext(ctx).Create(admin).Error
}

// FindByEmail retrieves the admin matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID loads an admin by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// ListIDs returns every admin id in ascending order.
func (r *Repository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Count returns the number of admin accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateLastLogin refreshes the admin's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
