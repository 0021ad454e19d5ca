package members

import (
	"context"
	"strings"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes member persistence operations. Soft-deleted members are
// excluded from every read.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *Repository) FindByIDWithTx(ctx context.Context, tx *gorm.DB, id int64) (*models.Member, error) {
	return r.WithTx(tx).FindByID(ctx, id)
}

func (r *Repository) FindByNIM(ctx context.Context, nim string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("nim = ?", strings.TrimSpace(nim)).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Search matches the query against NIM and name, case-insensitively.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.Member, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	var members []models.Member
	if err := r.db.WithContext(ctx).
		Where("LOWER(nim) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("name ASC, id ASC").
		Limit(limit).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// SoftDelete stamps deleted_at; it reports false when no live member matched.
func (r *Repository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
