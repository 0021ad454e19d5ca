package returns

import (
	"context"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists return records.
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

func (r *Repository) Create(ctx context.Context, ret *models.Return) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Return, error) {
	var ret models.Return
	if err := r.db.WithContext(ctx).First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

// UpdateDetails writes the amendable columns only; loan_id never changes.
func (r *Repository) UpdateDetails(ctx context.Context, ret *models.Return) error {
	return r.db.WithContext(ctx).
		Model(ret).
		Select("return_date", "fine", "damage_proof_url", "remark", "updated_at").
		Updates(ret).Error
}

// Delete removes the row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Return{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// History returns every return with its loan, book and member, newest first.
// Soft-deleted members are still included so the audit trail stays complete.
func (r *Repository) History(ctx context.Context) ([]models.Return, error) {
	var rows []models.Return
	err := r.db.WithContext(ctx).
		Preload("Loan").
		Preload("Loan.Book").
		Preload("Loan.Member", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("return_date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
