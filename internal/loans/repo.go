package loans

import (
	"context"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes loan persistence operations. Loans are never deleted.
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

func (r *Repository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// FindByID loads a loan with its book and member. Soft-deleted members are
// still loaded since loans outlive them.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindByIDWithTx is FindByID inside the caller's transaction.
func (r *Repository) FindByIDWithTx(ctx context.Context, tx *gorm.DB, id int64) (*models.Loan, error) {
	return r.WithTx(tx).FindByID(ctx, id)
}

// ActiveByMemberNIM lists the member's ACTIVE loans with book and member preloaded.
func (r *Repository) ActiveByMemberNIM(ctx context.Context, nim string) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Joins("JOIN members ON members.id = loans.member_id AND members.deleted_at IS NULL").
		Where("members.nim = ? AND loans.status = ?", nim, enums.LoanStatusActive).
		Order("loans.due_date ASC, loans.id ASC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// MarkReturned flips an ACTIVE loan to RETURNED. It reports false when the
// loan was not ACTIVE, which callers treat as a concurrent or repeated return.
func (r *Repository) MarkReturned(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, enums.LoanStatusActive).
		Update("status", enums.LoanStatusReturned)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) MarkReturnedWithTx(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	return r.WithTx(tx).MarkReturned(ctx, id)
}
