package books

import (
	"context"
	"errors"

	"github.com/andalib/andalib-backend/pkg/db/models"
	"gorm.io/gorm"
)

// ErrBookNotFound is returned when a stock update matches no book.
var ErrBookNotFound = errors.New("book not found")

// Repository exposes book persistence operations.
type Repository struct {
	db *gorm.DB
}

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

func (r *Repository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// IncrementStock adds exactly one copy back to the shelf.
func (r *Repository) IncrementStock(ctx context.Context, bookID int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		UpdateColumn("stock", gorm.Expr("stock + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DecrementStockIfAvailable takes one copy off the shelf. It reports false
// when the book has no stock left; the row is left untouched in that case.
func (r *Repository) DecrementStockIfAvailable(ctx context.Context, bookID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND stock > 0", bookID).
		UpdateColumn("stock", gorm.Expr("stock - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) IncrementStockWithTx(ctx context.Context, tx *gorm.DB, bookID int64) error {
	return r.WithTx(tx).IncrementStock(ctx, bookID)
}

func (r *Repository) DecrementStockIfAvailableWithTx(ctx context.Context, tx *gorm.DB, bookID int64) (bool, error) {
	return r.WithTx(tx).DecrementStockIfAvailable(ctx, bookID)
}

func (r *Repository) FindByIDWithTx(ctx context.Context, tx *gorm.DB, id int64) (*models.Book, error) {
	return r.WithTx(tx).FindByID(ctx, id)
}
