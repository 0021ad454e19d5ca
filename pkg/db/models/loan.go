package models

import (
	"time"

	"github.com/andalib/andalib-backend/pkg/enums"
)

// Loan records one member borrowing one copy of a book. Rows are never deleted.
type Loan struct {
	ID         int64            `gorm:"primaryKey;autoIncrement"`
	MemberID   int64            `gorm:"column:member_id;not null;index"`
	Member     *Member          `gorm:"foreignKey:MemberID"`
	BookID     int64            `gorm:"column:book_id;not null;index"`
	Book       *Book            `gorm:"foreignKey:BookID"`
	BorrowDate time.Time        `gorm:"column:borrow_date;not null"`
	DueDate    time.Time        `gorm:"column:due_date;not null"`
	Status     enums.LoanStatus `gorm:"column:status;type:varchar(16);not null;default:ACTIVE;index"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
