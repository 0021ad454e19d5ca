package loans

import (
	"github.com/andalib/andalib-backend/pkg/dates"
	"github.com/andalib/andalib-backend/pkg/db/models"
)

type BorrowRequest struct {
	MemberID   int64  `json:"memberId" validate:"required,gt=0"`
	BookID     int64  `json:"bookId" validate:"required,gt=0"`
	BorrowDate string `json:"borrowDate,omitempty" validate:"omitempty,max=32"`
	DueDate    string `json:"dueDate" validate:"omitempty,max=32"`
}

func (r BorrowRequest) Input() BorrowInput {
	return BorrowInput{
		MemberID:   r.MemberID,
		BookID:     r.BookID,
		BorrowDate: r.BorrowDate,
		DueDate:    r.DueDate,
	}
}

type LoanDTO struct {
	ID         int64  `json:"id"`
	MemberID   int64  `json:"anggotaId"`
	BookID     int64  `json:"bukuId"`
	BorrowDate string `json:"tanggalPinjam"`
	DueDate    string `json:"tanggalJatuhTempo"`
	Status     string `json:"status"`
}

func NewLoanDTO(loan models.Loan) LoanDTO {
	return LoanDTO{
		ID:         loan.ID,
		MemberID:   loan.MemberID,
		BookID:     loan.BookID,
		BorrowDate: dates.Format(loan.BorrowDate),
		DueDate:    dates.Format(loan.DueDate),
		Status:     loan.Status.String(),
	}
}
