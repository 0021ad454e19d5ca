package returns

import (
	"time"

	"github.com/andalib/andalib-backend/pkg/dates"
	"github.com/andalib/andalib-backend/pkg/db/models"
)

// ProcessRequest is the body of POST /returns/process and POST /returns/update/{id}.
// peminjamanId and denda are loosely typed; clients send both numbers and strings.
type ProcessRequest struct {
	LoanID         any     `json:"peminjamanId"`
	ReturnDate     string  `json:"tanggalPengembalian"`
	Fine           any     `json:"denda"`
	DamageProofURL *string `json:"buktiKerusakanUrl"`
	Remark         *string `json:"keterangan"`
}

// ProcessInput is the validated form consumed by Service.ProcessReturn.
type ProcessInput struct {
	LoanID         int64
	ReturnDate     string
	Fine           any
	DamageProofURL *string
	Remark         *string
}

// UpdateInput carries an amendment. Empty ReturnDate and nil pointers leave the
// stored value unchanged; a pointer to "" clears an optional column.
type UpdateInput struct {
	LoanID         int64
	ReturnDate     string
	Fine           any
	DamageProofURL *string
	Remark         *string
}

// Input converts the wire body; ok is false when peminjamanId is missing or invalid.
func (r ProcessRequest) Input() (ProcessInput, bool) {
	loanID, ok := ParseID(r.LoanID)
	return ProcessInput{
		LoanID:         loanID,
		ReturnDate:     r.ReturnDate,
		Fine:           r.Fine,
		DamageProofURL: r.DamageProofURL,
		Remark:         r.Remark,
	}, ok
}

func (r ProcessRequest) UpdateInput() (UpdateInput, bool) {
	in, ok := r.Input()
	return UpdateInput(in), ok
}

type ReturnDTO struct {
	ID             int64     `json:"id"`
	LoanID         int64     `json:"peminjamanId"`
	ReturnDate     string    `json:"tanggalPengembalian"`
	Fine           int64     `json:"denda"`
	DamageProofURL *string   `json:"buktiKerusakanUrl"`
	Remark         *string   `json:"keterangan"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewReturnDTO(ret models.Return) ReturnDTO {
	return ReturnDTO{
		ID:             ret.ID,
		LoanID:         ret.LoanID,
		ReturnDate:     dates.Format(ret.ReturnDate),
		Fine:           ret.Fine,
		DamageProofURL: ret.DamageProofURL,
		Remark:         ret.Remark,
		CreatedAt:      ret.CreatedAt,
		UpdatedAt:      ret.UpdatedAt,
	}
}

type BookSummary struct {
	ID     int64  `json:"id"`
	Title  string `json:"judul"`
	Author string `json:"penulis"`
}

type MemberSummary struct {
	ID   int64  `json:"id"`
	NIM  string `json:"nim"`
	Name string `json:"nama"`
}

// HistoryItem is one row of the joined return history.
type HistoryItem struct {
	ReturnDTO
	BorrowDate string         `json:"tanggalPinjam"`
	DueDate    string         `json:"tanggalJatuhTempo"`
	Book       *BookSummary   `json:"buku"`
	Member     *MemberSummary `json:"anggota"`
}

func newHistoryItem(ret models.Return) HistoryItem {
	item := HistoryItem{ReturnDTO: NewReturnDTO(ret)}
	if ret.Loan == nil {
		return item
	}
	item.BorrowDate = dates.Format(ret.Loan.BorrowDate)
	item.DueDate = dates.Format(ret.Loan.DueDate)
	if ret.Loan.Book != nil {
		item.Book = &BookSummary{ID: ret.Loan.Book.ID, Title: ret.Loan.Book.Title, Author: ret.Loan.Book.Author}
	}
	if ret.Loan.Member != nil {
		item.Member = &MemberSummary{ID: ret.Loan.Member.ID, NIM: ret.Loan.Member.NIM, Name: ret.Loan.Member.Name}
	}
	return item
}

// ActiveBorrowing is an outstanding loan shown on the return desk.
type ActiveBorrowing struct {
	LoanID      int64        `json:"id"`
	BorrowDate  string       `json:"tanggalPinjam"`
	DueDate     string       `json:"tanggalJatuhTempo"`
	Status      string       `json:"status"`
	DaysOverdue int          `json:"hariTerlambat"`
	Book        *BookSummary `json:"buku"`
}

func newActiveBorrowing(loan models.Loan, today time.Time) ActiveBorrowing {
	item := ActiveBorrowing{
		LoanID:     loan.ID,
		BorrowDate: dates.Format(loan.BorrowDate),
		DueDate:    dates.Format(loan.DueDate),
		Status:     string(loan.Status),
	}
	due := dates.StartOfDay(loan.DueDate)
	if today.After(due) {
		item.DaysOverdue = int(today.Sub(due).Hours() / 24)
	}
	if loan.Book != nil {
		item.Book = &BookSummary{ID: loan.Book.ID, Title: loan.Book.Title, Author: loan.Book.Author}
	}
	return item
}

func newMemberSummary(m models.Member) MemberSummary {
	return MemberSummary{ID: m.ID, NIM: m.NIM, Name: m.Name}
}
