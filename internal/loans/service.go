package loans

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andalib/andalib-backend/pkg/dates"
	"github.com/andalib/andalib-backend/pkg/db"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

// DefaultLoanPeriod applies when a borrow request carries no due date.
const DefaultLoanPeriod = 7 * 24 * time.Hour

// Service owns the borrow side of the loan lifecycle.
type Service interface {
	Borrow(ctx context.Context, input BorrowInput) (*models.Loan, error)
}

type BorrowInput struct {
	MemberID   int64
	BookID     int64
	BorrowDate string
	DueDate    string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type memberFinder interface {
	FindByIDWithTx(ctx context.Context, tx *gorm.DB, id int64) (*models.Member, error)
}

type stockStore interface {
	FindByIDWithTx(ctx context.Context, tx *gorm.DB, id int64) (*models.Book, error)
	DecrementStockIfAvailableWithTx(ctx context.Context, tx *gorm.DB, bookID int64) (bool, error)
}

type ServiceParams struct {
	DB      txRunner
	Loans   *Repository
	Members memberFinder
	Books   stockStore
	Logger  *logger.Logger
}

type service struct {
	db      txRunner
	loans   *Repository
	members memberFinder
	books   stockStore
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Loans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "loans repository required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if params.Books == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "books repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		db:      params.DB,
		loans:   params.Loans,
		members: params.Members,
		books:   params.Books,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// Borrow takes one copy off the shelf and opens an ACTIVE loan in the same
// transaction. An empty shelf is a conflict.
func (s *service) Borrow(ctx context.Context, input BorrowInput) (*models.Loan, error) {
	if input.MemberID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "memberId is required")
	}
	if input.BookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bookId is required")
	}

	borrowDate := dates.StartOfDay(s.now())
	if strings.TrimSpace(input.BorrowDate) != "" {
		parsed, err := dates.Parse(input.BorrowDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid borrowDate")
		}
		borrowDate = parsed
	}
	dueDate := borrowDate.Add(DefaultLoanPeriod)
	if strings.TrimSpace(input.DueDate) != "" {
		parsed, err := dates.Parse(input.DueDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dueDate")
		}
		dueDate = parsed
	}
	if dueDate.Before(borrowDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dueDate must not precede the borrow date").
			WithDetails(map[string]any{"dueDate": dates.Format(dueDate), "borrowDate": dates.Format(borrowDate)})
	}

	loan := &models.Loan{
		MemberID:   input.MemberID,
		BookID:     input.BookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		Status:     enums.LoanStatusActive,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.members.FindByIDWithTx(ctx, tx, input.MemberID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load member")
		}

		taken, err := s.books.DecrementStockIfAvailableWithTx(ctx, tx, input.BookID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decrement book stock")
		}
		if !taken {
			if _, err := s.books.FindByIDWithTx(ctx, tx, input.BookID); err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load book")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "book is out of stock").
				WithDetails(map[string]any{"bookId": input.BookID})
		}

		if err := s.loans.WithTx(tx).Create(ctx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create loan")
		}
		return nil
	})
	if err != nil {
		var typed *pkgerrors.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "borrow book")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"loan_id":   loan.ID,
		"member_id": loan.MemberID,
		"book_id":   loan.BookID,
	}), "loan opened")
	return loan, nil
}
