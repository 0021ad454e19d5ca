package returns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andalib/andalib-backend/internal/notifications"
	"github.com/andalib/andalib-backend/pkg/dates"
	"github.com/andalib/andalib-backend/pkg/db"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

// MemberSearchLimit caps the member lookup used by the return desk.
const MemberSearchLimit = 5

// Service defines the return desk operations.
type Service interface {
	ProcessReturn(ctx context.Context, input ProcessInput) (*models.Return, error)
	UpdateReturn(ctx context.Context, returnID int64, input UpdateInput) (*models.Return, error)
	DeleteReturn(ctx context.Context, returnID int64) error
	History(ctx context.Context) ([]HistoryItem, error)
	ActiveBorrowings(ctx context.Context, nim string) ([]ActiveBorrowing, error)
	SearchMembers(ctx context.Context, query string) ([]MemberSummary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type loanStore interface {
	FindByIDWithTx(ctx context.Context, tx *gorm.DB, id int64) (*models.Loan, error)
	MarkReturnedWithTx(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
	ActiveByMemberNIM(ctx context.Context, nim string) ([]models.Loan, error)
}

type stockStore interface {
	IncrementStockWithTx(ctx context.Context, tx *gorm.DB, bookID int64) error
}

type memberStore interface {
	FindByNIM(ctx context.Context, nim string) (*models.Member, error)
	Search(ctx context.Context, query string, limit int) ([]models.Member, error)
}

// Notifier accepts fire-and-forget admin notifications.
type Notifier interface {
	Enqueue(ctx context.Context, event notifications.Event) bool
}

type ServiceParams struct {
	DB       txRunner
	Returns  *Repository
	Loans    loanStore
	Books    stockStore
	Members  memberStore
	Notifier Notifier
	Logger   *logger.Logger
}

type service struct {
	db       txRunner
	returns  *Repository
	loans    loanStore
	books    stockStore
	members  memberStore
	notifier Notifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Returns == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "returns repository required")
	}
	if params.Loans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "loans repository required")
	}
	if params.Books == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "books repository required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		db:       params.DB,
		returns:  params.Returns,
		loans:    params.Loans,
		books:    params.Books,
		members:  params.Members,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) ProcessReturn(ctx context.Context, input ProcessInput) (*models.Return, error) {
	if input.LoanID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "peminjamanId is required")
	}

	returnDate := dates.StartOfDay(s.now())
	if strings.TrimSpace(input.ReturnDate) != "" {
		parsed, err := dates.Parse(input.ReturnDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tanggalPengembalian").
				WithDetails(map[string]any{"tanggalPengembalian": input.ReturnDate})
		}
		returnDate = parsed
	}

	ret := &models.Return{
		LoanID:         input.LoanID,
		ReturnDate:     returnDate,
		Fine:           ParseFine(input.Fine),
		DamageProofURL: normalizeOptional(input.DamageProofURL),
		Remark:         normalizeOptional(input.Remark),
	}

	var loan *models.Loan
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		loan, err = s.loadLoan(ctx, tx, input.LoanID)
		if err != nil {
			return err
		}
		if err := checkReturnDate(returnDate, loan); err != nil {
			return err
		}
		if loan.Status != enums.LoanStatusActive {
			return pkgerrors.New(pkgerrors.CodeConflict, "loan already returned").
				WithDetails(map[string]any{"peminjamanId": loan.ID, "status": loan.Status.String()})
		}

		if err := s.returns.WithTx(tx).Create(ctx, ret); err != nil {
			if db.IsUniqueViolation(err, "ux_returns_loan_id") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "loan already has a return")
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create return")
		}
		if err := s.books.IncrementStockWithTx(ctx, tx, loan.BookID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "increment book stock")
		}
		flipped, err := s.loans.MarkReturnedWithTx(ctx, tx, loan.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "mark loan returned")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeConflict, "loan already returned").
				WithDetails(map[string]any{"peminjamanId": loan.ID})
		}
		return nil
	})
	if err != nil {
		return nil, asPersistence(err, "process return")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"return_id": ret.ID,
		"loan_id":   ret.LoanID,
		"book_id":   loan.BookID,
		"fine":      ret.Fine,
	})
	s.logg.Info(logCtx, "return processed")

	if ret.HasDamageProof() {
		s.notifyDamageProof(ctx, ret, loan)
	}
	return ret, nil
}

func (s *service) UpdateReturn(ctx context.Context, returnID int64, input UpdateInput) (*models.Return, error) {
	if returnID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return id")
	}
	if input.LoanID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "peminjamanId is required")
	}

	var newDate *time.Time
	if strings.TrimSpace(input.ReturnDate) != "" {
		parsed, err := dates.Parse(input.ReturnDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tanggalPengembalian").
				WithDetails(map[string]any{"tanggalPengembalian": input.ReturnDate})
		}
		newDate = &parsed
	}

	var (
		ret        *models.Return
		loan       *models.Loan
		proofAdded bool
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		ret, err = s.returns.WithTx(tx).FindByID(ctx, returnID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load return")
		}
		if ret.LoanID != input.LoanID {
			return pkgerrors.New(pkgerrors.CodeValidation, "peminjamanId does not match this return").
				WithDetails(map[string]any{"peminjamanId": input.LoanID})
		}

		loan, err = s.loadLoan(ctx, tx, ret.LoanID)
		if err != nil {
			return err
		}

		if newDate != nil {
			ret.ReturnDate = *newDate
		}
		if err := checkReturnDate(ret.ReturnDate, loan); err != nil {
			return err
		}
		if input.Fine != nil {
			ret.Fine = ParseFine(input.Fine)
		}
		hadProof := ret.HasDamageProof()
		if input.DamageProofURL != nil {
			ret.DamageProofURL = normalizeOptional(input.DamageProofURL)
		}
		if input.Remark != nil {
			ret.Remark = normalizeOptional(input.Remark)
		}
		proofAdded = !hadProof && ret.HasDamageProof()

		if err := s.returns.WithTx(tx).UpdateDetails(ctx, ret); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update return")
		}
		return nil
	})
	if err != nil {
		return nil, asPersistence(err, "update return")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"return_id": ret.ID, "loan_id": ret.LoanID}), "return updated")

	if proofAdded {
		s.notifyDamageProof(ctx, ret, loan)
	}
	return ret, nil
}

// DeleteReturn removes the return row only. Book stock and loan status keep
// whatever the return had set.
func (s *service) DeleteReturn(ctx context.Context, returnID int64) error {
	if returnID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid return id")
	}
	deleted, err := s.returns.Delete(ctx, returnID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete return")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "return_id", returnID), "return deleted")
	return nil
}

func (s *service) History(ctx context.Context) ([]HistoryItem, error) {
	rows, err := s.returns.History(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list return history")
	}
	items := make([]HistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, newHistoryItem(row))
	}
	return items, nil
}

func (s *service) ActiveBorrowings(ctx context.Context, nim string) ([]ActiveBorrowing, error) {
	nim = strings.TrimSpace(nim)
	if nim == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nim is required")
	}
	if _, err := s.members.FindByNIM(ctx, nim); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load member")
	}

	loans, err := s.loans.ActiveByMemberNIM(ctx, nim)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list active loans")
	}
	today := dates.StartOfDay(s.now())
	items := make([]ActiveBorrowing, 0, len(loans))
	for _, loan := range loans {
		items = append(items, newActiveBorrowing(loan, today))
	}
	return items, nil
}

func (s *service) SearchMembers(ctx context.Context, query string) ([]MemberSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}
	rows, err := s.members.Search(ctx, query, MemberSearchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "search members")
	}
	items := make([]MemberSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, newMemberSummary(row))
	}
	return items, nil
}

func (s *service) loadLoan(ctx context.Context, tx *gorm.DB, loanID int64) (*models.Loan, error) {
	loan, err := s.loans.FindByIDWithTx(ctx, tx, loanID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan not found").
				WithDetails(map[string]any{"peminjamanId": loanID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load loan")
	}
	return loan, nil
}

// notifyDamageProof hands the fan-out to the dispatcher; the return has already
// committed so nothing here can fail the request.
func (s *service) notifyDamageProof(ctx context.Context, ret *models.Return, loan *models.Loan) {
	if s.notifier == nil {
		return
	}
	event := damageProofEvent(ret, loan)
	if !s.notifier.Enqueue(ctx, event) {
		s.logg.Warn(s.logg.WithField(ctx, "return_id", ret.ID), "damage proof notification dropped")
	}
}

func damageProofEvent(ret *models.Return, loan *models.Loan) notifications.Event {
	bookTitle := fmt.Sprintf("#%d", loan.BookID)
	if loan.Book != nil {
		bookTitle = loan.Book.Title
	}
	memberLabel := fmt.Sprintf("anggota #%d", loan.MemberID)
	if loan.Member != nil {
		memberLabel = fmt.Sprintf("%s (%s)", loan.Member.Name, loan.Member.NIM)
	}

	return notifications.Event{
		Type:    enums.NotificationTypeReturnDamageProof,
		Title:   "Bukti kerusakan buku",
		Message: fmt.Sprintf("Pengembalian buku %q oleh %s menyertakan bukti kerusakan.", bookTitle, memberLabel),
		Metadata: map[string]any{
			"returnId":          ret.ID,
			"peminjamanId":      loan.ID,
			"bookId":            loan.BookID,
			"memberId":          loan.MemberID,
			"buktiKerusakanUrl": *ret.DamageProofURL,
			"denda":             ret.Fine,
		},
	}
}

func checkReturnDate(returnDate time.Time, loan *models.Loan) error {
	borrowDay := dates.StartOfDay(loan.BorrowDate)
	if dates.StartOfDay(returnDate).Before(borrowDay) {
		return pkgerrors.New(pkgerrors.CodeValidation, "tanggalPengembalian must not precede the borrow date").
			WithDetails(map[string]any{
				"tanggalPengembalian": dates.Format(returnDate),
				"tanggalPinjam":       dates.Format(borrowDay),
			})
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// asPersistence keeps typed errors and classifies the rest (commit failures,
// driver errors) as persistence errors.
func asPersistence(err error, msg string) error {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, msg)
}
