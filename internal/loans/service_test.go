package loans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andalib/andalib-backend/internal/books"
	"github.com/andalib/andalib-backend/internal/members"
	"github.com/andalib/andalib-backend/pkg/db"
	"github.com/andalib/andalib-backend/pkg/db/dbtest"
	"github.com/andalib/andalib-backend/pkg/db/models"
	"github.com/andalib/andalib-backend/pkg/enums"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

var today = time.Date(2024, 3, 4, 10, 15, 0, 0, time.UTC)

func newBorrowFixture(t *testing.T, stock int) (*db.Client, Service, *models.Member, *models.Book) {
	t.Helper()
	client := dbtest.New(t)
	ctx := context.Background()

	memberRepo := members.NewRepository(client.DB())
	bookRepo := books.NewRepository(client.DB())
	member := &models.Member{NIM: "2101777", Name: "Rahmat"}
	require.NoError(t, memberRepo.Create(ctx, member))
	book := &models.Book{Title: "Bumi Manusia", Author: "Pramoedya Ananta Toer", Stock: stock}
	require.NoError(t, bookRepo.Create(ctx, book))

	svc, err := NewService(ServiceParams{
		DB:      client,
		Loans:   NewRepository(client.DB()),
		Members: memberRepo,
		Books:   bookRepo,
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return today }
	return client, svc, member, book
}

func bookStock(t *testing.T, client *db.Client, id int64) int {
	t.Helper()
	var book models.Book
	require.NoError(t, client.DB().First(&book, "id = ?", id).Error)
	return book.Stock
}

func TestBorrowOpensLoanAndTakesStock(t *testing.T) {
	client, svc, member, book := newBorrowFixture(t, 2)

	loan, err := svc.Borrow(context.Background(), BorrowInput{MemberID: member.ID, BookID: book.ID, DueDate: "11/03/2024"})
	require.NoError(t, err)

	assert.Equal(t, enums.LoanStatusActive, loan.Status)
	assert.True(t, loan.BorrowDate.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, loan.DueDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, bookStock(t, client, book.ID))

	dto := NewLoanDTO(*loan)
	assert.Equal(t, "04/03/2024", dto.BorrowDate)
	assert.Equal(t, "ACTIVE", dto.Status)
}

func TestBorrowDefaultsDueDate(t *testing.T) {
	_, svc, member, book := newBorrowFixture(t, 1)

	loan, err := svc.Borrow(context.Background(), BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	assert.True(t, loan.DueDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestBorrowEmptyShelfConflicts(t *testing.T) {
	client, svc, member, book := newBorrowFixture(t, 0)

	_, err := svc.Borrow(context.Background(), BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.Zero(t, bookStock(t, client, book.ID))

	var n int64
	require.NoError(t, client.DB().Model(&models.Loan{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestBorrowLastCopyOnce(t *testing.T) {
	_, svc, member, book := newBorrowFixture(t, 1)
	ctx := context.Background()

	_, err := svc.Borrow(ctx, BorrowInput{MemberID: member.ID, BookID: book.ID})
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, BorrowInput{MemberID: member.ID, BookID: book.ID})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestBorrowUnknownMemberOrBook(t *testing.T) {
	client, svc, member, book := newBorrowFixture(t, 3)
	ctx := context.Background()

	_, err := svc.Borrow(ctx, BorrowInput{MemberID: 999, BookID: book.ID})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Equal(t, 3, bookStock(t, client, book.ID))

	_, err = svc.Borrow(ctx, BorrowInput{MemberID: member.ID, BookID: 999})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestBorrowRejectsDeletedMember(t *testing.T) {
	_, svc, member, book := newBorrowFixture(t, 3)
	ctx := context.Background()

	repo := svc.(*service).members.(*members.Repository)
	deleted, err := repo.SoftDelete(ctx, member.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = svc.Borrow(ctx, BorrowInput{MemberID: member.ID, BookID: book.ID})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestBorrowValidation(t *testing.T) {
	_, svc, member, book := newBorrowFixture(t, 3)
	ctx := context.Background()

	cases := []BorrowInput{
		{BookID: book.ID},
		{MemberID: member.ID},
		{MemberID: member.ID, BookID: book.ID, DueDate: "lusa"},
		{MemberID: member.ID, BookID: book.ID, DueDate: "2024-03-01"},
	}
	for _, in := range cases {
		_, err := svc.Borrow(ctx, in)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), "input %+v", in)
	}
}
