package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

func TestBookRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateBook(ctx, &models.Book{Title: "X", Author: "Y"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, "Y", got.Author)
	assert.Nil(t, got.Publisher)
	assert.Nil(t, got.PublishDate)
}

func TestGetBookNotFound(t *testing.T) {
	s := New()

	_, err := s.GetBook(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateBookMergePatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateBook(ctx, &models.Book{Title: "X", Author: "Y"})
	require.NoError(t, err)

	err = s.UpdateBook(ctx, id, storage.Fields{storage.FieldTitle: "Z"})
	require.NoError(t, err)

	got, err := s.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Z", got.Title)
	assert.Equal(t, "Y", got.Author, "unnamed fields must be untouched")

	err = s.UpdateBook(ctx, "missing", storage.Fields{storage.FieldTitle: "Z"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteBookIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateBook(ctx, &models.Book{Title: "X", Author: "Y"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteBook(ctx, id))
	require.NoError(t, s.DeleteBook(ctx, id), "deleting an absent key is not an error")
}

func TestBorrowerLookups(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateBorrower(ctx, &models.Borrower{
		Name:     "Siti",
		Username: "siti",
		Active:   true,
		AuthUID:  "uid-1",
	})
	require.NoError(t, err)

	byName, err := s.GetBorrowerByUsername(ctx, "siti")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	byUID, err := s.GetBorrowerByAuthUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, id, byUID.ID)

	_, err = s.GetBorrowerByUsername(ctx, "nobody")
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateLoanWithDetails(t *testing.T) {
	s := New()
	ctx := context.Background()

	loan := &models.Loan{
		BorrowerID: "b1",
		DueDate:    time.Now().AddDate(0, 0, 7),
		Status:     models.LoanStatusPending,
	}
	details := []*models.LoanDetail{{BookID: "bk1"}, {BookID: "bk2"}}

	code, err := s.CreateLoan(ctx, loan, details)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	got, err := s.ListLoanDetails(ctx, code)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, code, d.LoanCode)
		assert.NotEmpty(t, d.ID)
	}

	_, err = s.CreateLoan(ctx, &models.Loan{BorrowerID: "b1"}, nil)
	assert.Error(t, err, "a loan without details must be rejected")
}

func TestDeleteLoanCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	code, err := s.CreateLoan(ctx,
		&models.Loan{BorrowerID: "b1", Status: models.LoanStatusPending},
		[]*models.LoanDetail{{BookID: "bk1"}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLoan(ctx, code))

	_, err = s.GetLoan(ctx, code)
	assert.True(t, apperr.IsNotFound(err))

	details, err := s.ListLoanDetails(ctx, code)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestCountLoansByStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, st := range []models.LoanStatus{models.LoanStatusPending, models.LoanStatusPending, models.LoanStatusActive} {
		_, err := s.CreateLoan(ctx,
			&models.Loan{BorrowerID: "b1", Status: st},
			[]*models.LoanDetail{{BookID: "bk1"}})
		require.NoError(t, err)
	}

	pending, err := s.CountLoansByStatus(ctx, models.LoanStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	returned, err := s.CountLoansByStatus(ctx, models.LoanStatusReturned)
	require.NoError(t, err)
	assert.Equal(t, 0, returned)
}
