package loans

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/identity"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) New() (string, error) {
	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	clock    *fakeClock
	admin    identity.Identity
	borrower identity.Identity
	bookIDs  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewServiceWithDeps(store, clock, &seqIDGen{}, zap.NewNop())

	ctx := context.Background()
	borrowerID, err := store.CreateBorrower(ctx, &models.Borrower{
		Name:     "Siti Rahma",
		Username: "siti",
		Active:   true,
		AuthUID:  "uid-siti",
	})
	require.NoError(t, err)

	var bookIDs []string
	for _, title := range []string{"Laskar Pelangi", "Bumi Manusia"} {
		id, err := store.CreateBook(ctx, &models.Book{Title: title, Author: "A"})
		require.NoError(t, err)
		bookIDs = append(bookIDs, id)
	}

	return &fixture{
		svc:      svc,
		store:    store,
		clock:    clock,
		admin:    identity.Identity{Role: identity.RoleAdmin, AuthUID: "uid-admin", Name: "Pak Budi"},
		borrower: identity.Identity{Role: identity.RoleBorrower, AuthUID: "uid-siti", BorrowerID: borrowerID, Name: "Siti Rahma"},
		bookIDs:  bookIDs,
	}
}

func (f *fixture) requestInput() RequestInput {
	return RequestInput{
		BorrowerID: f.borrower.BorrowerID,
		BookIDs:    f.bookIDs,
		PickupDate: f.clock.now,
		DueDate:    f.clock.now.AddDate(0, 0, 7),
	}
}

func (f *fixture) requestLoan(t *testing.T) string {
	t.Helper()
	view, err := f.svc.Request(context.Background(), f.borrower, f.requestInput())
	require.NoError(t, err)
	return view.Code
}

func TestRequestCreatesPendingLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Request(ctx, f.borrower, f.requestInput())
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusPending, view.Status)
	assert.Equal(t, f.borrower.BorrowerID, view.BorrowerID)
	assert.Equal(t, "Siti Rahma", view.BorrowerName)
	assert.Equal(t, f.clock.now, view.RequestedAt)
	assert.False(t, view.Overdue)
	require.Len(t, view.Details, 2)

	stored, err := f.store.GetLoan(ctx, view.Code)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPending, stored.Status)
	assert.Nil(t, stored.ReturnedDate)

	details, err := f.store.ListLoanDetails(ctx, view.Code)
	require.NoError(t, err)
	require.Len(t, details, 2)
	seen := map[string]bool{}
	for _, d := range details {
		assert.Equal(t, view.Code, d.LoanCode)
		seen[d.BookID] = true
	}
	for _, bookID := range f.bookIDs {
		assert.True(t, seen[bookID])
	}
}

func TestRequestDefaultsPickupToNow(t *testing.T) {
	f := newFixture(t)

	in := f.requestInput()
	in.PickupDate = time.Time{}

	view, err := f.svc.Request(context.Background(), f.borrower, in)
	require.NoError(t, err)
	assert.Equal(t, f.clock.now, view.PickupDate)
}

func TestRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RequestInput)
	}{
		{"no books", func(in *RequestInput) { in.BookIDs = nil }},
		{"due before pickup", func(in *RequestInput) { in.DueDate = in.PickupDate.AddDate(0, 0, -1) }},
		{"due in the past", func(in *RequestInput) {
			in.PickupDate = f.clock.now.AddDate(0, 0, -10)
			in.DueDate = f.clock.now.AddDate(0, 0, -3)
		}},
		{"unknown borrower", func(in *RequestInput) { in.BorrowerID = "ghost" }},
		{"unknown book", func(in *RequestInput) { in.BookIDs = []string{f.bookIDs[0], "ghost"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.requestInput()
			tc.mutate(&in)
			// admins may request on behalf of anyone, which keeps the
			// input checks the ones under test
			_, err := f.svc.Request(ctx, f.admin, in)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}

	loans, err := f.store.ListLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans, "failed requests must not write anything")
}

func TestRequestForAnotherBorrowerDenied(t *testing.T) {
	f := newFixture(t)

	in := f.requestInput()
	in.BorrowerID = "someone-else"

	_, err := f.svc.Request(context.Background(), f.borrower, in)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))
}

func TestAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.requestLoan(t)

	require.NoError(t, f.svc.Accept(ctx, f.admin, code))

	loan, err := f.store.GetLoan(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, loan.Status)

	err = f.svc.Accept(ctx, f.admin, code)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestAcceptRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.requestLoan(t)

	err := f.svc.Accept(ctx, f.borrower, code)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))

	loan, err := f.store.GetLoan(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPending, loan.Status, "denied call must not mutate")
}

func TestRejectDeletesLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.requestLoan(t)

	require.NoError(t, f.svc.Reject(ctx, f.admin, code))

	_, err := f.store.GetLoan(ctx, code)
	assert.True(t, apperr.IsNotFound(err))

	details, err := f.store.ListLoanDetails(ctx, code)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestRejectNonPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.requestLoan(t)
	require.NoError(t, f.svc.Accept(ctx, f.admin, code))

	err := f.svc.Reject(ctx, f.admin, code)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))

	_, err = f.store.GetLoan(ctx, code)
	require.NoError(t, err, "a failed reject must not delete")
}

func TestReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.requestLoan(t)
	require.NoError(t, f.svc.Accept(ctx, f.admin, code))

	returnedAt := f.clock.now.AddDate(0, 0, 5)
	f.clock.now = returnedAt

	require.NoError(t, f.svc.Return(ctx, f.admin, code))

	loan, err := f.store.GetLoan(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnedDate)
	assert.Equal(t, returnedAt, *loan.ReturnedDate)

	err = f.svc.Return(ctx, f.admin, code)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestReturnPendingLoan(t *testing.T) {
	f := newFixture(t)
	code := f.requestLoan(t)

	err := f.svc.Return(context.Background(), f.admin, code)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestGetGuardsOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.requestLoan(t)

	view, err := f.svc.Get(ctx, f.borrower, code)
	require.NoError(t, err)
	assert.Equal(t, code, view.Code)

	stranger := identity.Identity{Role: identity.RoleBorrower, BorrowerID: "other"}
	_, err = f.svc.Get(ctx, stranger, code)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))

	_, err = f.svc.Get(ctx, f.admin, code)
	require.NoError(t, err)
}

func TestListForBorrower(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.requestLoan(t)

	views, err := f.svc.ListForBorrower(ctx, f.borrower, f.borrower.BorrowerID)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	_, err = f.svc.ListForBorrower(ctx, f.borrower, "other")
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))
}

func TestListAllRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.requestLoan(t)

	_, err := f.svc.ListAll(ctx, f.borrower)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))

	views, err := f.svc.ListAll(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestListOverdueDerivesFromDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.requestLoan(t)
	require.NoError(t, f.svc.Accept(ctx, f.admin, active))

	pending := f.requestLoan(t)

	// nothing is overdue while the due date is still ahead
	views, err := f.svc.ListOverdue(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, views)

	f.clock.now = f.clock.now.AddDate(0, 0, 14)

	views, err = f.svc.ListOverdue(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, active, views[0].Code)
	assert.True(t, views[0].Overdue)
	assert.NotEqual(t, pending, views[0].Code, "a pending request past its due date is not overdue")
}

func TestReturnedLoanNeverOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code := f.requestLoan(t)
	require.NoError(t, f.svc.Accept(ctx, f.admin, code))

	f.clock.now = f.clock.now.AddDate(0, 0, 14)
	require.NoError(t, f.svc.Return(ctx, f.admin, code))

	views, err := f.svc.ListOverdue(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, views)
}
