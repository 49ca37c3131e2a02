// Package storage defines the repository contracts over the four document
// collections. Two implementations exist: firestorex against the external
// document database, and memory for tests and credential-less development.
//
// Shared semantics, honored by both implementations:
//   - create assigns a key when the record carries none and returns it;
//     optional fields are persisted as explicit nulls, never omitted
//   - get-by-id reports an absent key as apperr NOT_FOUND
//   - list operations are full scans with no ordering guarantee
//   - update is merge-patch over named fields and fails NOT_FOUND
//   - delete is idempotent: deleting an absent key is not an error
//   - a transient backend failure surfaces as apperr UNAVAILABLE, untried
package storage

import (
	"context"

	"library-loan-tracker/internal/models"
)

// Fields is a merge-patch: only the named fields change on update.
type Fields map[string]any

// Books is the catalog repository.
type Books interface {
	CreateBook(ctx context.Context, book *models.Book) (string, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	ListBooks(ctx context.Context) ([]*models.Book, error)
	UpdateBook(ctx context.Context, id string, fields Fields) error
	DeleteBook(ctx context.Context, id string) error
	CountBooks(ctx context.Context) (int, error)
}

// Borrowers is the patron repository. Username and auth-uid lookups are the
// equality-filtered scans the identity gate depends on.
type Borrowers interface {
	CreateBorrower(ctx context.Context, b *models.Borrower) (string, error)
	GetBorrower(ctx context.Context, id string) (*models.Borrower, error)
	GetBorrowerByUsername(ctx context.Context, username string) (*models.Borrower, error)
	GetBorrowerByAuthUID(ctx context.Context, uid string) (*models.Borrower, error)
	ListBorrowers(ctx context.Context) ([]*models.Borrower, error)
	UpdateBorrower(ctx context.Context, id string, fields Fields) error
	CountBorrowers(ctx context.Context) (int, error)
}

// Admins is the staff repository.
type Admins interface {
	CreateAdmin(ctx context.Context, a *models.Admin) (string, error)
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetAdminByAuthUID(ctx context.Context, uid string) (*models.Admin, error)
}

// Loans is the loan aggregate repository. CreateLoan and DeleteLoan span the
// loan and detail collections atomically, so a loan can never be observed
// with a partial set of details.
type Loans interface {
	CreateLoan(ctx context.Context, loan *models.Loan, details []*models.LoanDetail) (string, error)
	GetLoan(ctx context.Context, code string) (*models.Loan, error)
	ListLoans(ctx context.Context) ([]*models.Loan, error)
	ListLoansByBorrower(ctx context.Context, borrowerID string) ([]*models.Loan, error)
	ListLoanDetails(ctx context.Context, code string) ([]*models.LoanDetail, error)
	UpdateLoan(ctx context.Context, code string, fields Fields) error
	DeleteLoan(ctx context.Context, code string) error
	CountLoansByStatus(ctx context.Context, status models.LoanStatus) (int, error)
}

// Store combines the four repositories behind one handle.
type Store interface {
	Books
	Borrowers
	Admins
	Loans
	Close() error
}

// Field names used in merge-patches and equality filters. Kept as constants
// so the two implementations and the lifecycle layer cannot drift.
const (
	FieldStatus       = "status"
	FieldReturnedDate = "returnedDate"
	FieldPhotoURL     = "photoUrl"
	FieldActive       = "active"
	FieldTitle        = "title"
	FieldAuthor       = "author"
	FieldPublisher    = "publisher"
	FieldPublishDate  = "publishDate"
	FieldUpdatedAt    = "updatedAt"
	FieldUsername     = "username"
	FieldAuthUID      = "authUid"
	FieldBorrowerID   = "borrowerId"
	FieldLoanCode     = "loanCode"
)
