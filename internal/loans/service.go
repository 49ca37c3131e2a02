// Package loans implements the loan lifecycle: request, accept, reject,
// return, and the derived overdue condition. Every transition guards the
// caller's role first and the current state second, before any write.
package loans

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/identity"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// Clock supplies the current time; injectable so tests control "now".
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// IDGen generates loan codes and detail ids.
type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Service is the lifecycle manager over the loan store.
type Service struct {
	store storage.Store
	clock Clock
	id    IDGen
	log   *zap.Logger
}

// NewService builds a service with the production clock and ULID codes.
func NewService(store storage.Store, log *zap.Logger) *Service {
	return &Service{store: store, clock: realClock{}, id: ulidGen{}, log: log}
}

// NewServiceWithDeps builds a service with explicit clock and id generator.
func NewServiceWithDeps(store storage.Store, clock Clock, id IDGen, log *zap.Logger) *Service {
	return &Service{store: store, clock: clock, id: id, log: log}
}

// RequestInput is a borrower's loan request.
type RequestInput struct {
	BorrowerID string    `json:"borrowerId"`
	BookIDs    []string  `json:"bookIds"`
	PickupDate time.Time `json:"pickupDate"`
	DueDate    time.Time `json:"dueDate"`
}

// Request validates and creates a Pending loan with one detail per book.
// Everything is checked before the first write: the store enforces no
// referential integrity, so the boundary must.
func (s *Service) Request(ctx context.Context, caller identity.Identity, in RequestInput) (*View, error) {
	if !caller.IsAdmin() && caller.BorrowerID != in.BorrowerID {
		return nil, apperr.NewPermissionDenied("borrowers may only request loans for themselves")
	}

	if len(in.BookIDs) == 0 {
		return nil, apperr.NewValidation("select at least one book")
	}

	now := s.clock.Now()
	pickup := in.PickupDate
	if pickup.IsZero() {
		pickup = now
	}
	if in.DueDate.Before(pickup) {
		return nil, apperr.NewValidation("due date must not be before the pickup date")
	}
	if in.DueDate.Before(now) {
		return nil, apperr.NewValidation("due date must not be in the past")
	}

	borrower, err := s.store.GetBorrower(ctx, in.BorrowerID)
	if apperr.IsNotFound(err) {
		return nil, apperr.NewValidation("borrower does not exist")
	}
	if err != nil {
		return nil, err
	}

	books := make(map[string]*models.Book, len(in.BookIDs))
	for _, bookID := range in.BookIDs {
		book, err := s.store.GetBook(ctx, bookID)
		if apperr.IsNotFound(err) {
			return nil, apperr.NewValidation("book " + bookID + " does not exist")
		}
		if err != nil {
			return nil, err
		}
		books[bookID] = book
	}

	code, err := s.id.New()
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		Code:        code,
		BorrowerID:  borrower.ID,
		RequestedAt: now,
		PickupDate:  pickup,
		DueDate:     in.DueDate,
		Status:      models.LoanStatusPending,
	}

	details := make([]*models.LoanDetail, 0, len(in.BookIDs))
	for _, bookID := range in.BookIDs {
		id, err := s.id.New()
		if err != nil {
			return nil, err
		}
		details = append(details, &models.LoanDetail{ID: id, LoanCode: code, BookID: bookID})
	}

	if _, err := s.store.CreateLoan(ctx, loan, details); err != nil {
		return nil, err
	}

	s.log.Info("loan requested",
		zap.String("code", code),
		zap.String("borrowerId", borrower.ID),
		zap.Int("books", len(details)))

	view := s.buildView(ctx, loan, details, borrower)
	return &view, nil
}

// Accept moves a Pending loan to Active. Admin only.
func (s *Service) Accept(ctx context.Context, caller identity.Identity, code string) error {
	if !caller.IsAdmin() {
		return apperr.NewPermissionDenied("only an admin can accept a loan")
	}

	loan, err := s.store.GetLoan(ctx, code)
	if err != nil {
		return err
	}
	if loan.Status != models.LoanStatusPending {
		return apperr.NewInvalidTransition("cannot accept a non-pending loan")
	}

	if err := s.store.UpdateLoan(ctx, code, storage.Fields{
		storage.FieldStatus: string(models.LoanStatusActive),
	}); err != nil {
		return err
	}

	s.log.Info("loan accepted", zap.String("code", code))
	return nil
}

// Reject removes a Pending loan and its details. Rejection is destructive:
// no Rejected status is retained. Admin only.
func (s *Service) Reject(ctx context.Context, caller identity.Identity, code string) error {
	if !caller.IsAdmin() {
		return apperr.NewPermissionDenied("only an admin can reject a loan")
	}

	loan, err := s.store.GetLoan(ctx, code)
	if err != nil {
		return err
	}
	if loan.Status != models.LoanStatusPending {
		return apperr.NewInvalidTransition("cannot reject a non-pending loan")
	}

	if err := s.store.DeleteLoan(ctx, code); err != nil {
		return err
	}

	s.log.Info("loan rejected and removed", zap.String("code", code))
	return nil
}

// Return marks the books as physically back: returnedDate is set and the
// status becomes Returned. Valid from Active, including loans whose stored
// status lagged into Overdue. Admin only.
func (s *Service) Return(ctx context.Context, caller identity.Identity, code string) error {
	if !caller.IsAdmin() {
		return apperr.NewPermissionDenied("only an admin can register a return")
	}

	loan, err := s.store.GetLoan(ctx, code)
	if err != nil {
		return err
	}
	switch loan.Status {
	case models.LoanStatusActive, models.LoanStatusOverdue:
		// returnable
	case models.LoanStatusReturned:
		return apperr.NewInvalidTransition("loan is already returned")
	default:
		return apperr.NewInvalidTransition("cannot return a loan that was never accepted")
	}

	now := s.clock.Now()
	if err := s.store.UpdateLoan(ctx, code, storage.Fields{
		storage.FieldStatus:       string(models.LoanStatusReturned),
		storage.FieldReturnedDate: now,
	}); err != nil {
		return err
	}

	s.log.Info("loan returned", zap.String("code", code),
		zap.Bool("wasOverdue", loan.IsOverdueAt(now)))
	return nil
}

// Get returns one loan enriched for display. Borrowers can only see their
// own loans.
func (s *Service) Get(ctx context.Context, caller identity.Identity, code string) (*View, error) {
	loan, err := s.store.GetLoan(ctx, code)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && loan.BorrowerID != caller.BorrowerID {
		return nil, apperr.NewPermissionDenied("not your loan")
	}

	view := s.enrich(ctx, loan)
	return &view, nil
}

// ListAll returns every loan, enriched. Admin only.
func (s *Service) ListAll(ctx context.Context, caller identity.Identity) ([]View, error) {
	if !caller.IsAdmin() {
		return nil, apperr.NewPermissionDenied("only an admin can list all loans")
	}
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(ctx, loans), nil
}

// ListForBorrower returns one borrower's loans, enriched. A borrower can
// only list their own.
func (s *Service) ListForBorrower(ctx context.Context, caller identity.Identity, borrowerID string) ([]View, error) {
	if !caller.IsAdmin() && caller.BorrowerID != borrowerID {
		return nil, apperr.NewPermissionDenied("not your loans")
	}
	loans, err := s.store.ListLoansByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(ctx, loans), nil
}

// ListOverdue returns the loans overdue right now. Overdue is always derived
// from the due date at read time, never trusted from the stored status.
// Admin only.
func (s *Service) ListOverdue(ctx context.Context, caller identity.Identity) ([]View, error) {
	if !caller.IsAdmin() {
		return nil, apperr.NewPermissionDenied("only an admin can list overdue loans")
	}

	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var overdue []*models.Loan
	for _, loan := range loans {
		if loan.IsOverdueAt(now) {
			overdue = append(overdue, loan)
		}
	}
	return s.enrichAll(ctx, overdue), nil
}
