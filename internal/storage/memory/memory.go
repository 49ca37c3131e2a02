// Package memory is an in-memory implementation of the storage contracts. It
// backs the server when no Firebase credentials are configured and the test
// suites of the layers above. Multi-record operations hold one lock so the
// loan/detail atomicity guarantee matches the Firestore implementation.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// Store holds all four collections behind one mutex.
type Store struct {
	mu        sync.RWMutex
	books     map[string]*models.Book
	borrowers map[string]*models.Borrower
	admins    map[string]*models.Admin
	loans     map[string]*models.Loan
	details   map[string]*models.LoanDetail
}

// New returns an empty store.
func New() *Store {
	return &Store{
		books:     make(map[string]*models.Book),
		borrowers: make(map[string]*models.Borrower),
		admins:    make(map[string]*models.Admin),
		loans:     make(map[string]*models.Loan),
		details:   make(map[string]*models.LoanDetail),
	}
}

// Close is a no-op; it exists to satisfy storage.Store.
func (s *Store) Close() error { return nil }

// ---- books ----

func (s *Store) CreateBook(ctx context.Context, book *models.Book) (string, error) {
	if book == nil {
		return "", apperr.NewValidation("book must not be nil")
	}

	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	if book.ID == "" {
		book.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *book
	s.books[book.ID] = &cp
	return book.ID, nil
}

func (s *Store) GetBook(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, apperr.NewValidation("book id must not be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[id]
	if !ok {
		return nil, apperr.NewNotFound("book not found")
	}
	cp := *book
	return &cp, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var books []*models.Book
	for _, b := range s.books {
		cp := *b
		books = append(books, &cp)
	}
	return books, nil
}

func (s *Store) UpdateBook(ctx context.Context, id string, fields storage.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return apperr.NewNotFound("book not found")
	}
	for path, value := range fields {
		switch path {
		case storage.FieldTitle:
			book.Title = value.(string)
		case storage.FieldAuthor:
			book.Author = value.(string)
		case storage.FieldPublisher:
			book.Publisher = asStringPtr(value)
		case storage.FieldPublishDate:
			book.PublishDate = asTimePtr(value)
		}
	}
	book.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, id)
	return nil
}

func (s *Store) CountBooks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), nil
}

// ---- borrowers ----

func (s *Store) CreateBorrower(ctx context.Context, b *models.Borrower) (string, error) {
	if b == nil {
		return "", apperr.NewValidation("borrower must not be nil")
	}
	if b.Name == "" || b.Username == "" {
		return "", apperr.NewValidation("borrower name and username are required")
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.borrowers[b.ID] = &cp
	return b.ID, nil
}

func (s *Store) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	if id == "" {
		return nil, apperr.NewValidation("borrower id must not be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.borrowers[id]
	if !ok {
		return nil, apperr.NewNotFound("borrower not found")
	}
	cp := *b
	return &cp, nil
}

func (s *Store) GetBorrowerByUsername(ctx context.Context, username string) (*models.Borrower, error) {
	return s.findBorrower(func(b *models.Borrower) bool { return b.Username == username })
}

func (s *Store) GetBorrowerByAuthUID(ctx context.Context, uid string) (*models.Borrower, error) {
	return s.findBorrower(func(b *models.Borrower) bool { return b.AuthUID == uid })
}

func (s *Store) findBorrower(match func(*models.Borrower) bool) (*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.borrowers {
		if match(b) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperr.NewNotFound("borrower not found")
}

func (s *Store) ListBorrowers(ctx context.Context) ([]*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var borrowers []*models.Borrower
	for _, b := range s.borrowers {
		cp := *b
		borrowers = append(borrowers, &cp)
	}
	return borrowers, nil
}

func (s *Store) UpdateBorrower(ctx context.Context, id string, fields storage.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.borrowers[id]
	if !ok {
		return apperr.NewNotFound("borrower not found")
	}
	for path, value := range fields {
		switch path {
		case storage.FieldPhotoURL:
			b.PhotoURL = asStringPtr(value)
		case storage.FieldActive:
			b.Active = value.(bool)
		}
	}
	return nil
}

func (s *Store) CountBorrowers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.borrowers), nil
}

// ---- admins ----

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) (string, error) {
	if a == nil {
		return "", apperr.NewValidation("admin must not be nil")
	}
	if a.Name == "" || a.Username == "" {
		return "", apperr.NewValidation("admin name and username are required")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.admins[a.ID] = &cp
	return a.ID, nil
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return s.findAdmin(func(a *models.Admin) bool { return a.Username == username })
}

func (s *Store) GetAdminByAuthUID(ctx context.Context, uid string) (*models.Admin, error) {
	return s.findAdmin(func(a *models.Admin) bool { return a.AuthUID == uid })
}

func (s *Store) findAdmin(match func(*models.Admin) bool) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.admins {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.NewNotFound("admin not found")
}

// ---- loans ----

func (s *Store) CreateLoan(ctx context.Context, loan *models.Loan, details []*models.LoanDetail) (string, error) {
	if loan == nil {
		return "", apperr.NewValidation("loan must not be nil")
	}
	if len(details) == 0 {
		return "", apperr.NewValidation("a loan needs at least one detail record")
	}
	if loan.Code == "" {
		loan.Code = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *loan
	s.loans[loan.Code] = &cp
	for _, d := range details {
		d.LoanCode = loan.Code
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		dcp := *d
		s.details[d.ID] = &dcp
	}
	return loan.Code, nil
}

func (s *Store) GetLoan(ctx context.Context, code string) (*models.Loan, error) {
	if code == "" {
		return nil, apperr.NewValidation("loan code must not be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loans[code]
	if !ok {
		return nil, apperr.NewNotFound("loan not found")
	}
	cp := *loan
	return &cp, nil
}

func (s *Store) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var loans []*models.Loan
	for _, l := range s.loans {
		cp := *l
		loans = append(loans, &cp)
	}
	return loans, nil
}

func (s *Store) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var loans []*models.Loan
	for _, l := range s.loans {
		if l.BorrowerID == borrowerID {
			cp := *l
			loans = append(loans, &cp)
		}
	}
	return loans, nil
}

func (s *Store) ListLoanDetails(ctx context.Context, code string) ([]*models.LoanDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var details []*models.LoanDetail
	for _, d := range s.details {
		if d.LoanCode == code {
			cp := *d
			details = append(details, &cp)
		}
	}
	return details, nil
}

func (s *Store) UpdateLoan(ctx context.Context, code string, fields storage.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[code]
	if !ok {
		return apperr.NewNotFound("loan not found")
	}
	for path, value := range fields {
		switch path {
		case storage.FieldStatus:
			loan.Status = models.LoanStatus(value.(string))
		case storage.FieldReturnedDate:
			loan.ReturnedDate = asTimePtr(value)
		}
	}
	return nil
}

func (s *Store) DeleteLoan(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.loans, code)
	for id, d := range s.details {
		if d.LoanCode == code {
			delete(s.details, id)
		}
	}
	return nil
}

func (s *Store) CountLoansByStatus(ctx context.Context, status models.LoanStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, l := range s.loans {
		if l.Status == status {
			count++
		}
	}
	return count, nil
}

func asStringPtr(value any) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

func asTimePtr(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}
