package loans

import (
	"context"

	"go.uber.org/zap"

	"library-loan-tracker/internal/models"
)

// View is a loan prepared for display: the stored record, its book
// selections with joined titles, the borrower's name, and the derived
// overdue flag.
type View struct {
	models.Loan
	BorrowerName string       `json:"borrowerName"`
	Overdue      bool         `json:"overdue"`
	Details      []DetailView `json:"details"`
}

// DetailView is one book selection with its joined title.
type DetailView struct {
	ID        string `json:"id"`
	BookID    string `json:"bookId"`
	BookTitle string `json:"bookTitle"`
}

// enrich joins details, book titles and the borrower name onto a loan. Join
// failures degrade to blank fields rather than failing the whole view; an
// absent referenced record is an expected state of the denormalized schema.
func (s *Service) enrich(ctx context.Context, loan *models.Loan) View {
	details, err := s.store.ListLoanDetails(ctx, loan.Code)
	if err != nil {
		s.log.Warn("loading loan details failed", zap.String("code", loan.Code), zap.Error(err))
	}

	var borrower *models.Borrower
	if b, err := s.store.GetBorrower(ctx, loan.BorrowerID); err == nil {
		borrower = b
	} else {
		s.log.Warn("loading borrower failed", zap.String("code", loan.Code), zap.Error(err))
	}

	return s.buildView(ctx, loan, details, borrower)
}

func (s *Service) buildView(ctx context.Context, loan *models.Loan, details []*models.LoanDetail, borrower *models.Borrower) View {
	view := View{
		Loan:    *loan,
		Overdue: loan.IsOverdueAt(s.clock.Now()),
		Details: make([]DetailView, 0, len(details)),
	}
	if borrower != nil {
		view.BorrowerName = borrower.Name
	}

	for _, d := range details {
		dv := DetailView{ID: d.ID, BookID: d.BookID}
		if book, err := s.store.GetBook(ctx, d.BookID); err == nil {
			dv.BookTitle = book.Title
		}
		view.Details = append(view.Details, dv)
	}
	return view
}

func (s *Service) enrichAll(ctx context.Context, loans []*models.Loan) []View {
	views := make([]View, 0, len(loans))
	for _, loan := range loans {
		views = append(views, s.enrich(ctx, loan))
	}
	return views
}
