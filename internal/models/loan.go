package models

import (
	"fmt"
	"time"
)

// LoanStatus is the stored lifecycle state of a loan, persisted as a single
// letter code.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "A" // requested, awaiting admin decision
	LoanStatusActive   LoanStatus = "S" // accepted, books out
	LoanStatusReturned LoanStatus = "L" // books back, terminal
	LoanStatusOverdue  LoanStatus = "B" // past due; derived, never written by transitions
)

// ParseLoanStatus validates a stored status value. Anything outside the four
// codes is a data-integrity violation.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch st := LoanStatus(s); st {
	case LoanStatusPending, LoanStatusActive, LoanStatusReturned, LoanStatusOverdue:
		return st, nil
	default:
		return "", fmt.Errorf("invalid loan status %q", s)
	}
}

// Loan is the aggregate root of a borrow request. Code acts as the primary
// key and is referenced by the loan's LoanDetail children.
type Loan struct {
	Code         string     `json:"code" firestore:"code"`
	BorrowerID   string     `json:"borrowerId" firestore:"borrowerId"`
	RequestedAt  time.Time  `json:"requestedAt" firestore:"requestedAt"`
	PickupDate   time.Time  `json:"pickupDate" firestore:"pickupDate"`
	DueDate      time.Time  `json:"dueDate" firestore:"dueDate"`
	ReturnedDate *time.Time `json:"returnedDate" firestore:"returnedDate"`
	Status       LoanStatus `json:"status" firestore:"status"`
}

// IsOverdueAt reports whether the loan is overdue at the given instant. The
// stored status can lag behind reality, so overdue is always derived here
// rather than trusted from the status field.
func (l *Loan) IsOverdueAt(now time.Time) bool {
	if l.Status == LoanStatusReturned || l.Status == LoanStatusPending {
		return false
	}
	return l.DueDate.Before(now)
}

// LoanDetail links one Loan to one Book. Details are created with their
// parent and removed with it; they have no lifecycle of their own.
type LoanDetail struct {
	ID       string `json:"id" firestore:"id"`
	LoanCode string `json:"loanCode" firestore:"loanCode"`
	BookID   string `json:"bookId" firestore:"bookId"`
}
