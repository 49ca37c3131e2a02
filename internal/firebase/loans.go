package firebase

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// CreateLoan writes a loan and its detail records in one transaction, so a
// loan can never be observed with a partial set of details.
func (c *Client) CreateLoan(ctx context.Context, loan *models.Loan, details []*models.LoanDetail) (string, error) {
	if loan == nil {
		return "", apperr.NewValidation("loan must not be nil")
	}
	if len(details) == 0 {
		return "", apperr.NewValidation("a loan needs at least one detail record")
	}

	var loanRef *firestore.DocumentRef
	if loan.Code == "" {
		loanRef = c.Firestore.Collection(LoansCollection).NewDoc()
		loan.Code = loanRef.ID
	} else {
		loanRef = c.Firestore.Collection(LoansCollection).Doc(loan.Code)
	}

	for _, d := range details {
		d.LoanCode = loan.Code
	}

	err := c.Firestore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(loanRef, loan); err != nil {
			return err
		}
		for _, d := range details {
			var detailRef *firestore.DocumentRef
			if d.ID == "" {
				detailRef = c.Firestore.Collection(DetailsCollection).NewDoc()
				d.ID = detailRef.ID
			} else {
				detailRef = c.Firestore.Collection(DetailsCollection).Doc(d.ID)
			}
			if err := tx.Create(detailRef, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", storeErr("creating loan", err)
	}
	return loan.Code, nil
}

// GetLoan fetches a loan by its code.
func (c *Client) GetLoan(ctx context.Context, code string) (*models.Loan, error) {
	if code == "" {
		return nil, apperr.NewValidation("loan code must not be empty")
	}

	doc, err := c.Firestore.Collection(LoansCollection).Doc(code).Get(ctx)
	if err != nil {
		return nil, storeErr("fetching loan", err)
	}

	var loan models.Loan
	if err := doc.DataTo(&loan); err != nil {
		return nil, storeErr("decoding loan", err)
	}
	loan.Code = doc.Ref.ID
	return &loan, nil
}

// ListLoans scans every loan record.
func (c *Client) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	return c.scanLoans(c.Firestore.Collection(LoansCollection).Documents(ctx))
}

// ListLoansByBorrower returns a borrower's loans.
func (c *Client) ListLoansByBorrower(ctx context.Context, borrowerID string) ([]*models.Loan, error) {
	if borrowerID == "" {
		return nil, apperr.NewValidation("borrower id must not be empty")
	}
	iter := c.Firestore.Collection(LoansCollection).
		Where(storage.FieldBorrowerID, "==", borrowerID).
		Documents(ctx)
	return c.scanLoans(iter)
}

func (c *Client) scanLoans(iter *firestore.DocumentIterator) ([]*models.Loan, error) {
	defer iter.Stop()

	var loans []*models.Loan
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("listing loans", err)
		}

		var loan models.Loan
		if err := doc.DataTo(&loan); err != nil {
			return nil, storeErr("decoding loan", err)
		}
		loan.Code = doc.Ref.ID
		loans = append(loans, &loan)
	}
	return loans, nil
}

// ListLoanDetails returns the book-selection records of a loan.
func (c *Client) ListLoanDetails(ctx context.Context, code string) ([]*models.LoanDetail, error) {
	if code == "" {
		return nil, apperr.NewValidation("loan code must not be empty")
	}

	iter := c.Firestore.Collection(DetailsCollection).
		Where(storage.FieldLoanCode, "==", code).
		Documents(ctx)
	defer iter.Stop()

	var details []*models.LoanDetail
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("listing loan details", err)
		}

		var d models.LoanDetail
		if err := doc.DataTo(&d); err != nil {
			return nil, storeErr("decoding loan detail", err)
		}
		d.ID = doc.Ref.ID
		details = append(details, &d)
	}
	return details, nil
}

// UpdateLoan applies a merge-patch to a loan record.
func (c *Client) UpdateLoan(ctx context.Context, code string, fields storage.Fields) error {
	if code == "" {
		return apperr.NewValidation("loan code must not be empty")
	}

	if _, err := c.Firestore.Collection(LoansCollection).Doc(code).Update(ctx, fieldUpdates(fields)); err != nil {
		return storeErr("updating loan", err)
	}
	return nil
}

// DeleteLoan removes a loan and all of its detail records in one
// transaction. Deleting an absent code is not an error.
func (c *Client) DeleteLoan(ctx context.Context, code string) error {
	if code == "" {
		return apperr.NewValidation("loan code must not be empty")
	}

	details, err := c.ListLoanDetails(ctx, code)
	if err != nil {
		return err
	}

	loanRef := c.Firestore.Collection(LoansCollection).Doc(code)
	err = c.Firestore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(loanRef); err != nil {
			return err
		}
		for _, d := range details {
			if err := tx.Delete(c.Firestore.Collection(DetailsCollection).Doc(d.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr("deleting loan", err)
	}
	return nil
}

// CountLoansByStatus counts loans with the given stored status.
func (c *Client) CountLoansByStatus(ctx context.Context, status models.LoanStatus) (int, error) {
	docs, err := c.Firestore.Collection(LoansCollection).
		Where(storage.FieldStatus, "==", string(status)).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, storeErr("counting loans", err)
	}
	return len(docs), nil
}
