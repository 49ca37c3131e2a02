package firebase

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// CreateBorrower persists a borrower record. The caller assigns the id
// (borrower ids come from the registration flow, not the store).
func (c *Client) CreateBorrower(ctx context.Context, b *models.Borrower) (string, error) {
	if b == nil {
		return "", apperr.NewValidation("borrower must not be nil")
	}
	if b.Name == "" || b.Username == "" {
		return "", apperr.NewValidation("borrower name and username are required")
	}

	var docRef *firestore.DocumentRef
	if b.ID == "" {
		docRef = c.Firestore.Collection(BorrowersCollection).NewDoc()
		b.ID = docRef.ID
	} else {
		docRef = c.Firestore.Collection(BorrowersCollection).Doc(b.ID)
	}

	if _, err := docRef.Set(ctx, b); err != nil {
		return "", storeErr("creating borrower", err)
	}
	return b.ID, nil
}

// GetBorrower fetches a borrower by id.
func (c *Client) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	if id == "" {
		return nil, apperr.NewValidation("borrower id must not be empty")
	}

	doc, err := c.Firestore.Collection(BorrowersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeErr("fetching borrower", err)
	}

	var b models.Borrower
	if err := doc.DataTo(&b); err != nil {
		return nil, storeErr("decoding borrower", err)
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// GetBorrowerByUsername resolves the human-chosen login name to a borrower
// record. This lookup is the username-to-account mapping step of login.
func (c *Client) GetBorrowerByUsername(ctx context.Context, username string) (*models.Borrower, error) {
	return c.findBorrower(ctx, storage.FieldUsername, username)
}

// GetBorrowerByAuthUID resolves an authentication-provider UID to a borrower
// record.
func (c *Client) GetBorrowerByAuthUID(ctx context.Context, uid string) (*models.Borrower, error) {
	return c.findBorrower(ctx, storage.FieldAuthUID, uid)
}

func (c *Client) findBorrower(ctx context.Context, field, value string) (*models.Borrower, error) {
	if value == "" {
		return nil, apperr.NewValidation(field + " must not be empty")
	}

	iter := c.Firestore.Collection(BorrowersCollection).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, apperr.NewNotFound("borrower not found")
	}
	if err != nil {
		return nil, storeErr("searching borrowers", err)
	}

	var b models.Borrower
	if err := doc.DataTo(&b); err != nil {
		return nil, storeErr("decoding borrower", err)
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// ListBorrowers scans all borrower records.
func (c *Client) ListBorrowers(ctx context.Context) ([]*models.Borrower, error) {
	var borrowers []*models.Borrower

	iter := c.Firestore.Collection(BorrowersCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("listing borrowers", err)
		}

		var b models.Borrower
		if err := doc.DataTo(&b); err != nil {
			return nil, storeErr("decoding borrower", err)
		}
		b.ID = doc.Ref.ID
		borrowers = append(borrowers, &b)
	}

	return borrowers, nil
}

// UpdateBorrower applies a merge-patch to a borrower record.
func (c *Client) UpdateBorrower(ctx context.Context, id string, fields storage.Fields) error {
	if id == "" {
		return apperr.NewValidation("borrower id must not be empty")
	}

	if _, err := c.Firestore.Collection(BorrowersCollection).Doc(id).Update(ctx, fieldUpdates(fields)); err != nil {
		return storeErr("updating borrower", err)
	}
	return nil
}

// CountBorrowers returns the number of registered borrowers.
func (c *Client) CountBorrowers(ctx context.Context) (int, error) {
	docs, err := c.Firestore.Collection(BorrowersCollection).Documents(ctx).GetAll()
	if err != nil {
		return 0, storeErr("counting borrowers", err)
	}
	return len(docs), nil
}
