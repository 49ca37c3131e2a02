package firebase

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// CreateAdmin persists a staff record.
func (c *Client) CreateAdmin(ctx context.Context, a *models.Admin) (string, error) {
	if a == nil {
		return "", apperr.NewValidation("admin must not be nil")
	}
	if a.Name == "" || a.Username == "" {
		return "", apperr.NewValidation("admin name and username are required")
	}

	var docRef *firestore.DocumentRef
	if a.ID == "" {
		docRef = c.Firestore.Collection(AdminsCollection).NewDoc()
		a.ID = docRef.ID
	} else {
		docRef = c.Firestore.Collection(AdminsCollection).Doc(a.ID)
	}

	if _, err := docRef.Set(ctx, a); err != nil {
		return "", storeErr("creating admin", err)
	}
	return a.ID, nil
}

// GetAdminByUsername resolves a staff login name to its record.
func (c *Client) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return c.findAdmin(ctx, storage.FieldUsername, username)
}

// GetAdminByAuthUID resolves an authentication-provider UID to a staff
// record.
func (c *Client) GetAdminByAuthUID(ctx context.Context, uid string) (*models.Admin, error) {
	return c.findAdmin(ctx, storage.FieldAuthUID, uid)
}

func (c *Client) findAdmin(ctx context.Context, field, value string) (*models.Admin, error) {
	if value == "" {
		return nil, apperr.NewValidation(field + " must not be empty")
	}

	iter := c.Firestore.Collection(AdminsCollection).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, apperr.NewNotFound("admin not found")
	}
	if err != nil {
		return nil, storeErr("searching admins", err)
	}

	var a models.Admin
	if err := doc.DataTo(&a); err != nil {
		return nil, storeErr("decoding admin", err)
	}
	a.ID = doc.Ref.ID
	return &a, nil
}
