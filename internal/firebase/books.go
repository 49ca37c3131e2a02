package firebase

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// CreateBook persists a catalog entry. A missing ID is assigned from a fresh
// document ref.
func (c *Client) CreateBook(ctx context.Context, book *models.Book) (string, error) {
	if book == nil {
		return "", apperr.NewValidation("book must not be nil")
	}

	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	var docRef *firestore.DocumentRef
	if book.ID == "" {
		docRef = c.Firestore.Collection(BooksCollection).NewDoc()
		book.ID = docRef.ID
	} else {
		docRef = c.Firestore.Collection(BooksCollection).Doc(book.ID)
	}

	if _, err := docRef.Set(ctx, book); err != nil {
		return "", storeErr("creating book", err)
	}
	return book.ID, nil
}

// GetBook fetches a single catalog entry by id.
func (c *Client) GetBook(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, apperr.NewValidation("book id must not be empty")
	}

	doc, err := c.Firestore.Collection(BooksCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeErr("fetching book", err)
	}

	var book models.Book
	if err := doc.DataTo(&book); err != nil {
		return nil, storeErr("decoding book", err)
	}
	book.ID = doc.Ref.ID
	return &book, nil
}

// ListBooks scans the whole catalog. Acceptable at library scale; callers
// must not assume any ordering.
func (c *Client) ListBooks(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book

	iter := c.Firestore.Collection(BooksCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeErr("listing books", err)
		}

		var book models.Book
		if err := doc.DataTo(&book); err != nil {
			return nil, storeErr("decoding book", err)
		}
		book.ID = doc.Ref.ID
		books = append(books, &book)
	}

	return books, nil
}

// UpdateBook applies a merge-patch to a catalog entry.
func (c *Client) UpdateBook(ctx context.Context, id string, fields storage.Fields) error {
	if id == "" {
		return apperr.NewValidation("book id must not be empty")
	}

	updates := fieldUpdates(fields)
	updates = append(updates, firestore.Update{Path: storage.FieldUpdatedAt, Value: time.Now()})

	if _, err := c.Firestore.Collection(BooksCollection).Doc(id).Update(ctx, updates); err != nil {
		return storeErr("updating book", err)
	}
	return nil
}

// DeleteBook removes a catalog entry. Deleting an absent id is not an error.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	if id == "" {
		return apperr.NewValidation("book id must not be empty")
	}

	if _, err := c.Firestore.Collection(BooksCollection).Doc(id).Delete(ctx); err != nil {
		return storeErr("deleting book", err)
	}
	return nil
}

// CountBooks returns the catalog size.
func (c *Client) CountBooks(ctx context.Context) (int, error) {
	docs, err := c.Firestore.Collection(BooksCollection).Documents(ctx).GetAll()
	if err != nil {
		return 0, storeErr("counting books", err)
	}
	return len(docs), nil
}

// fieldUpdates converts a merge-patch into Firestore update entries.
func fieldUpdates(fields storage.Fields) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	return updates
}
