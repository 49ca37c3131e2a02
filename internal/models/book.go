package models

import "time"

// Book is a catalog entry. Only title and author are required; the optional
// fields are stored as explicit nulls so documents round-trip with every
// field present.
type Book struct {
	ID          string     `json:"id" firestore:"id"`
	Title       string     `json:"title" firestore:"title"`
	Author      string     `json:"author" firestore:"author"`
	Publisher   *string    `json:"publisher" firestore:"publisher"`
	PublishDate *time.Time `json:"publishDate" firestore:"publishDate"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt"`
}
