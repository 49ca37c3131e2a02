package models

import "time"

// Borrower is a registered library patron able to request loans.
//
// AuthUID and AuthEmail tie the record to its account in the external
// authentication service: AuthUID is the provider's user id, AuthEmail the
// login identifier registered there. Username is the human-chosen login name;
// the username-to-AuthEmail mapping on this record is the single place that
// translation happens.
type Borrower struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	Username     string    `json:"username" firestore:"username"`
	RegisteredAt time.Time `json:"registeredAt" firestore:"registeredAt"`
	PhotoURL     *string   `json:"photoUrl" firestore:"photoUrl"`
	Active       bool      `json:"active" firestore:"active"`
	AuthUID      string    `json:"-" firestore:"authUid"`
	AuthEmail    string    `json:"-" firestore:"authEmail"`
}
