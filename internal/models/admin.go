package models

// Admin is a staff account with full access to catalog and loan management.
// Admins live in their own collection; the credential store itself holds no
// role information.
type Admin struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	Username  string `json:"username" firestore:"username"`
	AuthUID   string `json:"-" firestore:"authUid"`
	AuthEmail string `json:"-" firestore:"authEmail"`
}
