// Package identity resolves who is calling and which role applies. Role
// information lives in the borrower and admin collections, not in the
// external credential store, so every resolution is a token check followed by
// a record lookup.
package identity

// Role is the caller's domain role.
type Role string

const (
	RoleBorrower Role = "borrower"
	RoleAdmin    Role = "admin"
)

// Identity describes an authenticated caller. It is passed explicitly
// through context into every operation that needs it; there is no ambient
// current-user global.
type Identity struct {
	Role       Role
	AuthUID    string
	BorrowerID string // set only for borrowers
	Name       string
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
