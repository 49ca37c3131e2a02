package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
)

// TokenVerifier validates a session token and returns the account UID behind
// it. Implemented by the Firebase client in production.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (string, error)
}

// Accounts is the slice of the external authentication service the gate
// needs: password sign-in plus account create/delete for registration.
type Accounts interface {
	SignInWithPassword(ctx context.Context, email, password string) (uid, idToken string, err error)
	CreateAuthUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteAuthUser(ctx context.Context, uid string) error
}

// Directory is the record lookup side of role resolution.
type Directory interface {
	storage.Borrowers
	storage.Admins
}

// Gate decides which of {borrower, admin} a caller is and handles the
// username-based login and registration flows.
type Gate struct {
	verifier TokenVerifier
	accounts Accounts
	dir      Directory
	log      *zap.Logger
}

// NewGate wires a gate from its collaborators.
func NewGate(verifier TokenVerifier, accounts Accounts, dir Directory, log *zap.Logger) *Gate {
	return &Gate{verifier: verifier, accounts: accounts, dir: dir, log: log}
}

// Resolve turns a session token into an Identity. The token proves the
// account; the admin and borrower collections supply the role. An account
// with no matching record means registration was skipped or data is
// inconsistent.
func (g *Gate) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.NewUnauthenticated("no active session")
	}

	uid, err := g.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if admin, err := g.dir.GetAdminByAuthUID(ctx, uid); err == nil {
		return Identity{Role: RoleAdmin, AuthUID: uid, Name: admin.Name}, nil
	} else if !apperr.IsNotFound(err) {
		return Identity{}, err
	}

	borrower, err := g.dir.GetBorrowerByAuthUID(ctx, uid)
	if apperr.IsNotFound(err) {
		return Identity{}, apperr.NewUnauthenticated("account has no registered borrower record")
	}
	if err != nil {
		return Identity{}, err
	}
	if !borrower.Active {
		return Identity{}, apperr.NewPermissionDenied("borrower account is deactivated")
	}

	return Identity{
		Role:       RoleBorrower,
		AuthUID:    uid,
		BorrowerID: borrower.ID,
		Name:       borrower.Name,
	}, nil
}

// Login authenticates a human-chosen username and password. The username is
// mapped to the auth email stored on the matching record; no synthetic email
// is derived from the username at login time.
func (g *Gate) Login(ctx context.Context, username, password string) (Identity, string, error) {
	if username == "" || password == "" {
		return Identity{}, "", apperr.NewValidation("username and password are required")
	}

	// Admins and borrowers live in separate collections; try staff first.
	if admin, err := g.dir.GetAdminByUsername(ctx, username); err == nil {
		uid, idToken, err := g.accounts.SignInWithPassword(ctx, admin.AuthEmail, password)
		if err != nil {
			return Identity{}, "", err
		}
		g.log.Info("admin logged in", zap.String("username", username))
		return Identity{Role: RoleAdmin, AuthUID: uid, Name: admin.Name}, idToken, nil
	} else if !apperr.IsNotFound(err) {
		return Identity{}, "", err
	}

	borrower, err := g.dir.GetBorrowerByUsername(ctx, username)
	if apperr.IsNotFound(err) {
		return Identity{}, "", apperr.NewValidation("username is not registered")
	}
	if err != nil {
		return Identity{}, "", err
	}
	if !borrower.Active {
		return Identity{}, "", apperr.NewPermissionDenied("borrower account is deactivated")
	}

	uid, idToken, err := g.accounts.SignInWithPassword(ctx, borrower.AuthEmail, password)
	if err != nil {
		return Identity{}, "", err
	}

	g.log.Info("borrower logged in", zap.String("username", username))
	return Identity{
		Role:       RoleBorrower,
		AuthUID:    uid,
		BorrowerID: borrower.ID,
		Name:       borrower.Name,
	}, idToken, nil
}

// Registration holds the input of a borrower sign-up.
type Registration struct {
	Name     string
	Username string
	Email    string
	Password string
	PhotoURL *string
}

// RegisterBorrower creates the auth account and the borrower record. The
// auth account is rolled back when the record write fails, so a credential
// never exists without its borrower document.
func (g *Gate) RegisterBorrower(ctx context.Context, reg Registration) (*models.Borrower, error) {
	if reg.Name == "" || reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return nil, apperr.NewValidation("name, username, email and password are required")
	}
	if len(reg.Password) < 6 {
		return nil, apperr.NewValidation("password must be at least 6 characters")
	}

	if _, err := g.dir.GetBorrowerByUsername(ctx, reg.Username); err == nil {
		return nil, apperr.NewValidation("username is already taken")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	uid, err := g.accounts.CreateAuthUser(ctx, reg.Email, reg.Password, reg.Name)
	if err != nil {
		return nil, err
	}

	borrower := &models.Borrower{
		ID:           uuid.NewString(),
		Name:         reg.Name,
		Username:     reg.Username,
		RegisteredAt: time.Now(),
		PhotoURL:     reg.PhotoURL,
		Active:       true,
		AuthUID:      uid,
		AuthEmail:    reg.Email,
	}

	if _, err := g.dir.CreateBorrower(ctx, borrower); err != nil {
		if delErr := g.accounts.DeleteAuthUser(ctx, uid); delErr != nil {
			g.log.Error("rolling back auth account failed",
				zap.String("uid", uid), zap.Error(delErr))
		}
		return nil, fmt.Errorf("creating borrower record: %w", err)
	}

	g.log.Info("borrower registered",
		zap.String("username", reg.Username), zap.String("borrowerId", borrower.ID))
	return borrower, nil
}
