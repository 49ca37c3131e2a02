package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-loan-tracker/internal/apperr"
	"library-loan-tracker/internal/models"
	"library-loan-tracker/internal/storage"
	"library-loan-tracker/internal/storage/memory"
)

func newGate(t *testing.T) (*Gate, *memory.Store, *memory.Accounts) {
	t.Helper()
	store := memory.New()
	accounts := memory.NewAccounts()
	return NewGate(accounts, accounts, store, zap.NewNop()), store, accounts
}

func registerBorrower(t *testing.T, g *Gate) *models.Borrower {
	t.Helper()
	b, err := g.RegisterBorrower(context.Background(), Registration{
		Name:     "Siti Rahma",
		Username: "siti",
		Email:    "siti@example.com",
		Password: "rahasia1",
	})
	require.NoError(t, err)
	return b
}

func TestRegisterBorrower(t *testing.T) {
	g, store, _ := newGate(t)
	ctx := context.Background()

	b := registerBorrower(t, g)
	assert.NotEmpty(t, b.ID)
	assert.NotEmpty(t, b.AuthUID)
	assert.True(t, b.Active)
	assert.Equal(t, "siti@example.com", b.AuthEmail)

	stored, err := store.GetBorrowerByUsername(ctx, "siti")
	require.NoError(t, err)
	assert.Equal(t, b.ID, stored.ID)
	assert.Equal(t, b.AuthUID, stored.AuthUID)
}

func TestRegisterValidation(t *testing.T) {
	g, _, _ := newGate(t)
	ctx := context.Background()

	cases := []struct {
		name string
		reg  Registration
	}{
		{"missing name", Registration{Username: "u", Email: "e@x.com", Password: "secret1"}},
		{"missing username", Registration{Name: "N", Email: "e@x.com", Password: "secret1"}},
		{"missing email", Registration{Name: "N", Username: "u", Password: "secret1"}},
		{"missing password", Registration{Name: "N", Username: "u", Email: "e@x.com"}},
		{"short password", Registration{Name: "N", Username: "u", Email: "e@x.com", Password: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.RegisterBorrower(ctx, tc.reg)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	g, _, _ := newGate(t)
	registerBorrower(t, g)

	_, err := g.RegisterBorrower(context.Background(), Registration{
		Name:     "Another",
		Username: "siti",
		Email:    "other@example.com",
		Password: "rahasia2",
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestRegisterRollsBackAuthOnRecordFailure(t *testing.T) {
	store := memory.New()
	accounts := memory.NewAccounts()
	g := NewGate(accounts, accounts, failingDirectory{store}, zap.NewNop())
	ctx := context.Background()

	_, err := g.RegisterBorrower(ctx, Registration{
		Name:     "Siti Rahma",
		Username: "siti",
		Email:    "siti@example.com",
		Password: "rahasia1",
	})
	require.Error(t, err)

	// the account was deleted again, so a retry must be able to re-register
	// the same email
	_, err = accounts.CreateAuthUser(ctx, "siti@example.com", "rahasia1", "Siti Rahma")
	assert.NoError(t, err)
}

// failingDirectory rejects every borrower write.
type failingDirectory struct {
	*memory.Store
}

func (failingDirectory) CreateBorrower(ctx context.Context, b *models.Borrower) (string, error) {
	return "", apperr.NewUnavailable("document database unreachable", nil)
}

var _ Directory = failingDirectory{}

func TestLoginBorrower(t *testing.T) {
	g, _, _ := newGate(t)
	b := registerBorrower(t, g)

	id, token, err := g.Login(context.Background(), "siti", "rahasia1")
	require.NoError(t, err)
	assert.Equal(t, RoleBorrower, id.Role)
	assert.Equal(t, b.ID, id.BorrowerID)
	assert.Equal(t, "Siti Rahma", id.Name)
	assert.NotEmpty(t, token)
}

func TestLoginAdmin(t *testing.T) {
	g, store, accounts := newGate(t)
	ctx := context.Background()

	uid, err := accounts.CreateAuthUser(ctx, "budi@example.com", "adminpass", "Pak Budi")
	require.NoError(t, err)
	_, err = store.CreateAdmin(ctx, &models.Admin{
		Name:      "Pak Budi",
		Username:  "budi",
		AuthUID:   uid,
		AuthEmail: "budi@example.com",
	})
	require.NoError(t, err)

	id, token, err := g.Login(ctx, "budi", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, id.Role)
	assert.True(t, id.IsAdmin())
	assert.Empty(t, id.BorrowerID)
	assert.NotEmpty(t, token)
}

func TestLoginUnknownUsername(t *testing.T) {
	g, _, _ := newGate(t)

	_, _, err := g.Login(context.Background(), "nobody", "whatever")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "username is not registered")
}

func TestLoginWrongPassword(t *testing.T) {
	g, _, _ := newGate(t)
	registerBorrower(t, g)

	_, _, err := g.Login(context.Background(), "siti", "wrong")
	assert.Equal(t, apperr.CodeAuth, apperr.CodeOf(err))
}

func TestLoginDeactivatedBorrower(t *testing.T) {
	g, store, _ := newGate(t)
	b := registerBorrower(t, g)

	require.NoError(t, store.UpdateBorrower(context.Background(), b.ID,
		storage.Fields{storage.FieldActive: false}))

	_, _, err := g.Login(context.Background(), "siti", "rahasia1")
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))
}

func TestResolveBorrower(t *testing.T) {
	g, _, _ := newGate(t)
	b := registerBorrower(t, g)

	_, token, err := g.Login(context.Background(), "siti", "rahasia1")
	require.NoError(t, err)

	id, err := g.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, RoleBorrower, id.Role)
	assert.Equal(t, b.ID, id.BorrowerID)
}

func TestResolveAdminWinsOverBorrower(t *testing.T) {
	g, store, accounts := newGate(t)
	ctx := context.Background()

	uid, err := accounts.CreateAuthUser(ctx, "budi@example.com", "adminpass", "Pak Budi")
	require.NoError(t, err)
	_, err = store.CreateAdmin(ctx, &models.Admin{
		Name: "Pak Budi", Username: "budi", AuthUID: uid, AuthEmail: "budi@example.com",
	})
	require.NoError(t, err)

	_, token, err := g.Login(ctx, "budi", "adminpass")
	require.NoError(t, err)

	id, err := g.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, id.Role)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	g, _, _ := newGate(t)

	_, err := g.Resolve(context.Background(), "")
	assert.Equal(t, apperr.CodeUnauthenticated, apperr.CodeOf(err))

	_, err = g.Resolve(context.Background(), "bogus-token")
	assert.Equal(t, apperr.CodeUnauthenticated, apperr.CodeOf(err))
}

func TestResolveAccountWithoutRecord(t *testing.T) {
	g, _, accounts := newGate(t)
	ctx := context.Background()

	_, err := accounts.CreateAuthUser(ctx, "ghost@example.com", "secret1", "Ghost")
	require.NoError(t, err)
	_, token, err := accounts.SignInWithPassword(ctx, "ghost@example.com", "secret1")
	require.NoError(t, err)

	_, err = g.Resolve(ctx, token)
	assert.Equal(t, apperr.CodeUnauthenticated, apperr.CodeOf(err))
}

func TestResolveDeactivatedBorrower(t *testing.T) {
	g, store, _ := newGate(t)
	b := registerBorrower(t, g)

	_, token, err := g.Login(context.Background(), "siti", "rahasia1")
	require.NoError(t, err)

	require.NoError(t, store.UpdateBorrower(context.Background(), b.ID,
		storage.Fields{storage.FieldActive: false}))

	_, err = g.Resolve(context.Background(), token)
	assert.Equal(t, apperr.CodePermissionDenied, apperr.CodeOf(err))
}
