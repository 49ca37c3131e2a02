package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"library-loan-tracker/internal/apperr"
)

// Accounts is an in-memory stand-in for the external authentication service.
// Tokens it issues are opaque strings mapped straight back to the account
// UID. It exists for tests and for running the server without Firebase
// credentials; it performs no real credential hardening.
type Accounts struct {
	mu        sync.Mutex
	passwords map[string]string // email -> password
	uids      map[string]string // email -> uid
	tokens    map[string]string // token -> uid
}

// NewAccounts returns an empty account set.
func NewAccounts() *Accounts {
	return &Accounts{
		passwords: make(map[string]string),
		uids:      make(map[string]string),
		tokens:    make(map[string]string),
	}
}

// CreateAuthUser registers an email/password pair and returns a new UID.
func (a *Accounts) CreateAuthUser(ctx context.Context, email, password, displayName string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.uids[email]; exists {
		return "", apperr.NewAuth("could not create account: email already registered or password too weak")
	}

	uid := uuid.NewString()
	a.passwords[email] = password
	a.uids[email] = uid
	return uid, nil
}

// DeleteAuthUser removes an account by UID.
func (a *Accounts) DeleteAuthUser(ctx context.Context, uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for email, u := range a.uids {
		if u == uid {
			delete(a.uids, email)
			delete(a.passwords, email)
		}
	}
	for token, u := range a.tokens {
		if u == uid {
			delete(a.tokens, token)
		}
	}
	return nil
}

// SignInWithPassword checks the pair and issues a fresh opaque token.
func (a *Accounts) SignInWithPassword(ctx context.Context, email, password string) (string, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	uid, ok := a.uids[email]
	if !ok || a.passwords[email] != password {
		return "", "", apperr.NewAuth("invalid username or password")
	}

	token := uuid.NewString()
	a.tokens[token] = uid
	return uid, token, nil
}

// VerifyIDToken resolves a previously issued token to its UID.
func (a *Accounts) VerifyIDToken(ctx context.Context, token string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	uid, ok := a.tokens[token]
	if !ok {
		return "", apperr.NewUnauthenticated("invalid or expired session token")
	}
	return uid, nil
}
