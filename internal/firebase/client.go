// Package firebase implements the storage contracts on Firestore and wraps
// the Firebase Auth admin client for token verification and account
// management.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"library-loan-tracker/internal/apperr"
)

// Collection names in Firestore. The original data set used the Indonesian
// collection names, kept here for round-trip fidelity with existing data.
const (
	BooksCollection     = "buku"
	BorrowersCollection = "peminjam"
	AdminsCollection    = "admin"
	LoansCollection     = "peminjaman"
	DetailsCollection   = "detail_peminjaman"
)

// Client bundles the Firebase app, its Auth client and the Firestore client.
// It implements storage.Store.
type Client struct {
	App       *fb.App
	Auth      *auth.Client
	Firestore *firestore.Client

	webAPIKey  string
	httpClient *http.Client
}

// New initializes the Firebase clients. Credentials come from
// FIREBASE_CREDENTIALS_PATH (local file) or FIREBASE_CREDENTIALS_JSON
// (inline, for deployed environments).
func New(ctx context.Context) (*Client, error) {
	var opts []option.ClientOption

	if path := os.Getenv("FIREBASE_CREDENTIALS_PATH"); path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file does not exist: %s", path)
		}
		opts = append(opts, option.WithCredentialsFile(path))
	} else if raw := os.Getenv("FIREBASE_CREDENTIALS_JSON"); raw != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(raw)))
	} else {
		return nil, errors.New("neither FIREBASE_CREDENTIALS_PATH nor FIREBASE_CREDENTIALS_JSON is set")
	}

	app, err := fb.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing Firebase Auth: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing Firestore: %w", err)
	}

	return &Client{
		App:        app,
		Auth:       authClient,
		Firestore:  fsClient,
		webAPIKey:  os.Getenv("FIREBASE_WEB_API_KEY"),
		httpClient: http.DefaultClient,
	}, nil
}

// Close releases the Firestore connection.
func (c *Client) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}

// VerifyIDToken validates a Firebase ID token and returns the account UID.
func (c *Client) VerifyIDToken(ctx context.Context, token string) (string, error) {
	decoded, err := c.Auth.VerifyIDToken(ctx, token)
	if err != nil {
		return "", apperr.NewUnauthenticated("invalid or expired session token")
	}
	return decoded.UID, nil
}

// signInResponse is the subset of the Identity Toolkit response we use.
type signInResponse struct {
	LocalID string `json:"localId"`
	IDToken string `json:"idToken"`
	Email   string `json:"email"`
}

// SignInWithPassword verifies an email/password pair against the Identity
// Toolkit REST API and returns the account UID plus a fresh ID token. The
// admin SDK has no password check, so this endpoint is the only way to do a
// server-side login.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (uid, idToken string, err error) {
	if c.webAPIKey == "" {
		return "", "", apperr.NewAuth("FIREBASE_WEB_API_KEY is not configured")
	}

	url := fmt.Sprintf("https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword?key=%s", c.webAPIKey)

	payload, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", "", fmt.Errorf("building sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("building sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", apperr.NewUnavailable("authentication service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", apperr.NewUnavailable("reading authentication response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			switch errResp.Error.Message {
			case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
				return "", "", apperr.NewAuth("invalid username or password")
			case "USER_DISABLED":
				return "", "", apperr.NewAuth("account has been disabled")
			}
			if errResp.Error.Message != "" {
				return "", "", apperr.NewAuth("authentication failed: " + errResp.Error.Message)
			}
		}
		return "", "", apperr.NewAuth(fmt.Sprintf("authentication failed (status %d)", resp.StatusCode))
	}

	var ok signInResponse
	if err := json.Unmarshal(body, &ok); err != nil {
		return "", "", fmt.Errorf("parsing authentication response: %w", err)
	}
	return ok.LocalID, ok.IDToken, nil
}

// CreateAuthUser registers an account in Firebase Auth and returns its UID.
func (c *Client) CreateAuthUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	u, err := c.Auth.CreateUser(ctx, params)
	if err != nil {
		return "", apperr.NewAuth("could not create account: email already registered or password too weak")
	}
	return u.UID, nil
}

// DeleteAuthUser removes an account from Firebase Auth. Used to roll back
// registration when the borrower document write fails.
func (c *Client) DeleteAuthUser(ctx context.Context, uid string) error {
	return c.Auth.DeleteUser(ctx, uid)
}

// storeErr translates a Firestore error into the domain taxonomy.
func storeErr(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return apperr.NewNotFound(op + ": record not found")
	case codes.Unavailable, codes.DeadlineExceeded:
		return apperr.NewUnavailable(op+": document store unreachable", err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
