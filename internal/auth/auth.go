// Package auth is a REST client for an identity-toolkit style provider.
// It only consumes the provider's HTTP surface; token issuance and account
// storage live entirely on the provider side.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/remote"
)

// Categorized sign-in/sign-up failures. Anything the provider reports that
// does not fit one of these surfaces as a generic *APIError.
var (
	ErrAlreadyRegistered  = errors.New("email is already registered")
	ErrBadCredential      = errors.New("invalid email or password")
	ErrNotFound           = errors.New("no account found with this email")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrMalformedEmail     = errors.New("email address is malformed")
	ErrProviderCancelled  = errors.New("provider sign-in was cancelled")
	ErrMissingCredentials = errors.New("email and password are required")
)

// APIError is a provider failure that has no categorized sentinel.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity provider error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("identity provider error %s", e.Code)
}

// Client talks to the identity provider and maintains the per-user profile
// document in the remote store.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	remote  remote.Store
	now     func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a Client for the identity provider at baseURL. The remote
// store may be nil when no profile document should be maintained.
func New(baseURL, apiKey string, store remote.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		remote:  store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignUp creates an account, sets its display name, and writes the profile
// document to the remote store.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var tok tokenResponse
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &tok)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	err = c.post(ctx, "accounts:update", map[string]any{
		"idToken":     tok.IDToken,
		"displayName": displayName,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to set display name: %w", err)
	}

	user := &models.User{
		UID:         tok.LocalID,
		Email:       email,
		DisplayName: displayName,
	}

	if c.remote != nil {
		profile := models.Profile{
			UID:         user.UID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   c.now().UTC().Format(time.RFC3339),
		}
		if err := c.remote.UpsertProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile document: %w", err)
		}
	}

	return user, nil
}

// SignIn exchanges email and password for a session identity.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var tok tokenResponse
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &tok)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	user := &models.User{
		UID:         tok.LocalID,
		Email:       tok.Email,
		DisplayName: tok.DisplayName,
		PhotoURL:    tok.PhotoURL,
	}

	// A provider-managed account (social sign-in, or an account created
	// before profiles existed) may not have a profile document yet.
	if c.remote != nil {
		if err := c.ensureProfile(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// SignInWithProvider exchanges an OAuth access token from a federated
// provider (e.g. "google.com") for a session identity. The profile document
// is created on the first provider sign-in.
func (c *Client) SignInWithProvider(ctx context.Context, providerID, accessToken string) (*models.User, error) {
	if providerID == "" || accessToken == "" {
		return nil, ErrMissingCredentials
	}

	var tok tokenResponse
	err := c.post(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            fmt.Sprintf("access_token=%s&providerId=%s", accessToken, providerID),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &tok)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in with %s: %w", providerID, err)
	}

	user := &models.User{
		UID:         tok.LocalID,
		Email:       tok.Email,
		DisplayName: tok.DisplayName,
		PhotoURL:    tok.PhotoURL,
	}
	if c.remote != nil {
		if err := c.ensureProfile(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// RequestPasswordReset asks the provider to email a reset link. It reports
// ErrNotFound when no account matches.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrMalformedEmail
	}
	err := c.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return nil
}

func (c *Client) ensureProfile(ctx context.Context, user *models.User) error {
	_, found, err := c.remote.GetProfile(ctx, user.UID)
	if err != nil {
		return fmt.Errorf("failed to look up profile document: %w", err)
	}
	if found {
		return nil
	}
	profile := models.Profile{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		CreatedAt:   c.now().UTC().Format(time.RFC3339),
	}
	if err := c.remote.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to create profile document: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, action string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", c.baseURL, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach identity provider: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return categorize(data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// categorize maps the provider's error codes onto the package sentinels.
// Codes sometimes carry a trailing detail ("WEAK_PASSWORD : ..."), so only
// the leading token is matched.
func categorize(body []byte) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		return &APIError{Code: "UNKNOWN", Message: strings.TrimSpace(string(body))}
	}

	msg := parsed.Error.Message
	code := msg
	if i := strings.IndexAny(msg, " :"); i > 0 {
		code = msg[:i]
	}

	switch code {
	case "EMAIL_EXISTS":
		return ErrAlreadyRegistered
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD":
		return ErrBadCredential
	case "EMAIL_NOT_FOUND":
		return ErrNotFound
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return ErrMalformedEmail
	case "USER_CANCELLED":
		return ErrProviderCancelled
	default:
		return &APIError{Code: code, Message: msg}
	}
}
