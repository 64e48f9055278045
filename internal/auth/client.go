// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bychat/bychat/internal/kvstore"
)

// sessionKey is the store key the signed-in session lives under.
const sessionKey = "session"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the auth client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeUnavailable means the provider could not be reached.
	ErrTypeUnavailable
	// ErrTypeGateway means the provider answered but the exchange failed.
	ErrTypeGateway
	// ErrTypeCredentials means the provider rejected the email/password.
	ErrTypeCredentials
	// ErrTypeNotSignedIn means no session is stored locally.
	ErrTypeNotSignedIn
)

// Sentinel errors for easy checking.
var (
	ErrUnavailable = &ClientError{Type: ErrTypeUnavailable, Message: "auth service is not reachable"}
	ErrNotSignedIn = &ClientError{Type: ErrTypeNotSignedIn, Message: "not signed in"}
)

// IsUnavailable checks if an error indicates the provider is unreachable.
func IsUnavailable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnavailable
	}
	return false
}

// IsCredentials checks if an error is a rejected email/password.
func IsCredentials(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCredentials
	}
	return false
}

// IsNotSignedIn checks if an error means no local session exists.
func IsNotSignedIn(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotSignedIn
	}
	return false
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// User is the identity the provider reports for a signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an issued bearer token plus its user. Persisted locally
// under the "session" key.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the session's token is past its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the provider's grant response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// apiError covers the error body shapes the provider uses.
type apiError struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) detail() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the auth client.
type ClientConfig struct {
	// BaseURL is the identity provider's project URL.
	BaseURL string

	// AnonKey is the provider's public API key, sent with every request.
	AnonKey string

	// Timeout for requests (default: 15s)
	Timeout time.Duration
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the identity provider and keeps
// the issued session persisted in the key-value store.
type Client struct {
	config     ClientConfig
	store      *kvstore.Store
	httpClient *http.Client
}

// NewClient creates an auth client.
func NewClient(config ClientConfig, store *kvstore.Store) *Client {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &Client{
		config:     config,
		store:      store,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Configured reports whether a provider URL and key are set. Without
// them the application runs local-only and auth operations fail fast.
func (c *Client) Configured() bool {
	return c.config.BaseURL != "" && c.config.AnonKey != ""
}

// =============================================================================
// SIGN IN / SIGN UP / SIGN OUT
// =============================================================================

// SignIn exchanges email and password for a session and persists it.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if !c.Configured() {
		return nil, &ClientError{Type: ErrTypeGateway, Message: "auth is not configured"}
	}

	tok, err := c.grant(ctx, "/auth/v1/token?grant_type=password", email, password)
	if err != nil {
		return nil, err
	}

	session := sessionFromToken(tok)
	if err := c.store.Set(sessionKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SignUp registers a new account. Providers that require email
// confirmation return no token; the session is persisted only when
// one is issued.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if !c.Configured() {
		return nil, &ClientError{Type: ErrTypeGateway, Message: "auth is not configured"}
	}

	tok, err := c.grant(ctx, "/auth/v1/signup", email, password)
	if err != nil {
		return nil, err
	}

	if tok.AccessToken == "" {
		return &Session{User: tok.User}, nil
	}

	session := sessionFromToken(tok)
	if err := c.store.Set(sessionKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut revokes the current token and always clears the local
// session, even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	session, err := c.CurrentSession()
	if err != nil {
		return err
	}

	var revokeErr error
	if c.Configured() {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/auth/v1/logout", nil)
		if err == nil {
			c.setHeaders(req)
			req.Header.Set("Authorization", "Bearer "+session.AccessToken)
			resp, err := c.httpClient.Do(req)
			if err != nil {
				revokeErr = ErrUnavailable
			} else {
				resp.Body.Close()
			}
		}
	}

	if err := c.store.Delete(sessionKey); err != nil {
		return err
	}
	return revokeErr
}

// CurrentSession returns the locally persisted session.
func (c *Client) CurrentSession() (*Session, error) {
	var session Session
	ok, err := c.store.GetJSON(sessionKey, &session)
	if err != nil {
		return nil, err
	}
	if !ok || session.AccessToken == "" {
		return nil, ErrNotSignedIn
	}
	if session.Expired() {
		return nil, &ClientError{Type: ErrTypeNotSignedIn, Message: "session has expired"}
	}
	return &session, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// grant posts credentials to path and decodes the token response.
func (c *Client) grant(ctx context.Context, path, email, password string) (*tokenResponse, error) {
	body, err := json.Marshal(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeGateway, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnavailable, Message: "failed to create request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusUnprocessableEntity {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.detail() != "" {
			return nil, &ClientError{Type: ErrTypeCredentials, Message: apiErr.detail()}
		}
		return nil, &ClientError{Type: ErrTypeCredentials, Message: "invalid credentials"}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.detail() != "" {
			return nil, &ClientError{Type: ErrTypeGateway, Message: apiErr.detail()}
		}
		return nil, &ClientError{Type: ErrTypeGateway, Message: "auth request failed: " + resp.Status}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, &ClientError{Type: ErrTypeGateway, Message: "failed to decode response", Cause: err}
	}
	return &tok, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.AnonKey)
}

func sessionFromToken(tok *tokenResponse) *Session {
	session := &Session{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		User:         tok.User,
	}
	if tok.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return session
}
