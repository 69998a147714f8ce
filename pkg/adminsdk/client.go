package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the backoffice credential service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new backoffice service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new user account and returns the user payload together
// with a signed session token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.postJSON(ctx, "/user/register", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates an existing user and returns a fresh session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.postJSON(ctx, "/user/login", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a password reset email for the given address.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "/user/forgot-password", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword redeems a reset token and sets a new password.
// The token is single-use: a second call with the same token fails.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "/user/reset-password", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePassword changes the password of a logged-in user. The sessionToken
// is the JWT returned by Register or Login.
func (c *Client) UpdatePassword(ctx context.Context, sessionToken string, req UpdatePasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "/user/update-password", req, sessionToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// postJSON performs a JSON POST request and decodes the response into out.
// When token is non-empty it is sent as a Bearer Authorization header.
func (c *Client) postJSON(ctx context.Context, path string, payload any, token string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := parseErrorResponse(resp, respBody); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
