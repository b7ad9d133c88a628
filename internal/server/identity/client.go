// Package identity wraps the remote authentication provider (a
// GoTrue-compatible HTTP API). Account creation and password login are
// plain pass-throughs; provider failures are translated into the shared
// sentinel errors so the HTTP surface can map them to status codes.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avolkov/askpdf/internal/common"
	"github.com/avolkov/askpdf/internal/server/models"
)

// Client talks to the identity provider.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient builds a provider client. When httpClient is nil,
// http.DefaultClient is used (transport-default timeouts).
func NewClient(baseURL, serviceKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: httpClient,
	}
}

type signUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        providerUser `json:"user"`
}

// providerError mirrors the error payloads the provider may answer with.
type providerError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e providerError) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Message != "":
		return e.Message
	}
	return ""
}

// SignUp creates a pre-confirmed account via the provider's admin API and
// returns the new user. Provider rejections surface as ErrAuthRejected;
// unreachable or failing providers as ErrAuthUnavailable.
func (c *Client) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	body, err := c.post(ctx, "/admin/users", signUpRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	})
	if err != nil {
		return nil, err
	}

	var user providerUser
	if err := json.Unmarshal(body, &user); err != nil || user.ID == "" {
		return nil, fmt.Errorf("%w: no user data returned from provider", common.ErrAuthRejected)
	}

	return &models.User{ID: user.ID, Email: user.Email}, nil
}

// Login exchanges credentials for a session. Invalid credentials surface
// as ErrAuthRejected.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	body, err := c.post(ctx, "/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: no session returned from provider", common.ErrAuthRejected)
	}

	return &models.Session{
		AccessToken: token.AccessToken,
		User:        models.User{ID: token.User.ID, Email: token.User.Email},
	}, nil
}

// post issues one provider call and returns the raw success body.
// Non-success answers are translated: 4xx means the provider refused the
// request, everything else means the provider is unavailable.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := providerMessage(body)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: %s", common.ErrAuthRejected, msg)
	}
	return nil, fmt.Errorf("%w: %s", common.ErrAuthUnavailable, msg)
}

func providerMessage(body []byte) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err == nil {
		if msg := pe.text(); msg != "" {
			return msg
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "provider error"
}
