package httpclient

import (
	"context"

	"github.com/pkg/errors"

	"github.com/houseoftea/inventory-console/users"
)

var IncompleteLoginResponseErr = errors.New("login response missing token or user")

// Credentials are the login form fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *users.User `json:"user"`
}

// RefreshResponse is the backend's answer to a token refresh.
type RefreshResponse struct {
	Access string `json:"access"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for tokens and an identity. A response missing
// any of the three is an error - a half-issued session is never usable.
func (c *Client) Login(ctx context.Context, credentials Credentials) (*LoginResponse, error) {
	var response LoginResponse
	if err := c.Post(ctx, "/login/", credentials, &response); err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	if response.Access == "" || response.Refresh == "" || response.User == nil {
		return nil, IncompleteLoginResponseErr
	}
	return &response, nil
}

// Logout tells the server to retire the refresh token. The caller treats
// failure as non-fatal; ending the local session never depends on the server
// being reachable.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if err := c.Post(ctx, "/logout/", logoutRequest{RefreshToken: refreshToken}, nil); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// Refresh mints a new access token from a refresh token. The endpoint exists
// on the backend but nothing wires it into the 401 path: expiry forces a
// fresh login instead of silent renewal.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var response RefreshResponse
	if err := c.Post(ctx, "/refresh/", refreshRequest{Refresh: refreshToken}, &response); err != nil {
		return nil, errors.Wrap(err, "[Client.Refresh]")
	}
	return &response, nil
}
