// Package auth orchestrates the login and logout flows against the session
// store and the API client.
package auth

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/houseoftea/inventory-console/httpclient"
	"github.com/houseoftea/inventory-console/routes"
	"github.com/houseoftea/inventory-console/session"
	"github.com/houseoftea/inventory-console/users"
)

// API is the slice of the HTTP client the controller needs.
type API interface {
	Login(ctx context.Context, credentials httpclient.Credentials) (*httpclient.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Controller runs the two session flows. At most one login attempt is
// meaningful at a time; each attempt is stamped with a generation so a stale
// network resolution can never clobber a newer session state.
type Controller struct {
	store      *session.Store
	api        API
	logger     zerolog.Logger
	generation atomic.Uint64
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController initializes a Controller with its required dependencies.
func NewController(store *session.Store, api API, options ...ControllerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[NewController] session store is required")
	}
	if api == nil {
		return nil, errors.New("[NewController] api client is required")
	}

	controller := &Controller{
		store:  store,
		api:    api,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(controller)
	}
	return controller, nil
}

// LoginResult reports a successful login and where to navigate next.
// Redirect is empty for roles with no home area; the caller stays put.
type LoginResult struct {
	User     *users.User
	Redirect string
}

// Login runs the login flow: validate, mark the store pending, exchange
// credentials, then complete or fail the attempt. Cancelling ctx aborts the
// network call. A resolution that arrives after a newer attempt or a logout
// mutates nothing and returns StaleLoginErr.
func (c *Controller) Login(ctx context.Context, credentials httpclient.Credentials) (*LoginResult, error) {
	if strings.TrimSpace(credentials.Username) == "" || credentials.Password == "" {
		return nil, MissingCredentialsErr
	}

	generation := c.generation.Add(1)
	c.store.BeginLogin()

	response, err := c.api.Login(ctx, credentials)

	if c.generation.Load() != generation {
		c.logger.Debug().Msg("discarding stale login resolution")
		return nil, StaleLoginErr
	}

	if err != nil {
		message := failureMessage(err)
		c.store.FailLogin(message)
		c.logger.Warn().Err(err).Str("username", credentials.Username).Msg("login failed")
		return nil, errors.Wrap(LoginFailedErr, message)
	}

	c.store.CompleteLogin(response.User, response.Access, response.Refresh)
	c.logger.Info().
		Str("username", response.User.Username).
		Str("role", response.User.Role.String()).
		Msg("login succeeded")

	return &LoginResult{
		User:     response.User,
		Redirect: routes.HomeFor(response.User.Role),
	}, nil
}

// Logout ends the session unconditionally. The server call is best-effort:
// an unreachable server is logged and the local session is cleared anyway,
// because the user must always be able to end their local session. Returns
// the anonymous landing route.
func (c *Controller) Logout(ctx context.Context) string {
	// Supersede any in-flight login so its resolution cannot repopulate
	// the session after the clear.
	c.generation.Add(1)

	if refreshToken := c.store.Snapshot().RefreshToken; refreshToken != "" {
		if err := c.api.Logout(ctx, refreshToken); err != nil {
			c.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}

	c.store.Clear()
	c.logger.Info().Msg("session cleared")
	return routes.RouteLanding
}

// failureMessage picks the user-facing error text: the server's structured
// detail when present, else a fixed fallback.
func failureMessage(err error) string {
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return LoginFallbackMessage
}
