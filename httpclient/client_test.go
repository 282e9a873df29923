package httpclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/houseoftea/inventory-console/httpclient"
	"github.com/houseoftea/inventory-console/users"
)

type fakeTokens struct {
	token string
}

func (f *fakeTokens) AccessToken() string { return f.token }

type fakeInvalidator struct {
	flagged bool
}

func (f *fakeInvalidator) MarkExpired(flag bool) { f.flagged = flag }

type fixture struct {
	client      *httpclient.Client
	tokens      *fakeTokens
	invalidator *fakeInvalidator
}

func setupClient(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := &fakeTokens{}
	invalidator := &fakeInvalidator{}
	client, err := httpclient.NewClient(server.URL, tokens, invalidator)
	require.NoError(t, err)

	return &fixture{client: client, tokens: tokens, invalidator: invalidator}
}

func TestNewClientValidation(t *testing.T) {
	_, err := httpclient.NewClient("", &fakeTokens{}, &fakeInvalidator{})
	require.Error(t, err)

	_, err = httpclient.NewClient("http://localhost", nil, &fakeInvalidator{})
	require.Error(t, err)

	_, err = httpclient.NewClient("http://localhost", &fakeTokens{}, nil)
	require.Error(t, err)
}

func TestBearerAttachment(t *testing.T) {
	var gotAuth, gotRequestID string
	f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	})

	t.Run("no token sends unauthenticated", func(t *testing.T) {
		require.NoError(t, f.client.Get(context.Background(), "/products/", nil))
		require.Empty(t, gotAuth)
		require.NotEmpty(t, gotRequestID)
	})

	t.Run("token is attached as a bearer credential", func(t *testing.T) {
		f.tokens.token = "abc"
		require.NoError(t, f.client.Get(context.Background(), "/products/", nil))
		require.Equal(t, "Bearer abc", gotAuth)
	})
}

func TestTokenInvalidationDetection(t *testing.T) {
	t.Run("canonical 401 flips the expiry flag", func(t *testing.T) {
		f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"messages":[{"message":"Token is invalid or expired"}]}`))
		})
		f.tokens.token = "abc"

		err := f.client.Get(context.Background(), "/products/", nil)
		require.Error(t, err)
		require.True(t, f.invalidator.flagged)

		var apiErr *httpclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.True(t, apiErr.IsInvalidToken())
	})

	t.Run("a 401 with any other shape is an ordinary failure", func(t *testing.T) {
		f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"messages":[{"message":"Authentication credentials were not provided"}]}`))
		})

		err := f.client.Get(context.Background(), "/products/", nil)
		require.Error(t, err)
		require.False(t, f.invalidator.flagged)
	})

	t.Run("other error statuses pass through untouched", func(t *testing.T) {
		for _, status := range []int{403, 404, 422, 500} {
			f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"detail":"nope"}`))
			})

			err := f.client.Get(context.Background(), "/products/", nil)
			var apiErr *httpclient.APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, status, apiErr.StatusCode)
			require.Equal(t, "nope", apiErr.Detail)
			require.False(t, f.invalidator.flagged)
		}
	})

	t.Run("a non-JSON error body still yields a status error", func(t *testing.T) {
		f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		})

		err := f.client.Get(context.Background(), "/products/", nil)
		var apiErr *httpclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.False(t, f.invalidator.flagged)
	})
}

func TestLogin(t *testing.T) {
	t.Run("parses the login envelope", func(t *testing.T) {
		f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/login/", r.URL.Path)

			var credentials httpclient.Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&credentials))
			require.Equal(t, "admin1508", credentials.Username)

			w.Write([]byte(`{"access":"abc","refresh":"def","user":{"id":1,"username":"admin1508","role":"admin"}}`))
		})

		response, err := f.client.Login(context.Background(), httpclient.Credentials{
			Username: "admin1508",
			Password: "correct",
		})
		require.NoError(t, err)
		require.Equal(t, "abc", response.Access)
		require.Equal(t, "def", response.Refresh)
		require.Equal(t, users.RoleAdmin, response.User.Role)
	})

	t.Run("an envelope missing a token or user is an error", func(t *testing.T) {
		bodies := []string{
			`{"refresh":"def","user":{"id":1}}`,
			`{"access":"abc","user":{"id":1}}`,
			`{"access":"abc","refresh":"def"}`,
		}
		for _, body := range bodies {
			f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			_, err := f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "p"})
			require.True(t, errors.Is(err, httpclient.IncompleteLoginResponseErr))
		}
	})
}

func TestLogout(t *testing.T) {
	var gotBody []byte
	f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logout/", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, f.client.Logout(context.Background(), "def"))
	require.JSONEq(t, `{"refresh_token":"def"}`, string(gotBody))
}

func TestRefresh(t *testing.T) {
	f := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/refresh/", r.URL.Path)
		w.Write([]byte(`{"access":"new-access"}`))
	})

	response, err := f.client.Refresh(context.Background(), "def")
	require.NoError(t, err)
	require.Equal(t, "new-access", response.Access)
}
