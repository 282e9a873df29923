package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/houseoftea/inventory-console/token"
)

var testNow = time.Unix(1_700_000_000, 0)

func newTestCodec() *token.Codec {
	return token.NewCodec(token.WithNowTime(func() time.Time { return testNow }))
}

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestExpired(t *testing.T) {
	codec := newTestCodec()

	t.Run("token with exp in the past is expired", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"exp": float64(testNow.Unix() - 60)})
		require.True(t, codec.Expired(raw))
	})

	t.Run("token with exp in the future is not expired", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"exp": float64(testNow.Unix() + 60)})
		require.False(t, codec.Expired(raw))
	})

	t.Run("absent token is expired", func(t *testing.T) {
		require.True(t, codec.Expired(""))
		require.True(t, codec.Expired("   "))
	})

	t.Run("malformed token fails closed", func(t *testing.T) {
		require.True(t, codec.Expired("not-a-token"))
	})

	t.Run("token without exp fails closed", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "1"})
		require.True(t, codec.Expired(raw))
	})
}

func TestIntrospect(t *testing.T) {
	codec := newTestCodec()

	t.Run("extracts claims without verification", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{
			"exp":  float64(testNow.Unix() + 3600),
			"iat":  float64(testNow.Unix()),
			"sub":  "1",
			"role": "admin",
		})
		introspection, err := codec.Introspect(raw)
		require.NoError(t, err)
		require.Equal(t, testNow.Unix()+3600, introspection.Exp)
		require.Equal(t, testNow.Unix(), introspection.Iat)
		require.Equal(t, "1", introspection.Sub)
		require.Equal(t, "admin", introspection.Role)
	})

	t.Run("malformed token is reported distinctly", func(t *testing.T) {
		_, err := codec.Introspect("garbage")
		require.True(t, errors.Is(err, token.MalformedTokenErr))
	})

	t.Run("missing exp is reported distinctly", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "1"})
		_, err := codec.Introspect(raw)
		require.True(t, errors.Is(err, token.MissingExpiryErr))
	})
}
