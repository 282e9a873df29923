// Package token decodes the dashboard's opaque bearer tokens on the client
// side. The server is the only party that verifies signatures; this codec
// extracts claims without verification, purely to detect expiry locally.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	MalformedTokenErr = errors.New("malformed token")
	MissingExpiryErr  = errors.New("token missing exp claim")
)

// Introspection holds the claims a client can read from an unverified token.
type Introspection struct {
	Exp  int64  // Expiration, seconds since epoch
	Iat  int64  // Issued at time
	Sub  string // Users unique ID
	Role string // Role claim, if the server includes one
}

// Codec decodes bearer tokens. The clock is injectable for testing.
type Codec struct {
	nowTime func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// NewCodec initializes a Codec with an optional injected clock.
func NewCodec(options ...CodecOption) *Codec {
	codec := &Codec{nowTime: time.Now}
	for _, opt := range options {
		opt(codec)
	}
	return codec
}

// Expired reports whether the token can no longer be presented. An absent
// token is always expired, and a token that cannot be decoded fails closed.
func (c *Codec) Expired(rawToken string) bool {
	if strings.TrimSpace(rawToken) == "" {
		return true
	}
	introspection, err := c.Introspect(rawToken)
	if err != nil {
		return true
	}
	return introspection.Exp*1000 < c.nowTime().UnixMilli()
}

// Introspect extracts claims from a token without verifying its signature.
// Callers that need to distinguish malformed tokens from expired ones check
// for MalformedTokenErr.
func (c *Codec) Introspect(rawToken string) (*Introspection, error) {
	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(MalformedTokenErr, err.Error())
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(MalformedTokenErr, "error extracting claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, MissingExpiryErr
	}

	iat, _ := claims["iat"].(float64)
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	return &Introspection{
		Exp:  int64(exp),
		Iat:  int64(iat),
		Sub:  sub,
		Role: role,
	}, nil
}
