// Package session owns the single authoritative record of who is logged in.
// All mutation funnels through the Store so the pairing and expiry invariants
// hold everywhere the record is read.
package session

import "github.com/houseoftea/inventory-console/users"

// Session is the in-memory record of current authentication state.
// IsLoading, Err and IsExpired are transient and never persisted.
type Session struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
	IsLoading    bool
	Err          string
	IsExpired    bool
}

// Authenticated reports whether the session carries both an identity and a
// token. A user without a token, or a token without a user, is invalid and
// treated as anonymous.
func (s Session) Authenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// anonymized strips identity and credentials from a half-populated session so
// readers never observe a broken user/token pairing.
func (s Session) anonymized() Session {
	if s.Authenticated() {
		return s
	}
	s.User = nil
	s.AccessToken = ""
	s.RefreshToken = ""
	s.IsExpired = false
	return s
}
