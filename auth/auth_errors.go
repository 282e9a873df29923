package auth

import "errors"

var (
	MissingCredentialsErr = errors.New("username and password are required")
	StaleLoginErr         = errors.New("login attempt superseded")
	LoginFailedErr        = errors.New("login failed")
)

// LoginFallbackMessage is surfaced when the server gives no structured detail.
const LoginFallbackMessage = "An error occurred"
