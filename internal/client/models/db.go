// Package models defines the data the coachlogin client moves between the
// terminal, the auth API and the local stores.
package models

// Credentials are submitted exactly as typed; no client-side validation.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordResetRequest is the body of the reset endpoint. Identifier may be
// an email or a username.
type PasswordResetRequest struct {
	Identifier string `json:"identifier"`
}
