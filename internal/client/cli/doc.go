// Package cli provides the interactive coachlogin command-line client.
//
// It wires configuration, the two local session stores, the auth API client
// and an interactive REPL. Commands:
//   - login: username and password
//   - face: face recognition with the configured camera
//   - reset: request a password reset link
//   - status / logout: inspect or remove the stored session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
