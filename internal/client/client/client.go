// Package client talks to the coaching platform's authentication API.
//
// All three endpoints share one error policy: a non-2xx status is a
// *ServerError (with the server's "detail" message when it sent one), and a
// failure to exchange or decode the HTTP messages is a *TransportError.
package client

import (
	"context"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
)

// Endpoint paths, relative to the configured base URL.
const (
	EndpointPasswordLogin = "login-coach/"
	EndpointFaceLogin     = "coach-face-login/"
	EndpointPasswordReset = "request-password-reset/"
)

// Multipart layout of the face login request.
const (
	FaceImageField    = "image"
	FaceImageFilename = "face.jpg"
)

type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	FaceLogin(ctx context.Context, frame *models.Frame) (*models.AuthResult, error)
	RequestPasswordReset(ctx context.Context, identifier string) error
	Close() error
}

type requestIDKey struct{}

// WithRequestID attaches the ID sent as X-Request-ID by the next request
// made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID attached with WithRequestID, if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
