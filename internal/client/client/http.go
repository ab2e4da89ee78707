package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/buildinfo"
	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/common"
	"github.com/dmitrijs2005/coachlogin/internal/netx"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

var ErrInvalidBaseURL = errors.New("invalid API base URL")

type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithTimeout sets the deadline applied to each request. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	// Endpoints are relative; without the slash the last segment is dropped.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &HTTPClient{
		baseURL:   u,
		http:      &http.Client{},
		timeout:   15 * time.Second,
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	body, ct, err := netx.JSONBody(creds)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, EndpointPasswordLogin, body, ct)
}

func (c *HTTPClient) FaceLogin(ctx context.Context, frame *models.Frame) (*models.AuthResult, error) {
	contentType := frame.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	body, ct, err := netx.MultipartFile(FaceImageField, FaceImageFilename, contentType, frame.Data)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, EndpointFaceLogin, body, ct)
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, identifier string) error {
	body, ct, err := netx.JSONBody(models.PasswordResetRequest{Identifier: identifier})
	if err != nil {
		return err
	}
	_, err = c.post(ctx, EndpointPasswordReset, body, ct)
	return err
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) authenticate(ctx context.Context, endpoint string, body io.Reader, contentType string) (*models.AuthResult, error) {
	data, err := c.post(ctx, endpoint, body, contentType)
	if err != nil {
		return nil, err
	}
	var res models.AuthResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &TransportError{Op: "decode " + endpoint, Err: err}
	}
	return &res, nil
}

// post sends one request and returns the body of a 2xx response.
func (c *HTTPClient) post(ctx context.Context, endpoint string, body io.Reader, contentType string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: endpoint})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return nil, &TransportError{Op: "build " + endpoint, Err: err}
	}

	requestID, ok := RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", netx.ContentTypeJSON)
	req.Header.Set(common.UserAgentHeaderName, c.userAgent)
	req.Header.Set(common.RequestIDHeaderName, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "POST " + endpoint, Err: err}
	}
	defer netx.DrainAndClose(resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read " + endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Detail: parseDetail(data)}
	}
	return data, nil
}

// parseDetail extracts {"detail": "..."}; anything else yields "".
func parseDetail(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
