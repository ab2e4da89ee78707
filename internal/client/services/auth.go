// Package services holds the client's authentication flows: password
// login, face login and the password-reset request. Each flow allows a
// single request in flight, writes the session only on success, and hands
// the user to the navigator once the session is stored.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/client/capture"
	"github.com/dmitrijs2005/coachlogin/internal/client/client"
	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/client/navigation"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/coachlogin/internal/client/session"
	"github.com/dmitrijs2005/coachlogin/internal/common"
	"github.com/dmitrijs2005/coachlogin/internal/logging"
	"github.com/google/uuid"
)

// AuthService defines the authentication actions of the CLI.
//
// Contract:
//   - PasswordLogin / FaceLogin: authenticate, store the session, navigate.
//   - RequestPasswordReset: ask the server to mail a reset link.
//   - Logout: remove the session from every store.
//   - Status: report what the local stores hold.
//
// Any action started while another is in flight fails with common.ErrBusy.
type AuthService interface {
	PasswordLogin(ctx context.Context, creds models.Credentials) (*Outcome, error)
	FaceLogin(ctx context.Context, cam capture.Camera) (*Outcome, error)
	RequestPasswordReset(ctx context.Context, identifier string) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*SessionStatus, error)
	State() State
	Close(ctx context.Context) error
}

// Outcome describes a successful login.
type Outcome struct {
	RequestID   string
	IsClient    bool
	Sinks       []string
	Destination navigation.Destination
}

// SessionStatus is what the local stores say about the current session.
type SessionStatus struct {
	Authenticated bool
	AccessToken   string
	RefreshToken  string
	Cookies       []*cookies.Cookie
}

type SessionWriter interface {
	Write(ctx context.Context, s *models.Session) ([]string, error)
	Clear(ctx context.Context) error
}

type DurableReader interface {
	Read(ctx context.Context) (*session.DurableState, error)
}

type CookieReader interface {
	Cookies(ctx context.Context) ([]*cookies.Cookie, error)
}

// Deps are the collaborators of the auth service.
type Deps struct {
	Client    client.Client
	Writer    SessionWriter
	Durable   DurableReader
	Cookies   CookieReader
	Navigator navigation.Navigator
	Logger    logging.Logger

	ClientOrigin   string
	DashboardRoute string
}

type Option func(*authService)

// WithClock replaces time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *authService) { a.now = now }
}

// WithStateHook is called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(a *authService) { a.onState = fn }
}

type authService struct {
	deps Deps

	inFlight atomic.Bool

	mu      sync.Mutex
	state   State
	onState func(State)
	now     func() time.Time
}

func NewAuthService(deps Deps, opts ...Option) AuthService {
	a := &authService{deps: deps, state: StateIdle, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *authService) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) setState(s State) {
	a.mu.Lock()
	a.state = s
	hook := a.onState
	a.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

// begin claims the single in-flight slot.
func (a *authService) begin() (release func(), err error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, common.ErrBusy
	}
	return func() { a.inFlight.Store(false) }, nil
}

func (a *authService) PasswordLogin(ctx context.Context, creds models.Credentials) (*Outcome, error) {
	return a.login(ctx, FlowPassword, func(ctx context.Context) (*models.AuthResult, error) {
		return a.deps.Client.Login(ctx, creds)
	})
}

// FaceLogin takes one still from cam and submits it. cam must be open.
func (a *authService) FaceLogin(ctx context.Context, cam capture.Camera) (*Outcome, error) {
	return a.login(ctx, FlowFace, func(ctx context.Context) (*models.AuthResult, error) {
		frame, err := cam.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		a.deps.Logger.Debug(ctx, "frame captured", "bytes", frame.Size(), "width", frame.Width, "height", frame.Height)
		return a.deps.Client.FaceLogin(ctx, frame)
	})
}

func (a *authService) login(ctx context.Context, flow Flow, submit func(context.Context) (*models.AuthResult, error)) (*Outcome, error) {
	release, err := a.begin()
	if err != nil {
		return nil, err
	}
	defer release()

	requestID := uuid.NewString()
	ctx = client.WithRequestID(ctx, requestID)
	log := a.deps.Logger.With("request_id", requestID, "flow", string(flow))

	a.setState(StateSubmitting)

	res, err := submit(ctx)
	if err != nil {
		return nil, a.fail(ctx, log, fmt.Errorf("%s login: %w", flow, err))
	}
	a.setState(StateSuccess)

	sess, err := models.NewSession(res, a.now())
	if err != nil {
		return nil, a.fail(ctx, log, fmt.Errorf("%s login: %w", flow, err))
	}

	sinks, err := a.deps.Writer.Write(ctx, sess)
	if err != nil {
		return nil, a.fail(ctx, log, fmt.Errorf("%s login: %w", flow, err))
	}
	a.setState(StateSessionWritten)

	dest := navigation.Decide(sess.IsClient, a.deps.ClientOrigin, a.deps.DashboardRoute)
	if err := a.deps.Navigator.Navigate(ctx, dest); err != nil {
		log.Warn(ctx, "navigation incomplete", "destination", dest.String(), "error", err)
	}
	a.setState(StateNavigated)

	log.Info(ctx, "login succeeded", "is_client", sess.IsClient, "sinks", sinks, "destination", dest.String())

	return &Outcome{
		RequestID:   requestID,
		IsClient:    sess.IsClient,
		Sinks:       sinks,
		Destination: dest,
	}, nil
}

func (a *authService) fail(ctx context.Context, log logging.Logger, err error) error {
	a.setState(StateFailed)
	log.Warn(ctx, "login failed", "error", err,
		"capture", capture.IsCaptureError(err),
		"unauthorized", errors.Is(err, client.ErrUnauthorized),
		"unavailable", errors.Is(err, client.ErrUnavailable))
	a.setState(StateIdle)
	return err
}

// RequestPasswordReset succeeds on any 2xx reply. Every other outcome is an
// error, whether the server answered or not.
func (a *authService) RequestPasswordReset(ctx context.Context, identifier string) error {
	release, err := a.begin()
	if err != nil {
		return err
	}
	defer release()

	requestID := uuid.NewString()
	ctx = client.WithRequestID(ctx, requestID)
	log := a.deps.Logger.With("request_id", requestID, "flow", string(FlowReset))

	if err := a.deps.Client.RequestPasswordReset(ctx, identifier); err != nil {
		log.Warn(ctx, "password reset request failed", "error", err)
		return fmt.Errorf("password reset: %w", err)
	}
	log.Info(ctx, "password reset requested")
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.deps.Writer.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.setState(StateIdle)
	a.deps.Logger.Info(ctx, "session cleared")
	return nil
}

func (a *authService) Status(ctx context.Context) (*SessionStatus, error) {
	st, err := a.deps.Durable.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read durable store: %w", err)
	}
	cs, err := a.deps.Cookies.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cookie store: %w", err)
	}
	return &SessionStatus{
		Authenticated: st.Authenticated,
		AccessToken:   st.AccessToken,
		RefreshToken:  st.RefreshToken,
		Cookies:       cs,
	}, nil
}

func (a *authService) Close(ctx context.Context) error {
	return a.deps.Client.Close()
}
