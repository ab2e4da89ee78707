package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/client/capture"
	"github.com/dmitrijs2005/coachlogin/internal/client/client"
	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/client/navigation"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/coachlogin/internal/client/session"
	"github.com/dmitrijs2005/coachlogin/internal/common"
	"github.com/dmitrijs2005/coachlogin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeClient struct {
	mu sync.Mutex

	LoginRes *models.AuthResult
	LoginErr error
	FaceRes  *models.AuthResult
	FaceErr  error
	ResetErr error
	CloseErr error

	// block, when set, holds Login until closed; entered is signalled first.
	block   chan struct{}
	entered chan struct{}

	LoginCalls  []models.Credentials
	Frames      []*models.Frame
	Identifiers []string
	RequestIDs  []string
}

func (f *fakeClient) record(ctx context.Context) {
	id, _ := client.RequestID(ctx)
	f.RequestIDs = append(f.RequestIDs, id)
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	f.mu.Lock()
	f.LoginCalls = append(f.LoginCalls, creds)
	f.record(ctx)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if block != nil {
		close(entered)
		<-block
	}
	return f.LoginRes, f.LoginErr
}

func (f *fakeClient) FaceLogin(ctx context.Context, frame *models.Frame) (*models.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Frames = append(f.Frames, frame)
	f.record(ctx)
	return f.FaceRes, f.FaceErr
}

func (f *fakeClient) RequestPasswordReset(ctx context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Identifiers = append(f.Identifiers, identifier)
	f.record(ctx)
	return f.ResetErr
}

func (f *fakeClient) Close() error { return f.CloseErr }

type fakeCamera struct {
	frame *models.Frame
	err   error
	shots int
}

func (c *fakeCamera) Open(context.Context) error { return nil }

func (c *fakeCamera) Snapshot(context.Context) (*models.Frame, error) {
	c.shots++
	return c.frame, c.err
}

func (c *fakeCamera) Close() error { return nil }

// recordingNavigator remembers destinations and what the durable store held
// at the moment of navigation.
type recordingNavigator struct {
	durable *session.DurableSink
	err     error

	Destinations []navigation.Destination
	SeenState    []*session.DurableState
}

func (n *recordingNavigator) Navigate(ctx context.Context, d navigation.Destination) error {
	n.Destinations = append(n.Destinations, d)
	if n.durable != nil {
		st, err := n.durable.Read(ctx)
		if err != nil {
			return err
		}
		n.SeenState = append(n.SeenState, st)
	}
	return n.err
}

type failingSink struct{ err error }

func (f failingSink) Name() string                                 { return "failing" }
func (f failingSink) Write(context.Context, *models.Session) error { return f.err }
func (f failingSink) Clear(context.Context) error                  { return nil }

// ---- helpers ----

type fixture struct {
	client  *fakeClient
	durable *session.DurableSink
	cookie  *session.CookieSink
	store   *cookies.BoltStore
	nav     *recordingNavigator
	states  []State
	svc     AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := repositories.InitDatabase(ctx, filepath.Join(dir, "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := cookies.OpenBoltStore(filepath.Join(dir, "cookies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	durable := session.NewDurableSink(db)
	cookie, err := session.NewCookieSink(store, "http://localhost:8000")
	require.NoError(t, err)

	f := &fixture{
		client:  &fakeClient{},
		durable: durable,
		cookie:  cookie,
		store:   store,
		nav:     &recordingNavigator{durable: durable},
	}
	f.svc = f.build(session.NewWriter(durable, cookie, logging.Discard()))
	return f
}

func (f *fixture) build(w SessionWriter) AuthService {
	return NewAuthService(Deps{
		Client:         f.client,
		Writer:         w,
		Durable:        f.durable,
		Cookies:        f.cookie,
		Navigator:      f.nav,
		Logger:         logging.Discard(),
		ClientOrigin:   "http://localhost:8000",
		DashboardRoute: "/dashboard",
	},
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }),
		WithStateHook(func(s State) { f.states = append(f.states, s) }),
	)
}

func authResult(t *testing.T, isClient bool) *models.AuthResult {
	t.Helper()
	body := `{"token":{"access":"A1","refresh":"R1"},"user":{"id":7,"email":"coach@example.com","is_client":false}}`
	if isClient {
		body = `{"token":{"access":"A1","refresh":"R1"},"user":{"id":8,"email":"client@example.com","is_client":true}}`
	}
	var res models.AuthResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	return &res
}

func cookieMap(t *testing.T, f *fixture) map[string]*cookies.Cookie {
	t.Helper()
	cs, err := f.cookie.Cookies(context.Background())
	require.NoError(t, err)
	out := make(map[string]*cookies.Cookie, len(cs))
	for _, c := range cs {
		out[c.Name] = c
	}
	return out
}

// ---- tests ----

func TestPasswordLogin_CoachGoesToDashboard(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, false)
	ctx := context.Background()

	out, err := f.svc.PasswordLogin(ctx, models.Credentials{Username: "coach", Password: "pw"})
	require.NoError(t, err)

	assert.False(t, out.IsClient)
	assert.Equal(t, []string{"durable"}, out.Sinks)
	assert.Equal(t, navigation.Destination{Kind: navigation.InApp, Target: "/dashboard"}, out.Destination)
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, []string{out.RequestID}, f.client.RequestIDs)

	st, err := f.durable.Read(ctx)
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "A1", st.AccessToken)
	assert.Equal(t, "R1", st.RefreshToken)

	assert.Empty(t, cookieMap(t, f), "coaches get no cookies")
	assert.Equal(t, []State{StateSubmitting, StateSuccess, StateSessionWritten, StateNavigated}, f.states)
	assert.Equal(t, StateNavigated, f.svc.State())
}

func TestPasswordLogin_ClientRedirectsWithCookies(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, true)

	out, err := f.svc.PasswordLogin(context.Background(), models.Credentials{Username: "c", Password: "p"})
	require.NoError(t, err)

	assert.True(t, out.IsClient)
	assert.Equal(t, []string{"durable", "cookie"}, out.Sinks)
	assert.Equal(t, navigation.Destination{Kind: navigation.External, Target: "http://localhost:8000"}, out.Destination)

	cs := cookieMap(t, f)
	require.Len(t, cs, 4)
	assert.Equal(t, "A1", cs[common.CookieAccessToken].Value)
	assert.Equal(t, "R1", cs[common.CookieRefreshToken].Value)
	assert.Equal(t, common.AuthenticatedValue, cs[common.CookieIsAuthenticated].Value)
	assert.JSONEq(t, `{"id":8,"email":"client@example.com","is_client":true}`, cs[common.CookieUserInfo].Value)
	for _, c := range cs {
		assert.True(t, c.Secure, c.Name)
		assert.Equal(t, cookies.SameSiteStrict, c.SameSite, c.Name)
	}
}

func TestPasswordLogin_CoachAfterClientClearsCookies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.LoginRes = authResult(t, true)
	_, err := f.svc.PasswordLogin(ctx, models.Credentials{Username: "client"})
	require.NoError(t, err)
	require.Len(t, cookieMap(t, f), 4)

	coach := authResult(t, false)
	coach.Token.Access = "COACH_ACCESS"
	f.client.LoginRes = coach
	out, err := f.svc.PasswordLogin(ctx, models.Credentials{Username: "coach"})
	require.NoError(t, err)
	assert.Equal(t, []string{"durable"}, out.Sinks)

	st, err := f.durable.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "COACH_ACCESS", st.AccessToken)
	assert.Empty(t, cookieMap(t, f), "client cookies must not outlive a coach login")
}

func TestLogin_StorageCompletesBeforeNavigation(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, true)

	_, err := f.svc.PasswordLogin(context.Background(), models.Credentials{})
	require.NoError(t, err)

	require.Len(t, f.nav.SeenState, 1)
	assert.True(t, f.nav.SeenState[0].Authenticated)
	assert.Equal(t, "A1", f.nav.SeenState[0].AccessToken)
}

func TestPasswordLogin_EmptyCredentialsAreSubmitted(t *testing.T) {
	f := newFixture(t)
	f.client.LoginErr = &client.ServerError{Status: 400}

	_, err := f.svc.PasswordLogin(context.Background(), models.Credentials{})
	require.Error(t, err)
	require.Len(t, f.client.LoginCalls, 1)
	assert.Equal(t, models.Credentials{}, f.client.LoginCalls[0])
}

func TestLogin_FailureWritesNothing(t *testing.T) {
	cases := []struct {
		name string
		res  *models.AuthResult
		err  error
		msg  string
	}{
		{"server detail", nil, &client.ServerError{Status: 401, Detail: "Invalid credentials"}, "Invalid credentials"},
		{"server no detail", nil, &client.ServerError{Status: 500}, MsgPasswordLoginFailed},
		{"transport", nil, &client.TransportError{Op: "POST login-coach/", Err: context.DeadlineExceeded}, MsgPasswordLoginFailed},
		{"missing token", &models.AuthResult{}, nil, MsgPasswordLoginFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.client.LoginRes, f.client.LoginErr = tc.res, tc.err
			ctx := context.Background()

			out, err := f.svc.PasswordLogin(ctx, models.Credentials{Username: "u", Password: "p"})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tc.msg, DescribeLoginError(FlowPassword, err))

			values, err := f.durable.Read(ctx)
			require.NoError(t, err)
			assert.False(t, values.Authenticated)
			assert.Empty(t, values.AccessToken)
			assert.Empty(t, cookieMap(t, f))
			assert.Empty(t, f.nav.Destinations)
			assert.Equal(t, StateIdle, f.svc.State())
			assert.Contains(t, f.states, StateFailed)
		})
	}
}

func TestLogin_FailureLogsRejectionKind(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	svc := NewAuthService(Deps{
		Client:         f.client,
		Writer:         session.NewWriter(f.durable, f.cookie, logging.Discard()),
		Durable:        f.durable,
		Cookies:        f.cookie,
		Navigator:      f.nav,
		Logger:         logging.New("debug", &buf),
		ClientOrigin:   "http://localhost:8000",
		DashboardRoute: "/dashboard",
	})
	ctx := context.Background()

	f.client.LoginErr = &client.ServerError{Status: 401}
	_, err := svc.PasswordLogin(ctx, models.Credentials{})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "unauthorized=true")
	assert.Contains(t, buf.String(), "unavailable=false")

	buf.Reset()
	f.client.LoginErr = &client.TransportError{Op: "POST login-coach/", Err: errors.New("refused")}
	_, err = svc.PasswordLogin(ctx, models.Credentials{})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "unauthorized=false")
	assert.Contains(t, buf.String(), "unavailable=true")
}

func TestLogin_SinkFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, true)
	boom := errors.New("disk full")
	svc := f.build(session.NewWriter(f.durable, failingSink{err: boom}, logging.Discard()))
	ctx := context.Background()

	_, err := svc.PasswordLogin(ctx, models.Credentials{})
	require.ErrorIs(t, err, boom)

	st, err := f.durable.Read(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Empty(t, f.nav.Destinations)
	assert.Equal(t, StateIdle, svc.State())
}

func TestLogin_NavigationFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, true)
	f.nav.err = errors.New("no browser")

	out, err := f.svc.PasswordLogin(context.Background(), models.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, navigation.External, out.Destination.Kind)
	assert.Equal(t, StateNavigated, f.svc.State())
	assert.Len(t, cookieMap(t, f), 4)
}

func TestLogin_RepeatedSubmissionsAreNotDeduplicated(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, false)
	ctx := context.Background()
	creds := models.Credentials{Username: "u", Password: "p"}

	first, err := f.svc.PasswordLogin(ctx, creds)
	require.NoError(t, err)
	second, err := f.svc.PasswordLogin(ctx, creds)
	require.NoError(t, err)

	assert.Len(t, f.client.LoginCalls, 2)
	assert.NotEqual(t, first.RequestID, second.RequestID)

	st, err := f.durable.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A1", st.AccessToken)
}

func TestLogin_SecondSubmissionWhileInFlightIsBusy(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, false)
	f.client.block = make(chan struct{})
	f.client.entered = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.PasswordLogin(ctx, models.Credentials{Username: "first"})
		done <- err
	}()
	<-f.client.entered

	_, err := f.svc.PasswordLogin(ctx, models.Credentials{Username: "second"})
	require.ErrorIs(t, err, common.ErrBusy)
	assert.Equal(t, MsgBusy, DescribeLoginError(FlowPassword, err))

	err = f.svc.RequestPasswordReset(ctx, "user@example.com")
	require.ErrorIs(t, err, common.ErrBusy)

	close(f.client.block)
	require.NoError(t, <-done)

	f.client.mu.Lock()
	defer f.client.mu.Unlock()
	require.Len(t, f.client.LoginCalls, 1)
	assert.Equal(t, "first", f.client.LoginCalls[0].Username)
	assert.Empty(t, f.client.Identifiers)
}

func TestFaceLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.client.FaceRes = authResult(t, true)
	frame := &models.Frame{Data: []byte{0xff, 0xd8}, ContentType: capture.ContentTypeJPEG, Width: 2, Height: 2}
	cam := &fakeCamera{frame: frame}

	out, err := f.svc.FaceLogin(context.Background(), cam)
	require.NoError(t, err)
	assert.Equal(t, 1, cam.shots)
	require.Len(t, f.client.Frames, 1)
	assert.Same(t, frame, f.client.Frames[0])
	assert.Equal(t, []string{"durable", "cookie"}, out.Sinks)
	assert.Equal(t, navigation.External, out.Destination.Kind)
}

func TestFaceLogin_CoachWritesNoCookies(t *testing.T) {
	f := newFixture(t)
	f.client.FaceRes = authResult(t, false)

	out, err := f.svc.FaceLogin(context.Background(), &fakeCamera{frame: &models.Frame{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"durable"}, out.Sinks)
	assert.Empty(t, cookieMap(t, f))
}

func TestFaceLogin_CaptureFailureNeverSubmits(t *testing.T) {
	f := newFixture(t)
	cam := &fakeCamera{err: &capture.Error{Op: "snapshot", Err: capture.ErrUnavailable}}

	_, err := f.svc.FaceLogin(context.Background(), cam)
	require.Error(t, err)
	assert.True(t, capture.IsCaptureError(err))
	assert.False(t, errors.Is(err, client.ErrUnavailable))
	assert.Equal(t, MsgCameraUnavailable, DescribeLoginError(FlowFace, err))
	assert.Empty(t, f.client.Frames)
	assert.Equal(t, StateIdle, f.svc.State())
}

func TestFaceLogin_ServerRejection(t *testing.T) {
	f := newFixture(t)
	f.client.FaceErr = &client.ServerError{Status: 400, Detail: "Face not recognized"}

	_, err := f.svc.FaceLogin(context.Background(), &fakeCamera{frame: &models.Frame{}})
	require.Error(t, err)
	assert.Equal(t, "Face not recognized", DescribeLoginError(FlowFace, err))

	f.client.FaceErr = &client.ServerError{Status: 500}
	_, err = f.svc.FaceLogin(context.Background(), &fakeCamera{frame: &models.Frame{}})
	require.Error(t, err)
	assert.Equal(t, MsgFaceLoginFailed, DescribeLoginError(FlowFace, err))
}

func TestRequestPasswordReset(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "user@example.com"))
		assert.Equal(t, []string{"user@example.com"}, f.client.Identifiers)
		assert.Empty(t, f.nav.Destinations)

		st, err := f.durable.Read(context.Background())
		require.NoError(t, err)
		assert.False(t, st.Authenticated)
	})

	t.Run("server detail", func(t *testing.T) {
		f := newFixture(t)
		f.client.ResetErr = &client.ServerError{Status: 404, Detail: "No account with that email."}
		err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
		require.Error(t, err)
		assert.Equal(t, "No account with that email.", DescribeResetError(err))
	})

	t.Run("server no detail", func(t *testing.T) {
		f := newFixture(t)
		f.client.ResetErr = &client.ServerError{Status: 500}
		err := f.svc.RequestPasswordReset(context.Background(), "x")
		assert.Equal(t, MsgResetRejected, DescribeResetError(err))
	})

	t.Run("transport", func(t *testing.T) {
		f := newFixture(t)
		f.client.ResetErr = &client.TransportError{Op: "POST request-password-reset/", Err: errors.New("connection refused")}
		err := f.svc.RequestPasswordReset(context.Background(), "x")
		assert.Equal(t, MsgResetFailed, DescribeResetError(err))
	})
}

func TestLogoutAndStatus(t *testing.T) {
	f := newFixture(t)
	f.client.LoginRes = authResult(t, true)
	ctx := context.Background()

	_, err := f.svc.PasswordLogin(ctx, models.Credentials{})
	require.NoError(t, err)

	st, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "A1", st.AccessToken)
	assert.Len(t, st.Cookies, 4)

	require.NoError(t, f.svc.Logout(ctx))
	assert.Equal(t, StateIdle, f.svc.State())

	st, err = f.svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Empty(t, st.AccessToken)
	assert.Empty(t, st.Cookies)
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	f.client.CloseErr = errors.New("x")
	require.Error(t, f.svc.Close(context.Background()))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "fallback", Describe(errors.New("plain"), "fallback"))
	assert.Equal(t, "d", Describe(&client.ServerError{Status: 400, Detail: "d"}, "fallback"))
	assert.Equal(t, "fallback", Describe(&client.ServerError{Status: 400}, "fallback"))
}
