package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/coachlogin/internal/client/capture"
	"github.com/dmitrijs2005/coachlogin/internal/client/client"
	"github.com/dmitrijs2005/coachlogin/internal/client/config"
	"github.com/dmitrijs2005/coachlogin/internal/client/navigation"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/coachlogin/internal/client/services"
	"github.com/dmitrijs2005/coachlogin/internal/client/session"
	"github.com/dmitrijs2005/coachlogin/internal/filex"
	"github.com/dmitrijs2005/coachlogin/internal/logging"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	newCamera   func() (capture.Camera, error)
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	closers     []io.Closer
}

// NewApp opens both local stores and wires the auth service over them.
// Call Close when done.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	c.Resolve()
	for _, p := range []string{c.DataDir, filepath.Dir(c.DurableStorePath), filepath.Dir(c.CookieStorePath)} {
		if _, err := filex.EnsureDir(p); err != nil {
			return nil, err
		}
	}

	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	db, err := repositories.InitDatabase(ctx, c.DurableStorePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DurableStorePath, "error", err)
		return nil, err
	}
	a.closers = append(a.closers, db)

	store, err := cookies.OpenBoltStore(c.CookieStorePath)
	if err != nil {
		a.closeAll()
		log.Error(ctx, "error opening cookie store", "path", c.CookieStorePath, "error", err)
		return nil, err
	}
	a.closers = append(a.closers, store)

	apiClient, err := client.NewHTTPClient(c.APIBaseURL, client.WithTimeout(c.RequestTimeout))
	if err != nil {
		a.closeAll()
		return nil, err
	}

	durable := session.NewDurableSink(db)
	cookie, err := session.NewCookieSink(store, c.ClientOrigin)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	a.authService = services.NewAuthService(services.Deps{
		Client:         apiClient,
		Writer:         session.NewWriter(durable, cookie, log),
		Durable:        durable,
		Cookies:        cookie,
		Navigator:      navigation.NewConsoleNavigator(a.out, c.OpenBrowser),
		Logger:         log,
		ClientOrigin:   c.ClientOrigin,
		DashboardRoute: c.DashboardRoute,
	})
	a.newCamera = func() (capture.Camera, error) {
		return capture.New(capture.Options{
			ImagePath: c.FaceImagePath,
			Command:   c.CameraCommand,
			Device:    c.CameraDevice,
		})
	}

	log.Debug(ctx, "app ready", "api", c.APIBaseURL, "durable_store", c.DurableStorePath, "cookie_store", c.CookieStorePath)
	return a, nil
}

// Run blocks in the REPL until the user exits, stdin ends or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to coachlogin (type 'help' for commands)")
	runREPL(ctx, a, a.statusLine, a.reader)
}

func (a *App) Close(ctx context.Context) error {
	err := a.authService.Close(ctx)
	return errors.Join(err, a.closeAll())
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) statusLine() string {
	return string(a.authService.State())
}
