package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/client/services"
	"github.com/dmitrijs2005/coachlogin/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for a username and password and submits them as entered.
// Failures are shown to the user and returned.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.authService.PasswordLogin(ctx, models.Credentials{Username: userName, Password: string(password)})
	if err != nil {
		fmt.Fprintln(a.out, services.DescribeLoginError(services.FlowPassword, err))
		return err
	}
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// FaceLogin opens the face dialog. The camera is held while the dialog is
// open: each empty line takes and submits a picture, "cancel" closes the
// dialog. A successful login closes it too.
func (a *App) FaceLogin(ctx context.Context) error {
	cam, err := a.newCamera()
	if err == nil {
		err = cam.Open(ctx)
	}
	if err != nil {
		a.log.Warn(ctx, "camera unavailable", "error", err)
		fmt.Fprintln(a.out, services.MsgCameraUnavailable)
		return err
	}
	defer func() {
		if err := cam.Close(); err != nil {
			a.log.Warn(ctx, "camera close failed", "error", err)
		}
	}()

	var lastErr error
	for {
		answer, err := getSimpleText(a.reader, "Look at the camera and press Enter (type 'cancel' to close)", a.out)
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(answer), "cancel") {
			return lastErr
		}

		fmt.Fprintln(a.out, "Processing...")
		if _, err := a.authService.FaceLogin(ctx, cam); err != nil {
			lastErr = err
			fmt.Fprintln(a.out, services.DescribeLoginError(services.FlowFace, err))
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(a.out, "Logged in.")
		return nil
	}
}

// ResetPassword opens the reset dialog. It keeps asking for an identifier
// until a request succeeds or an empty line closes it.
func (a *App) ResetPassword(ctx context.Context) error {
	var lastErr error
	for {
		identifier, err := getSimpleText(a.reader, "Email or username for the reset link (empty to close)", a.out)
		if err != nil {
			return err
		}
		if strings.TrimSpace(identifier) == "" {
			return lastErr
		}

		if err := a.authService.RequestPasswordReset(ctx, identifier); err != nil {
			lastErr = err
			fmt.Fprintln(a.out, services.DescribeResetError(err))
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(a.out, services.MsgResetSent)
		return nil
	}
}

// Status prints what the local stores hold. Tokens are masked.
func (a *App) Status(ctx context.Context) error {
	st, err := a.authService.Status(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Unable to read the local session.")
		a.log.Error(ctx, "status failed", "error", err)
		return err
	}

	if !st.Authenticated {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintln(a.out, "Logged in.")
	fmt.Fprintf(a.out, "  token:         %s\n", common.MaskToken(st.AccessToken))
	fmt.Fprintf(a.out, "  refresh_token: %s\n", common.MaskToken(st.RefreshToken))
	for _, c := range st.Cookies {
		fmt.Fprintf(a.out, "  cookie %s (domain %s)\n", c.Name, c.Domain)
	}
	return nil
}

// Logout removes the session from every local store.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed.")
		a.log.Error(ctx, "logout failed", "error", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
