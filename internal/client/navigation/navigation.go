// Package navigation decides where a user goes after logging in and
// carries them there.
package navigation

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

type Kind string

const (
	// External is a full redirect to another origin.
	External Kind = "external"
	// InApp is a route change inside this client.
	InApp Kind = "in-app"
)

type Destination struct {
	Kind   Kind
	Target string
}

func (d Destination) String() string {
	return fmt.Sprintf("%s:%s", d.Kind, d.Target)
}

// Decide picks the post-login destination from the role flag alone.
func Decide(isClient bool, clientOrigin, dashboardRoute string) Destination {
	if isClient {
		return Destination{Kind: External, Target: clientOrigin}
	}
	return Destination{Kind: InApp, Target: dashboardRoute}
}

type Navigator interface {
	Navigate(ctx context.Context, d Destination) error
}

// ConsoleNavigator reports the destination on w. With OpenBrowser set it
// also hands external targets to the platform's URL opener.
type ConsoleNavigator struct {
	w           io.Writer
	openBrowser bool
	// Current is the last in-app route navigated to.
	Current string

	// open is swapped in tests.
	open func(ctx context.Context, url string) error
}

var _ Navigator = (*ConsoleNavigator)(nil)

func NewConsoleNavigator(w io.Writer, openBrowser bool) *ConsoleNavigator {
	return &ConsoleNavigator{w: w, openBrowser: openBrowser, open: openURL}
}

func (n *ConsoleNavigator) Navigate(ctx context.Context, d Destination) error {
	switch d.Kind {
	case External:
		fmt.Fprintf(n.w, "Redirecting to %s\n", d.Target)
		if n.openBrowser {
			if err := n.open(ctx, d.Target); err != nil {
				return fmt.Errorf("open %s: %w", d.Target, err)
			}
		}
		return nil
	case InApp:
		n.Current = d.Target
		fmt.Fprintf(n.w, "Navigated to %s\n", d.Target)
		return nil
	default:
		return fmt.Errorf("unknown destination kind %q", d.Kind)
	}
}

// openURL starts the opener and does not wait: the browser outlives the
// action that triggered it.
func openURL(_ context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
